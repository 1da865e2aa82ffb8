// Package model contains domain models passed between layers.
package model

import "time"

// Sample represents one biosignal ingestion event: a heart-rate reading
// plus the RR intervals observed since the previous sample. Immutable once
// buffered; the engine copies slices and maps on push.
type Sample struct {
	SampleID      string             // optional unique id for idempotency
	SubjectID     string             // optional wearer/device identifier
	HR            float64            // heart rate in BPM
	RRIntervalsMS []float64          // RR intervals in milliseconds, non-empty
	Motion        map[string]float64 // optional auxiliary motion features
	Timestamp     time.Time          // sample timestamp, UTC
}

// Clone returns a deep copy of the sample so the buffer owns its data
// exclusively after insertion.
func (s Sample) Clone() Sample {
	out := s
	out.RRIntervalsMS = make([]float64, len(s.RRIntervalsMS))
	copy(out.RRIntervalsMS, s.RRIntervalsMS)
	if s.Motion != nil {
		out.Motion = make(map[string]float64, len(s.Motion))
		for k, v := range s.Motion {
			out.Motion[k] = v
		}
	}
	return out
}
