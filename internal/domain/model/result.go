package model

import "time"

// EmotionResult is one emitted inference outcome. Created once per
// successful emission and immutable afterwards; ownership transfers to
// whatever consumes it (history store, publisher, HTTP clients).
type EmotionResult struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Emotion       string             `json:"emotion"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Features      map[string]float64 `json:"features"`
	ModelID       string             `json:"model_id"`
	ModelVersion  string             `json:"model_version"`
}

// BufferStats is a read-only diagnostic snapshot of the sliding window.
type BufferStats struct {
	SampleCount int           `json:"sample_count"`
	Duration    time.Duration `json:"duration"`
	HRMin       float64       `json:"hr_min"`
	HRMax       float64       `json:"hr_max"`
	RRCount     int           `json:"rr_count"`
}
