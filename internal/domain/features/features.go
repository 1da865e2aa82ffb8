// Package features computes heart-rate-variability features from cleaned
// biosignal windows. All functions are pure and side-effect-free.
package features

import (
	"fmt"
	"math"
)

// Physiological validity bounds.
const (
	// MinValidRRMS is the shortest plausible RR interval (300ms = 200 BPM).
	MinValidRRMS = 300.0

	// MaxValidRRMS is the longest plausible RR interval (2000ms = 30 BPM).
	MaxValidRRMS = 2000.0

	// MaxRRJumpMS is the largest allowed jump between successive retained
	// RR intervals; bigger jumps are treated as artifacts.
	MaxRRJumpMS = 250.0

	// MinValidHR and MaxValidHR bound acceptable heart-rate readings in BPM.
	MinValidHR = 30.0
	MaxValidHR = 300.0
)

// Canonical HRV feature names.
const (
	FeatureHRMean = "hr_mean"
	FeatureSDNN   = "sdnn"
	FeatureRMSSD  = "rmssd"
)

// CleanRRIntervals filters an ordered RR sequence, dropping values outside
// the physiological range and artifact jumps. The jump guard compares each
// candidate against the last retained value, not the last raw value, so a
// single spike does not cascade-reject the valid values that follow it.
func CleanRRIntervals(rrIntervalsMS []float64) []float64 {
	if len(rrIntervalsMS) == 0 {
		return nil
	}

	cleaned := make([]float64, 0, len(rrIntervalsMS))
	havePrev := false
	var prev float64

	for _, rr := range rrIntervalsMS {
		if rr < MinValidRRMS || rr > MaxValidRRMS {
			continue
		}
		if havePrev && math.Abs(rr-prev) > MaxRRJumpMS {
			continue
		}
		cleaned = append(cleaned, rr)
		prev = rr
		havePrev = true
	}
	return cleaned
}

// HRMean returns the arithmetic mean of the HR readings, or 0.0 for an
// empty window. The zero is a defensive default, not an error.
func HRMean(hrValues []float64) float64 {
	if len(hrValues) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, hr := range hrValues {
		sum += hr
	}
	return sum / float64(len(hrValues))
}

// SDNN returns the sample standard deviation (N-1 denominator) of the
// cleaned RR sequence, or 0.0 when fewer than two cleaned values remain.
func SDNN(rrIntervalsMS []float64) float64 {
	cleaned := CleanRRIntervals(rrIntervalsMS)
	if len(cleaned) < 2 {
		return 0.0
	}

	mean := 0.0
	for _, rr := range cleaned {
		mean += rr
	}
	mean /= float64(len(cleaned))

	variance := 0.0
	for _, rr := range cleaned {
		d := rr - mean
		variance += d * d
	}
	variance /= float64(len(cleaned) - 1)

	return math.Sqrt(variance)
}

// RMSSD returns the root mean square of successive differences of the
// cleaned RR sequence, or 0.0 when fewer than two cleaned values remain.
func RMSSD(rrIntervalsMS []float64) float64 {
	cleaned := CleanRRIntervals(rrIntervalsMS)
	if len(cleaned) < 2 {
		return 0.0
	}

	sumSq := 0.0
	for i := 1; i < len(cleaned); i++ {
		d := cleaned[i] - cleaned[i-1]
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(cleaned)-1))
}

// Extract computes the full feature mapping for a window: the three HRV
// features plus any aggregated motion features merged in.
func Extract(hrValues, rrIntervalsMS []float64, motion map[string]float64) map[string]float64 {
	out := map[string]float64{
		FeatureHRMean: HRMean(hrValues),
		FeatureSDNN:   SDNN(rrIntervalsMS),
		FeatureRMSSD:  RMSSD(rrIntervalsMS),
	}
	for k, v := range motion {
		out[k] = v
	}
	return out
}

// Validate checks that every required feature is present and finite.
// The returned error names the first offending feature.
func Validate(featureValues map[string]float64, required []string) error {
	for _, name := range required {
		v, ok := featureValues[name]
		if !ok {
			return fmt.Errorf("%w: missing feature %q", ErrBadInput, name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: feature %q is not finite", ErrBadInput, name)
		}
	}
	return nil
}

// Normalize applies z-score normalization using the model's training
// statistics. Features with a non-positive sigma normalize to 0.0 to avoid
// division by zero; features without scaler entries pass through unchanged.
func Normalize(featureValues, mu, sigma map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(featureValues))
	for name, v := range featureValues {
		m, hasMu := mu[name]
		s, hasSigma := sigma[name]
		if !hasMu || !hasSigma {
			out[name] = v
			continue
		}
		if s <= 0 {
			out[name] = 0.0
			continue
		}
		out[name] = (v - m) / s
	}
	return out
}
