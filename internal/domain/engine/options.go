package engine

import (
	"time"

	"github.com/synheart/emotion-go/pkg/logger"
)

// Option applies a configuration option to the Engine. All configuration is
// fixed at construction and immutable thereafter.
type Option func(*Engine)

// WithWindow sets the sliding window duration.
func WithWindow(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.window = d
		}
	}
}

// WithStep sets the minimum interval between successive emissions.
func WithStep(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.step = d
		}
	}
}

// WithMinRRCount sets the minimum aggregated RR-interval count required
// before a result is emitted.
func WithMinRRCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.minRRCount = n
		}
	}
}

// WithHRBaseline enables personalization: hr_mean is replaced with
// hr_mean - baseline after extraction and before normalization.
func WithHRBaseline(baseline float64) Option {
	return func(e *Engine) {
		b := baseline
		e.hrBaseline = &b
	}
}

// WithPriors sets label priors for calibration. Emitted probabilities are
// multiplied by their prior and renormalized; labels without an entry keep
// a prior of 1.
func WithPriors(priors map[string]float64) Option {
	return func(e *Engine) {
		e.priors = priors
	}
}

// WithMaxBufferSamples caps the buffer sample count as a safety valve
// against pathological high-frequency producers. Zero means unbounded
// within the time window.
func WithMaxBufferSamples(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSamples = n
		}
	}
}

// WithLogger sets the log sink for soft failures and emissions. Without a
// sink the engine operates silently.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock overrides the wall-clock source. Used by tests to drive
// eviction and throttling deterministically.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
