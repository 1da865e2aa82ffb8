// Package engine implements the sliding-window orchestrator: it buffers
// incoming biosignal samples, evicts stale entries, and emits throttled
// emotion results by running feature extraction and classification over
// the current window.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/synheart/emotion-go/internal/domain/features"
	"github.com/synheart/emotion-go/internal/domain/inference"
	"github.com/synheart/emotion-go/internal/domain/model"
	"github.com/synheart/emotion-go/pkg/logger"
	"github.com/synheart/emotion-go/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultWindow     = 60 * time.Second
	defaultStep       = 5 * time.Second
	defaultMinRRCount = 30
	minWindowSamples  = 2
)

// SkipReason explains why the last ConsumeReady call produced no result.
// It is a diagnostic side-channel; the empty-result contract is unchanged.
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipThrottled        SkipReason = "throttled"
	SkipTooFewSamples    SkipReason = "too_few_samples"
	SkipTooFewRR         SkipReason = "too_few_rr"
	SkipInferenceFailed  SkipReason = "inference_failed"
	SkipExtractionFailed SkipReason = "extraction_failed"
)

// Engine is the stateful sliding-window orchestrator. All public methods
// serialize on an internal mutex, so concurrent producers may share one
// instance. The model reference is immutable and read without locking.
type Engine struct {
	mu sync.Mutex

	classifier inference.Model

	// Configuration, immutable after construction.
	window     time.Duration
	step       time.Duration
	minRRCount int
	maxSamples int
	hrBaseline *float64
	priors     map[string]float64

	now func() time.Time
	log logger.Logger

	// Mutable state.
	buffer       []model.Sample
	lastEmission time.Time
	lastSkip     SkipReason
}

// New constructs an engine around an injected model. Construction fails if
// the model does not expose the three core HRV features; a rejected model
// is never used for inference.
func New(classifier inference.Model, opts ...Option) (*Engine, error) {
	if classifier == nil {
		return nil, fmt.Errorf("%w: nil model", inference.ErrModelIncompatible)
	}

	required := map[string]bool{}
	for _, name := range classifier.FeatureNames() {
		required[name] = true
	}
	for _, name := range []string{features.FeatureHRMean, features.FeatureSDNN, features.FeatureRMSSD} {
		if !required[name] {
			return nil, fmt.Errorf("%w: model does not consume feature %q",
				inference.ErrModelIncompatible, name)
		}
	}

	e := &Engine{
		classifier: classifier,
		window:     defaultWindow,
		step:       defaultStep,
		minRRCount: defaultMinRRCount,
		now:        time.Now,
		log:        logger.Nop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Push appends a sample to the window buffer. Invalid input is logged and
// dropped, never surfaced as an error: the streaming contract is
// non-throwing.
func (e *Engine) Push(ctx context.Context, s model.Sample) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s.HR <= 0 || s.HR > features.MaxValidHR {
		e.log.Warn(ctx, "dropping sample with invalid HR",
			logger.Float64("hr", s.HR),
			logger.String("sampleID", s.SampleID),
		)
		metrics.RecordSampleDropped("invalid_hr")
		return
	}
	if len(s.RRIntervalsMS) == 0 {
		e.log.Warn(ctx, "dropping sample with empty RR intervals",
			logger.String("sampleID", s.SampleID),
		)
		metrics.RecordSampleDropped("empty_rr")
		return
	}

	e.buffer = append(e.buffer, s.Clone())
	e.trim()

	e.log.Debug(ctx, "pushed sample",
		logger.Float64("hr", s.HR),
		logger.Int("rrCount", len(s.RRIntervalsMS)),
		logger.Int("bufferSize", len(e.buffer)),
	)
	e.updateBufferGauges()
}

// ConsumeReady runs one throttled emission attempt. It returns zero or one
// results; the list shape exists for forward extensibility. All internal
// failures degrade to an empty list plus a log entry and a skip reason;
// this method never blocks and never fails through its public contract.
func (e *Engine) ConsumeReady(ctx context.Context) []model.EmotionResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()

	if !e.lastEmission.IsZero() && now.Sub(e.lastEmission) < e.step {
		e.skip(SkipThrottled)
		return nil
	}

	e.trim()
	if len(e.buffer) < minWindowSamples {
		e.skip(SkipTooFewSamples)
		return nil
	}

	hrValues := make([]float64, 0, len(e.buffer))
	var rrIntervals []float64
	var motion map[string]float64
	for i := range e.buffer {
		s := &e.buffer[i]
		hrValues = append(hrValues, s.HR)
		rrIntervals = append(rrIntervals, s.RRIntervalsMS...)
		for k, v := range s.Motion {
			if motion == nil {
				motion = make(map[string]float64)
			}
			motion[k] += v
		}
	}

	if len(rrIntervals) < e.minRRCount {
		e.log.Warn(ctx, "too few RR intervals for inference",
			logger.Int("have", len(rrIntervals)),
			logger.Int("need", e.minRRCount),
		)
		e.skip(SkipTooFewRR)
		return nil
	}

	start := time.Now()
	fv := features.Extract(hrValues, rrIntervals, motion)
	if e.hrBaseline != nil {
		fv[features.FeatureHRMean] -= *e.hrBaseline
	}

	probs, err := e.classifier.Predict(fv)
	metrics.RecordInferenceLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		e.log.Error(ctx, "inference failed", logger.Error(err))
		metrics.RecordInferenceError()
		e.skip(SkipInferenceFailed)
		return nil
	}

	if len(e.priors) > 0 {
		probs = applyPriors(probs, e.priors)
	}

	meta := e.classifier.Metadata()
	label, confidence := inference.TopLabel(probs, e.classifier.Labels())

	result := model.EmotionResult{
		ID:            uuid.NewString(),
		Timestamp:     now,
		Emotion:       label,
		Confidence:    confidence,
		Probabilities: probs,
		Features:      fv,
		ModelID:       meta.ID,
		ModelVersion:  meta.Version,
	}

	e.lastEmission = now
	e.lastSkip = SkipNone
	metrics.RecordResultEmitted(label)

	e.log.Info(ctx, "emitted result",
		logger.String("emotion", label),
		logger.Float64("confidence", confidence),
		logger.String("modelID", meta.ID),
	)

	return []model.EmotionResult{result}
}

// Clear empties the buffer and resets the emission throttle. The model and
// configuration are retained. Idempotent.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buffer = nil
	e.lastEmission = time.Time{}
	e.lastSkip = SkipNone
	e.updateBufferGauges()
	e.log.Info(ctx, "buffer cleared")
}

// BufferStats returns a read-only diagnostic snapshot of the window.
func (e *Engine) BufferStats(ctx context.Context) model.BufferStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.buffer) == 0 {
		return model.BufferStats{}
	}

	stats := model.BufferStats{
		SampleCount: len(e.buffer),
		Duration:    e.buffer[len(e.buffer)-1].Timestamp.Sub(e.buffer[0].Timestamp),
		HRMin:       e.buffer[0].HR,
		HRMax:       e.buffer[0].HR,
	}
	for i := range e.buffer {
		s := &e.buffer[i]
		if s.HR < stats.HRMin {
			stats.HRMin = s.HR
		}
		if s.HR > stats.HRMax {
			stats.HRMax = s.HR
		}
		stats.RRCount += len(s.RRIntervalsMS)
	}
	return stats
}

// LastSkip reports why the most recent ConsumeReady call emitted nothing,
// or SkipNone after a successful emission.
func (e *Engine) LastSkip() SkipReason {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSkip
}

// trim removes buffer-front entries older than the window, measured from
// the current wall clock rather than the newest sample, so the buffer stays
// bounded even under bursty or backdated pushes. The caller must hold e.mu.
func (e *Engine) trim() {
	cutoff := e.now().Add(-e.window)
	idx := 0
	for idx < len(e.buffer) && e.buffer[idx].Timestamp.Before(cutoff) {
		idx++
	}
	if idx > 0 {
		e.buffer = append([]model.Sample(nil), e.buffer[idx:]...)
	}

	if e.maxSamples > 0 && len(e.buffer) > e.maxSamples {
		e.buffer = append([]model.Sample(nil), e.buffer[len(e.buffer)-e.maxSamples:]...)
	}
}

// applyPriors multiplies each class probability by its configured prior and
// renormalizes. Labels without a prior keep weight 1, so a partial prior map
// only reweights the named classes.
func applyPriors(probs, priors map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(probs))
	sum := 0.0
	for label, p := range probs {
		prior, ok := priors[label]
		if !ok {
			prior = 1.0
		}
		out[label] = p * prior
		sum += out[label]
	}
	if sum > 0 {
		for label := range out {
			out[label] /= sum
		}
	}
	return out
}

func (e *Engine) skip(reason SkipReason) {
	e.lastSkip = reason
	metrics.RecordTickSkipped(string(reason))
}

func (e *Engine) updateBufferGauges() {
	rr := 0
	for i := range e.buffer {
		rr += len(e.buffer[i].RRIntervalsMS)
	}
	metrics.UpdateBufferSamples(len(e.buffer))
	metrics.UpdateBufferRRTotal(rr)
}
