package inference

import (
	"fmt"
	"math"

	"github.com/synheart/emotion-go/internal/domain/features"
)

// Params bundles the externally-trained parameters of a linear model.
// Weights is classes x features, aligned to Labels and FeatureNames.
type Params struct {
	ModelID      string
	Version      string
	Labels       []string
	FeatureNames []string
	Weights      [][]float64
	Biases       []float64
	Mu           map[string]float64
	Sigma        map[string]float64
	Training     *TrainingMeta
}

// Option applies a configuration option to a LinearModel under construction.
type Option func(*LinearModel)

// WithScoreFn selects the score-to-probability transform.
func WithScoreFn(fn ScoreFn) Option {
	return func(m *LinearModel) {
		if fn != "" {
			m.scoreFn = fn
		}
	}
}

// WithTemperature scales all class scores before the probability transform.
// 1.0 is a no-op.
func WithTemperature(t float64) Option {
	return func(m *LinearModel) {
		m.temperature = t
	}
}

// LinearModel implements Model with per-class weight vectors, biases, and a
// z-score feature scaler. Immutable after construction; safe for concurrent
// use.
type LinearModel struct {
	id           string
	version      string
	labels       []string
	featureNames []string
	weights      [][]float64
	biases       []float64
	mu           map[string]float64
	sigma        map[string]float64
	scoreFn      ScoreFn
	temperature  float64
	training     *TrainingMeta
}

// NewLinearModel validates the parameter dimensions and builds a model.
// A model failing the structural checks is never constructed.
func NewLinearModel(p Params, opts ...Option) (*LinearModel, error) {
	if len(p.Labels) == 0 {
		return nil, fmt.Errorf("%w: model declares no labels", ErrModelIncompatible)
	}
	if len(p.FeatureNames) == 0 {
		return nil, fmt.Errorf("%w: model declares no features", ErrModelIncompatible)
	}
	if len(p.Weights) != len(p.Labels) {
		return nil, fmt.Errorf("%w: %d weight rows for %d labels",
			ErrModelIncompatible, len(p.Weights), len(p.Labels))
	}
	if len(p.Biases) != len(p.Labels) {
		return nil, fmt.Errorf("%w: %d biases for %d labels",
			ErrModelIncompatible, len(p.Biases), len(p.Labels))
	}
	for i, row := range p.Weights {
		if len(row) != len(p.FeatureNames) {
			return nil, fmt.Errorf("%w: weight row %d has %d columns for %d features",
				ErrModelIncompatible, i, len(row), len(p.FeatureNames))
		}
		for _, w := range row {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("%w: non-finite weight in row %d", ErrModelIncompatible, i)
			}
		}
	}
	for i, b := range p.Biases {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, fmt.Errorf("%w: non-finite bias for class %d", ErrModelIncompatible, i)
		}
	}

	m := &LinearModel{
		id:           p.ModelID,
		version:      p.Version,
		labels:       append([]string(nil), p.Labels...),
		featureNames: append([]string(nil), p.FeatureNames...),
		weights:      p.Weights,
		biases:       p.Biases,
		mu:           p.Mu,
		sigma:        p.Sigma,
		scoreFn:      ScoreSoftmax,
		temperature:  1.0,
		training:     p.Training,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.scoreFn != ScoreSoftmax && m.scoreFn != ScoreSigmoid {
		return nil, fmt.Errorf("%w: unsupported score function %q", ErrModelIncompatible, m.scoreFn)
	}
	if m.temperature <= 0 || math.IsNaN(m.temperature) || math.IsInf(m.temperature, 0) {
		return nil, fmt.Errorf("%w: temperature must be positive", ErrModelIncompatible)
	}

	return m, nil
}

// Predict validates, normalizes, orders, scores, and converts to
// probabilities. Callers supplying a mapping in any insertion order get
// identical results: the feature vector is assembled in the model's
// canonical order, never the caller's.
func (m *LinearModel) Predict(featureValues map[string]float64) (map[string]float64, error) {
	if err := features.Validate(featureValues, m.featureNames); err != nil {
		return nil, err
	}

	normalized := features.Normalize(featureValues, m.mu, m.sigma)

	vector := make([]float64, len(m.featureNames))
	for i, name := range m.featureNames {
		vector[i] = normalized[name]
	}

	scores := make([]float64, len(m.labels))
	for c, row := range m.weights {
		s := m.biases[c]
		for i, w := range row {
			s += w * vector[i]
		}
		if m.temperature != 1.0 {
			s /= m.temperature
		}
		scores[c] = s
	}

	switch m.scoreFn {
	case ScoreSigmoid:
		return m.sigmoid(scores), nil
	default:
		return m.softmax(scores), nil
	}
}

// softmax subtracts the maximum score before exponentiating. The shift is a
// numerical-stability requirement, not an optimization.
func (m *LinearModel) softmax(scores []float64) map[string]float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	exps := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		exps[i] = math.Exp(s - maxScore)
		sum += exps[i]
	}

	out := make(map[string]float64, len(m.labels))
	for i, label := range m.labels {
		out[label] = exps[i] / sum
	}
	return out
}

func (m *LinearModel) sigmoid(scores []float64) map[string]float64 {
	out := make(map[string]float64, len(m.labels))
	for i, label := range m.labels {
		out[label] = 1.0 / (1.0 + math.Exp(-scores[i]))
	}
	return out
}

// FeatureNames returns the required input features in canonical order.
func (m *LinearModel) FeatureNames() []string {
	return append([]string(nil), m.featureNames...)
}

// Labels returns the class labels in declared order.
func (m *LinearModel) Labels() []string {
	return append([]string(nil), m.labels...)
}

// Metadata returns identity and shape information.
func (m *LinearModel) Metadata() Metadata {
	return Metadata{
		ID:           m.id,
		Version:      m.version,
		Type:         "linear",
		Labels:       append([]string(nil), m.labels...),
		FeatureNames: append([]string(nil), m.featureNames...),
		NumClasses:   len(m.labels),
		NumFeatures:  len(m.featureNames),
		Training:     m.training,
	}
}
