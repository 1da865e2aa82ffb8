package inference

import (
	"encoding/json"
	"fmt"
	"os"
)

// ModelDefinition is the wire format for externally-trained model
// parameters. Scaler arrays are parallel to FeatureNames; weight rows are
// parallel to Labels.
type ModelDefinition struct {
	Type         string           `json:"type"`
	Version      string           `json:"version"`
	ModelID      string           `json:"model_id"`
	FeatureNames []string         `json:"feature_names"`
	Labels       []string         `json:"labels"`
	Scaler       ScalerDefinition `json:"scaler"`
	Weights      [][]float64      `json:"weights"`
	Biases       []float64        `json:"biases"`
	Inference    InferenceOptions `json:"inference"`
	Training     *TrainingMeta    `json:"training,omitempty"`
}

// ScalerDefinition holds the z-score statistics aligned to feature order.
type ScalerDefinition struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// InferenceOptions selects the probability transform for a model file.
type InferenceOptions struct {
	ScoreFn     string  `json:"score_fn"`
	Temperature float64 `json:"temperature"`
}

// ParseModel decodes a JSON model definition and constructs a LinearModel,
// rejecting malformed instances at load time.
func ParseModel(data []byte) (*LinearModel, error) {
	var def ModelDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode model definition: %w", err)
	}
	return def.Build()
}

// LoadModelFile reads and parses a model definition from disk.
func LoadModelFile(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return ParseModel(data)
}

// Build validates the definition and constructs the model.
func (d ModelDefinition) Build() (*LinearModel, error) {
	if len(d.Scaler.Mean) != len(d.FeatureNames) || len(d.Scaler.Std) != len(d.FeatureNames) {
		return nil, fmt.Errorf("%w: scaler arrays have %d/%d entries for %d features",
			ErrModelIncompatible, len(d.Scaler.Mean), len(d.Scaler.Std), len(d.FeatureNames))
	}

	mu := make(map[string]float64, len(d.FeatureNames))
	sigma := make(map[string]float64, len(d.FeatureNames))
	for i, name := range d.FeatureNames {
		mu[name] = d.Scaler.Mean[i]
		sigma[name] = d.Scaler.Std[i]
	}

	opts := make([]Option, 0, 2)
	if d.Inference.ScoreFn != "" {
		opts = append(opts, WithScoreFn(ScoreFn(d.Inference.ScoreFn)))
	}
	if d.Inference.Temperature != 0 {
		opts = append(opts, WithTemperature(d.Inference.Temperature))
	}

	return NewLinearModel(Params{
		ModelID:      d.ModelID,
		Version:      d.Version,
		Labels:       d.Labels,
		FeatureNames: d.FeatureNames,
		Weights:      d.Weights,
		Biases:       d.Biases,
		Mu:           mu,
		Sigma:        sigma,
		Training:     d.Training,
	}, opts...)
}
