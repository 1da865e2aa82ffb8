// Package inference holds the classifier contract and its linear
// implementation. The sliding-window engine depends only on the Model
// interface, never on a concrete representation, so alternative backends
// can be swapped in without touching the engine.
package inference

// ScoreFn selects how class scores are converted to probabilities.
type ScoreFn string

const (
	// ScoreSoftmax normalizes scores into a probability distribution.
	ScoreSoftmax ScoreFn = "softmax"

	// ScoreSigmoid applies an independent logistic transform per class.
	// Probabilities in this mode need not sum to 1; that is a model-variant
	// semantic, not a bug.
	ScoreSigmoid ScoreFn = "sigmoid"
)

// TrainingMeta carries optional offline-training information. It is used
// only for introspection and reporting, never for inference logic.
type TrainingMeta struct {
	Accuracy    float64 `json:"accuracy"`
	Dataset     string  `json:"dataset"`
	SampleCount int     `json:"sample_count"`
}

// Metadata describes a model's identity and shape.
type Metadata struct {
	ID           string
	Version      string
	Type         string
	Labels       []string
	FeatureNames []string
	NumClasses   int
	NumFeatures  int
	Training     *TrainingMeta
}

// Model is the capability interface the engine depends on: given a named
// feature mapping, return a label-probability mapping plus metadata.
type Model interface {
	// Predict maps feature values to label probabilities. It propagates
	// validation failures to the caller; streaming callers are expected to
	// absorb them.
	Predict(featureValues map[string]float64) (map[string]float64, error)

	// FeatureNames returns the required input features in canonical order.
	FeatureNames() []string

	// Labels returns the class labels in declared order.
	Labels() []string

	// Metadata returns identity and shape information.
	Metadata() Metadata
}

// TopLabel selects the highest-probability label deterministically: strict
// maximum, ties broken by first occurrence in the declared class order.
func TopLabel(probabilities map[string]float64, classOrder []string) (string, float64) {
	best := ""
	bestProb := 0.0
	first := true
	for _, label := range classOrder {
		p, ok := probabilities[label]
		if !ok {
			continue
		}
		if first || p > bestProb {
			best = label
			bestProb = p
			first = false
		}
	}
	return best, bestProb
}
