package inference

import "github.com/synheart/emotion-go/internal/domain/features"

// DefaultModel builds the embedded WESAD-derived placeholder model.
//
// The weights are demonstration values, not a clinically trained model.
// Construction is explicit dependency injection: nothing in this package
// installs the model as global state, so tests and hosts can substitute
// their own fixtures.
func DefaultModel() *LinearModel {
	m, err := NewLinearModel(Params{
		ModelID: "wesad_emotion_v1_0",
		Version: "1.0",
		Labels:  []string{"Amused", "Calm", "Stressed"},
		FeatureNames: []string{
			features.FeatureHRMean,
			features.FeatureSDNN,
			features.FeatureRMSSD,
		},
		Weights: [][]float64{
			{0.12, 0.5, 0.3},    // Amused: higher HR, higher HRV
			{-0.21, -0.4, -0.3}, // Calm: lower HR, lower HRV
			{0.02, 0.2, 0.1},    // Stressed: slightly higher HR, moderate HRV
		},
		Biases: []float64{-0.2, 0.3, 0.1},
		Mu: map[string]float64{
			features.FeatureHRMean: 72.5,
			features.FeatureSDNN:   45.3,
			features.FeatureRMSSD:  32.1,
		},
		Sigma: map[string]float64{
			features.FeatureHRMean: 12.0,
			features.FeatureSDNN:   18.7,
			features.FeatureRMSSD:  12.4,
		},
	})
	if err != nil {
		// The embedded dimensions are fixed at compile time; a failure here
		// is a programming error.
		panic(err)
	}
	return m
}
