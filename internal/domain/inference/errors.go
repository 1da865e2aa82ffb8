package inference

import "errors"

// Sentinel kinds for inference errors.
var (
	// ErrModelIncompatible marks structural mismatches between a model's
	// dimensions and its declared feature/label counts. Fatal at load time.
	ErrModelIncompatible = errors.New("model incompatible")
)
