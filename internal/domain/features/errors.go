package features

import "errors"

// Sentinel kinds for feature validation errors.
var (
	ErrBadInput = errors.New("bad input")
)
