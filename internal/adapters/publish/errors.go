package publish

import "errors"

// Sentinel kinds for publisher errors.
var (
	ErrPublish = errors.New("result publish failed")
)
