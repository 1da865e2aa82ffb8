package mqtt

import "errors"

// Sentinel kinds for MQTT consumer errors.
var (
	ErrConnect   = errors.New("mqtt connect failed")
	ErrSubscribe = errors.New("mqtt subscribe failed")
)
