// Package mqtt ingests biosignal samples from an MQTT broker.
package mqtt

import (
	"github.com/synheart/emotion-go/pkg/logger"
)

// Option applies a configuration option to the Consumer.
type Option func(*Consumer)

// WithClientID identifies this consumer to the broker.
func WithClientID(id string) Option {
	return func(c *Consumer) {
		if id != "" {
			c.clientID = id
		}
	}
}

// WithQoS sets the subscription quality of service.
func WithQoS(qos byte) Option {
	return func(c *Consumer) {
		if qos <= 2 {
			c.qos = qos
		}
	}
}

// WithCredentials sets broker authentication.
func WithCredentials(username, password string) Option {
	return func(c *Consumer) {
		c.username = username
		c.password = password
	}
}

// WithLogger sets a custom logger for the consumer.
func WithLogger(logger logger.Logger) Option {
	return func(c *Consumer) {
		if logger != nil {
			c.logger = logger
		}
	}
}
