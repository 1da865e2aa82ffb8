// Package config defines service configuration structures and loading hooks.
//
// Conventions follow the rest of the service: defaults come from New,
// Load layers an optional YAML file and environment variables on top, and
// external errors are wrapped via this package's sentinels.
package config

import "runtime"

// Config contains process configuration for the emotion inference service.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WindowSeconds is the sliding window duration for feature extraction.
	WindowSeconds float64 `koanf:"window_seconds"`

	// StepSeconds is the emission cadence for results.
	StepSeconds float64 `koanf:"step_seconds"`

	// MinRRCount is the minimum aggregated RR intervals required to emit.
	MinRRCount int `koanf:"min_rr_count"`

	// HRBaseline, when set, personalizes hr_mean by subtraction.
	HRBaseline *float64 `koanf:"hr_baseline"`

	// MaxBufferSamples caps the window buffer; 0 means time-bounded only.
	MaxBufferSamples int `koanf:"max_buffer_samples"`

	// ModelPath points at a JSON model definition; empty selects the
	// embedded default model.
	ModelPath string `koanf:"model_path"`

	// PollIntervalMS is how often the emission loop polls for results.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// QueueSize bounds the in-memory sample queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the sample-ID deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// HistorySize bounds the in-memory result history store.
	HistorySize int `koanf:"history_size"`

	// MQTTBroker enables the MQTT ingest adapter when non-empty,
	// e.g. "tcp://localhost:1883".
	MQTTBroker string `koanf:"mqtt_broker"`

	// MQTTTopic is the subscription filter for biosignal payloads.
	MQTTTopic string `koanf:"mqtt_topic"`

	// MQTTClientID identifies this consumer to the broker.
	MQTTClientID string `koanf:"mqtt_client_id"`

	// RedisAddr enables the Redis result publisher when non-empty.
	RedisAddr string `koanf:"redis_addr"`

	// RedisStream is the stream key results are appended to.
	RedisStream string `koanf:"redis_stream"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		WindowSeconds:    60.0,
		StepSeconds:      5.0,
		MinRRCount:       30,
		MaxBufferSamples: 0,
		PollIntervalMS:   1000,
		QueueSize:        10_000,
		WorkerCount:      runtime.NumCPU(),
		DedupeSize:       50_000,
		HistorySize:      1_000,
		MQTTTopic:        "biosignal/+/hrv",
		MQTTClientID:     "emotion-go",
		RedisStream:      "emotion:results",
	}
}
