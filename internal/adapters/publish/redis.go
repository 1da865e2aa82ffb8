// Package publish pushes emitted emotion results to external sinks.
//
// The Redis publisher appends each result to a stream, giving downstream
// consumers (dashboards, session recorders) a replayable feed without the
// service having to know about them.
package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/synheart/emotion-go/internal/domain/model"
	"github.com/synheart/emotion-go/pkg/logger"
)

// Default publisher configuration constants.
const (
	defaultStream    = "emotion:results"
	defaultMaxStream = 10000
)

// RedisPublisher appends results to a Redis stream via XADD.
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
	logger logger.Logger
}

// Option applies a configuration option to the RedisPublisher.
type Option func(*RedisPublisher)

// WithStream sets the destination stream key.
func WithStream(stream string) Option {
	return func(p *RedisPublisher) {
		if stream != "" {
			p.stream = stream
		}
	}
}

// WithMaxStreamLength caps the stream with approximate trimming.
func WithMaxStreamLength(n int64) Option {
	return func(p *RedisPublisher) {
		if n > 0 {
			p.maxLen = n
		}
	}
}

// WithLogger sets a custom logger for the publisher.
func WithLogger(logger logger.Logger) Option {
	return func(p *RedisPublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewRedisPublisher creates a publisher for the given Redis address.
func NewRedisPublisher(addr string, opts ...Option) *RedisPublisher {
	p := &RedisPublisher{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		stream: defaultStream,
		maxLen: defaultMaxStream,
		logger: logger.Get().Named("publisher"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish appends one result to the stream.
func (p *RedisPublisher) Publish(ctx context.Context, r model.EmotionResult) error {
	values, err := EncodeResult(r)
	if err != nil {
		return err
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	p.logger.Debug(ctx, "published result",
		logger.String("stream", p.stream),
		logger.String("resultID", r.ID),
	)
	return nil
}

// Close releases the underlying Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// EncodeResult flattens a result into stream fields. The full payload rides
// in a JSON field; the emotion and confidence are duplicated as plain fields
// so consumers can filter without decoding.
func EncodeResult(r model.EmotionResult) (map[string]interface{}, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrPublish, err)
	}
	return map[string]interface{}{
		"data":       string(data),
		"emotion":    r.Emotion,
		"confidence": fmt.Sprintf("%.6f", r.Confidence),
		"model_id":   r.ModelID,
		"ts":         r.Timestamp.Unix(),
	}, nil
}
