// Package mqtt ingests biosignal samples from an MQTT broker.
//
// Wearable bridges publish one JSON payload per sample on
// biosignal/<subject>/hrv. The consumer decodes payloads into domain
// samples and hands them to the service for deduplication and queueing.
// Delivery is at-least-once, so the service-side deduper matters here.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/synheart/emotion-go/internal/domain/model"
	"github.com/synheart/emotion-go/pkg/logger"
	"github.com/synheart/emotion-go/pkg/metrics"
)

// Default consumer configuration constants.
const (
	defaultQoS        = 1
	disconnectQuiesce = 250 // milliseconds
	connectTimeout    = 10 * time.Second
)

// Ingestor accepts decoded samples. The app service implements it.
type Ingestor interface {
	Enqueue(ctx context.Context, s model.Sample) bool
}

// samplePayload mirrors the JSON published by wearable bridges.
type samplePayload struct {
	SampleID      string             `json:"sample_id"`
	SubjectID     string             `json:"subject_id"`
	HR            float64            `json:"hr"`
	RRIntervalsMS []float64          `json:"rr_intervals_ms"`
	Motion        map[string]float64 `json:"motion,omitempty"`
	TS            string             `json:"ts"`
}

// Consumer subscribes to the biosignal topic and feeds the ingestor.
type Consumer struct {
	broker   string
	topic    string
	clientID string
	username string
	password string
	qos      byte

	client   paho.Client
	ingestor Ingestor
	logger   logger.Logger
}

// NewConsumer creates an MQTT consumer; Start connects and subscribes.
func NewConsumer(broker, topic string, ingestor Ingestor, opts ...Option) *Consumer {
	c := &Consumer{
		broker:   broker,
		topic:    topic,
		clientID: "emotion-go",
		qos:      defaultQoS,
		ingestor: ingestor,
		logger:   logger.Get().Named("mqtt"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start connects to the broker and subscribes to the sample topic.
func (c *Consumer) Start(ctx context.Context) error {
	opts := paho.NewClientOptions()
	opts.AddBroker(c.broker)
	opts.SetClientID(c.clientID)
	if c.username != "" {
		opts.SetUsername(c.username)
	}
	if c.password != "" {
		opts.SetPassword(c.password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetOnConnectHandler(func(client paho.Client) {
		c.logger.Info(ctx, "mqtt connected", logger.String("broker", c.broker))
	})
	opts.SetConnectionLostHandler(func(client paho.Client, err error) {
		c.logger.Warn(ctx, "mqtt connection lost", logger.Error(err))
	})

	c.client = paho.NewClient(opts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("%w: %v", ErrConnect, token.Error())
	}

	if token := c.client.Subscribe(c.topic, c.qos, c.handleMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("%w: topic %s: %v", ErrSubscribe, c.topic, token.Error())
	}

	c.logger.Info(ctx, "mqtt consumer started",
		logger.String("topic", c.topic),
		logger.String("clientID", c.clientID),
	)
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (c *Consumer) Stop() {
	if c.client == nil {
		return
	}
	if token := c.client.Unsubscribe(c.topic); token.Wait() && token.Error() != nil {
		c.logger.Warn(context.Background(), "mqtt unsubscribe failed", logger.Error(token.Error()))
	}
	c.client.Disconnect(disconnectQuiesce)
}

func (c *Consumer) handleMessage(client paho.Client, msg paho.Message) {
	ctx := context.Background()

	sample, err := DecodeSample(msg.Topic(), msg.Payload())
	if err != nil {
		metrics.RecordSampleDropped("decode_error")
		c.logger.Warn(ctx, "dropping undecodable payload",
			logger.String("topic", msg.Topic()),
			logger.Error(err),
		)
		return
	}

	metrics.RecordSampleReceived("mqtt")
	if !c.ingestor.Enqueue(ctx, sample) {
		metrics.RecordSampleDropped("backpressure")
		c.logger.Warn(ctx, "sample dropped under backpressure",
			logger.String("sampleID", sample.SampleID),
		)
	}
}

// DecodeSample converts a topic and JSON payload into a domain sample.
// A missing subject_id falls back to the topic segment, and a missing or
// invalid timestamp falls back to the receive time.
func DecodeSample(topic string, payload []byte) (model.Sample, error) {
	var p samplePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return model.Sample{}, fmt.Errorf("decode sample payload: %w", err)
	}
	if p.HR <= 0 {
		return model.Sample{}, fmt.Errorf("decode sample payload: non-positive hr %v", p.HR)
	}
	if len(p.RRIntervalsMS) == 0 {
		return model.Sample{}, fmt.Errorf("decode sample payload: missing rr_intervals_ms")
	}

	subject := p.SubjectID
	if subject == "" {
		subject = subjectFromTopic(topic)
	}

	ts := time.Now()
	if p.TS != "" {
		if parsed, err := time.Parse(time.RFC3339, p.TS); err == nil {
			ts = parsed
		}
	}

	return model.Sample{
		SampleID:      p.SampleID,
		SubjectID:     subject,
		HR:            p.HR,
		RRIntervalsMS: p.RRIntervalsMS,
		Motion:        p.Motion,
		Timestamp:     ts,
	}, nil
}

// subjectFromTopic extracts <subject> from biosignal/<subject>/hrv.
func subjectFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}
