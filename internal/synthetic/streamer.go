package synthetic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/synheart/emotion-go/internal/domain/model"
	"github.com/synheart/emotion-go/pkg/logger"
)

// streamRequest mirrors the POST /samples wire schema.
type streamRequest struct {
	SampleID      string             `json:"sample_id"`
	SubjectID     string             `json:"subject_id"`
	HR            float64            `json:"hr"`
	RRIntervalsMS []float64          `json:"rr_intervals_ms"`
	Motion        map[string]float64 `json:"motion,omitempty"`
	TS            string             `json:"ts"`
}

// Streamer posts generated samples to a running service.
type Streamer struct {
	url    string
	gen    *Generator
	client *http.Client
	logger logger.Logger
}

// NewStreamer creates a streamer targeting the service's samples endpoint.
func NewStreamer(url string, gen *Generator) *Streamer {
	return &Streamer{
		url:    url,
		gen:    gen,
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger.Get().Named("synthetic"),
	}
}

// Run posts one sample per interval until ctx is canceled or the duration
// elapses. It returns the number of samples accepted by the service.
func (s *Streamer) Run(ctx context.Context, interval, duration time.Duration) (int, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	deadline := time.After(duration)
	accepted := 0

	for {
		select {
		case <-ctx.Done():
			return accepted, ctx.Err()
		case <-deadline:
			return accepted, nil
		case <-ticker.C:
			if err := s.post(ctx, s.gen.Next()); err != nil {
				s.logger.Warn(ctx, "sample post failed", logger.Error(err))
				continue
			}
			accepted++
		}
	}
}

func (s *Streamer) post(ctx context.Context, sample model.Sample) error {
	body, err := json.Marshal(streamRequest{
		SampleID:      sample.SampleID,
		SubjectID:     sample.SubjectID,
		HR:            sample.HR,
		RRIntervalsMS: sample.RRIntervalsMS,
		Motion:        sample.Motion,
		TS:            sample.Timestamp.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode sample: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post sample: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("post sample: unexpected status %d", resp.StatusCode)
	}
	return nil
}
