// Package service provides the core business service that implements
// the dependencies required by the HTTP API: it owns the sample queue,
// the worker pool, the sliding-window engine, and the result history.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	samplequeue "github.com/synheart/emotion-go/internal/adapters/mq/queue"
	workerpool "github.com/synheart/emotion-go/internal/adapters/mq/worker"
	repository "github.com/synheart/emotion-go/internal/adapters/repository"
	"github.com/synheart/emotion-go/internal/domain/dedupe"
	"github.com/synheart/emotion-go/internal/domain/engine"
	"github.com/synheart/emotion-go/internal/domain/inference"
	"github.com/synheart/emotion-go/internal/domain/model"
	"github.com/synheart/emotion-go/pkg/logger"
	"github.com/synheart/emotion-go/pkg/metrics"
)

// Publisher pushes emitted results to an external sink. The Redis stream
// publisher implements it; the service treats publish failures as
// non-fatal.
type Publisher interface {
	Publish(ctx context.Context, r model.EmotionResult) error
}

// Service implements the API dependencies for the emotion pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	classifier  inference.Model
	engine      *engine.Engine
	deduper     dedupe.Deduper
	sampleQueue samplequeue.Queue
	workerPool  *workerpool.Pool
	history     repository.Store
	publisher   Publisher

	// Configuration
	window           time.Duration
	step             time.Duration
	minRRCount       int
	hrBaseline       *float64
	maxBufferSamples int
	workerCount      int
	queueSize        int
	dedupeSize       int
	historySize      int
	pollInterval     time.Duration

	// State
	started  bool
	stopCh   chan struct{}
	loopDone chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModel sets the classifier used by the engine. Defaults to the
// embedded WESAD model.
func WithModel(m inference.Model) Option {
	return func(s *Service) {
		if m != nil {
			s.classifier = m
		}
	}
}

// WithWindow sets the sliding window duration.
func WithWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithStep sets the minimum interval between emissions.
func WithStep(step time.Duration) Option {
	return func(s *Service) {
		if step > 0 {
			s.step = step
		}
	}
}

// WithMinRRCount sets the minimum aggregated RR intervals per emission.
func WithMinRRCount(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.minRRCount = n
		}
	}
}

// WithHRBaseline personalizes hr_mean by subtracting a resting baseline.
func WithHRBaseline(baseline float64) Option {
	return func(s *Service) {
		s.hrBaseline = &baseline
	}
}

// WithMaxBufferSamples caps the engine buffer.
func WithMaxBufferSamples(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBufferSamples = n
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the sample queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithHistorySize bounds the result history store.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithPollInterval sets how often the emission loop polls the engine.
func WithPollInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// WithPublisher attaches an external result sink.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		window:       60 * time.Second,
		step:         5 * time.Second,
		minRRCount:   30,
		workerCount:  runtime.NumCPU(),
		queueSize:    10000,
		dedupeSize:   50000,
		historySize:  1000,
		pollInterval: time.Second,
		stopCh:       make(chan struct{}),
		loopDone:     make(chan struct{}),
		logger:       logger.Get(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting emotion service...")

	if s.classifier == nil {
		s.classifier = inference.DefaultModel()
		s.logger.Info(ctx, "using embedded default model")
	}

	engineOpts := []engine.Option{
		engine.WithWindow(s.window),
		engine.WithStep(s.step),
		engine.WithMinRRCount(s.minRRCount),
		engine.WithLogger(s.logger.Named("engine")),
	}
	if s.hrBaseline != nil {
		engineOpts = append(engineOpts, engine.WithHRBaseline(*s.hrBaseline))
	}
	if s.maxBufferSamples > 0 {
		engineOpts = append(engineOpts, engine.WithMaxBufferSamples(s.maxBufferSamples))
	}

	eng, err := engine.New(s.classifier, engineOpts...)
	if err != nil {
		return err
	}
	s.engine = eng

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.sampleQueue = samplequeue.NewInMemoryQueue(
		samplequeue.WithCapacity(s.queueSize),
	)
	s.history = repository.NewRingStore(
		repository.WithCapacity(s.historySize),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.sampleQueue, s.engine)
	s.workerPool.Start(ctx)

	go s.emissionLoop()

	s.started = true
	meta := s.classifier.Metadata()
	s.logger.Info(ctx, "emotion service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("modelID", meta.ID),
		logger.String("modelVersion", meta.Version),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping emotion service...")

	// Signal the emission loop to stop and wait for it
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}
	<-s.loopDone

	// Stop worker pool and close the queue
	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}

	if closer, ok := s.publisher.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "emotion service stopped")
}

// emissionLoop polls the engine for throttled results and fans them out to
// the history store and the optional publisher.
func (s *Service) emissionLoop() {
	defer close(s.loopDone)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	ctx := context.Background()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			for _, r := range s.engine.ConsumeReady(ctx) {
				s.history.Append(ctx, r)
				if s.publisher != nil {
					if err := s.publisher.Publish(ctx, r); err != nil {
						metrics.RecordPublishError()
						s.logger.Error(ctx, "result publish failed",
							logger.String("resultID", r.ID),
							logger.Error(err),
						)
					} else {
						metrics.RecordResultPublished()
					}
				}
			}
		}
	}
}

// Enqueue submits a sample for asynchronous processing. Duplicate sample
// IDs are dropped and reported as accepted; a full queue reports false.
func (s *Service) Enqueue(ctx context.Context, sample model.Sample) bool {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		s.logger.Warn(ctx, "sample rejected, service not started",
			logger.String("sampleID", sample.SampleID),
		)
		return false
	}

	s.logger.Debug(ctx, "received sample",
		logger.String("sampleID", sample.SampleID),
		logger.Float64("hr", sample.HR),
		logger.Int("rrCount", len(sample.RRIntervalsMS)),
	)

	if sample.SampleID != "" {
		if s.deduper.SeenAndRecord(ctx, sample.SampleID) {
			s.logger.Debug(ctx, "duplicate sample detected, skipping",
				logger.String("sampleID", sample.SampleID),
			)
			metrics.RecordSampleDropped("duplicate")
			return true // processed (as duplicate)
		}
	}

	ok := s.sampleQueue.Enqueue(ctx, sample)
	if !ok && sample.SampleID != "" {
		// Allow a retry of the same sample after a full-queue drop.
		s.deduper.Unrecord(ctx, sample.SampleID)
	}
	if ok {
		metrics.RecordSampleReceived("queue")
	}
	return ok
}

// LatestResult returns the most recent emitted result.
func (s *Service) LatestResult(ctx context.Context) (model.EmotionResult, error) {
	return s.history.Latest(ctx)
}

// RecentResults returns up to limit results, newest first.
func (s *Service) RecentResults(ctx context.Context, limit int) ([]model.EmotionResult, error) {
	return s.history.Recent(ctx, limit)
}

// BufferStats returns a snapshot of the engine window.
func (s *Service) BufferStats(ctx context.Context) model.BufferStats {
	return s.engine.BufferStats(ctx)
}

// ClearBuffer empties the engine window and resets the throttle.
func (s *Service) ClearBuffer(ctx context.Context) {
	s.engine.Clear(ctx)
}

// LastSkip reports why the engine's most recent tick emitted nothing.
func (s *Service) LastSkip() engine.SkipReason {
	return s.engine.LastSkip()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		buffer := s.engine.BufferStats(ctx)
		meta := s.classifier.Metadata()

		stats["queueLength"] = s.sampleQueue.Len(ctx)
		stats["historyCount"] = s.history.Count(ctx)
		stats["bufferSamples"] = buffer.SampleCount
		stats["bufferRRCount"] = buffer.RRCount
		stats["modelID"] = meta.ID
		stats["modelVersion"] = meta.Version
		stats["lastSkip"] = string(s.engine.LastSkip())
	}

	return stats
}
