// Package worker defines worker contracts for asynchronous sample ingestion.
//
// Workers drain the sample queue and feed the sliding-window engine. The
// engine's Push is lock-serialized and cheap, so a small pool is enough to
// keep up with bursty producers while the queue absorbs spikes.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/synheart/emotion-go/internal/domain/model"
	"github.com/synheart/emotion-go/pkg/logger"
	"github.com/synheart/emotion-go/pkg/metrics"
)

// Default worker configuration constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Sample abstracts what workers read off the queue.
// Using the model.Sample type for consistency.
type Sample = model.Sample

// Pusher receives dequeued samples. The sliding-window engine implements it.
type Pusher interface {
	Push(ctx context.Context, s model.Sample)
}

// Queue defines how workers receive samples.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Sample
}

// Worker processes samples using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// IngestWorker implements Worker for feeding the engine.
type IngestWorker struct {
	queue  Queue
	pusher Pusher
	name   string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewIngestWorker creates a new worker with configuration options.
func NewIngestWorker(queue Queue, pusher Pusher, opts ...Option) *IngestWorker {
	w := &IngestWorker{
		queue:    queue,
		pusher:   pusher,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *IngestWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	sampleChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-sampleChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}
			w.pusher.Push(ctx, s)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *IngestWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*IngestWorker
	queue   Queue
	pusher  Pusher

	// Shutdown control
	stopOnce sync.Once

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, pusher Pusher) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*IngestWorker, workerCount),
		queue:   queue,
		pusher:  pusher,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewIngestWorker(
			queue,
			pusher,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop gracefully stops all workers with a bounded wait.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		for _, worker := range p.workers {
			close(worker.shutdown)
		}
	})

	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new samples
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Signal shutdown to all workers
	p.stopOnce.Do(func() {
		for _, worker := range p.workers {
			close(worker.shutdown)
		}
	})

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)

	return nil
}
