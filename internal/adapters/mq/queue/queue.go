// Package queue defines the contract for enqueuing and consuming samples.
//
// Ingest adapters (HTTP, MQTT) enqueue; workers dequeue and feed the
// sliding-window engine. The implementation is an in-memory bounded queue
// backed by a buffered channel.
package queue

import (
	"context"
	"sync"

	"github.com/synheart/emotion-go/internal/domain/model"
	"github.com/synheart/emotion-go/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
)

// Sample represents the payload type flowing through the queue.
// Using the model.Sample type for type safety.
type Sample = model.Sample

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a sample to the queue.
	// Returns false if the queue is full or closed and the sample was dropped.
	Enqueue(ctx context.Context, s Sample) bool

	// Dequeue returns a channel that will receive samples as they become
	// available. The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Sample

	// Len returns the current number of queued samples.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new samples
	// can be enqueued and the dequeue channel will be closed once drained.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	samples  chan Sample
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.samples = make(chan Sample, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a sample to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Sample) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.samples <- s:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false
	default:
		metrics.RecordQueueEnqueueError()
		return false // queue is full
	}
}

// Dequeue returns a channel that will receive samples as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Sample {
	// Wrap the channel to track dequeue metrics.
	out := make(chan Sample)
	go func() {
		defer close(out)
		for s := range q.samples {
			select {
			case out <- s:
				metrics.RecordQueueDequeue()
				q.updateGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued samples.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.samples)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil // already closed
	}

	close(q.samples)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.samples)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
