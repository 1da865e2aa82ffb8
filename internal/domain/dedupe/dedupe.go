// Package dedupe defines the interface for sample idempotency tracking.
// Ingest adapters with at-least-once delivery (MQTT, HTTP retries) use it
// to drop duplicate sample IDs before they reach the queue.
package dedupe

import (
	"context"
	"sync"
)

// Default deduper configuration constants.
const (
	defaultMaxSize = 50000
)

// Deduper records seen sample IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set, allowing a retry after a
	// failed enqueue.
	Unrecord(ctx context.Context, id string)

	// Size returns the current number of tracked IDs.
	Size() int
}

// inMemoryDeduper implements Deduper with a map plus a FIFO eviction ring.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	head    int
	maxSize int
}

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of IDs kept in memory. The oldest IDs are
// evicted first once the bound is reached.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		if maxSize > 0 {
			d.maxSize = maxSize
		}
	}
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{}, d.maxSize)
	d.order = make([]string, 0, d.maxSize)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
	return false
}

func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// Leave the ring entry in place; eviction skips IDs no longer in the
	// map, so stale ring slots are harmless.
	delete(d.seen, id)
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// evictOldest removes the oldest still-tracked ID. Must hold d.mu.
func (d *inMemoryDeduper) evictOldest() {
	for d.head < len(d.order) {
		id := d.order[d.head]
		d.head++
		if _, ok := d.seen[id]; ok {
			delete(d.seen, id)
			break
		}
	}
	// Compact once the consumed prefix dominates the ring.
	if d.head > len(d.order)/2 {
		d.order = append(d.order[:0:0], d.order[d.head:]...)
		d.head = 0
	}
}
