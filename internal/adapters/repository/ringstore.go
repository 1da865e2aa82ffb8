package repository

import (
	"context"
	"sync"

	"github.com/synheart/emotion-go/internal/domain/model"
	"github.com/synheart/emotion-go/pkg/metrics"
)

// Default history configuration constants.
const (
	defaultCapacity = 1000
)

// RingStore is a fixed-capacity in-memory Store. Appends overwrite the
// oldest entry once the ring is full, so memory stays bounded no matter how
// long the service runs. All methods are safe for concurrent use.
type RingStore struct {
	mu       sync.RWMutex
	capacity int
	ring     []model.EmotionResult
	next     int
	size     int
}

// NewRingStore creates an empty history store.
func NewRingStore(opts ...Option) *RingStore {
	s := &RingStore{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ring = make([]model.EmotionResult, s.capacity)
	return s
}

// Append records a result, evicting the oldest entry when full.
func (s *RingStore) Append(ctx context.Context, r model.EmotionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring[s.next] = r
	s.next = (s.next + 1) % s.capacity
	if s.size < s.capacity {
		s.size++
	}
	metrics.UpdateHistorySize(s.size)
}

// Latest returns the most recently appended result.
func (s *RingStore) Latest(ctx context.Context) (model.EmotionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.size == 0 {
		return model.EmotionResult{}, ErrEmpty
	}
	idx := (s.next - 1 + s.capacity) % s.capacity
	return s.ring[idx], nil
}

// Recent returns up to limit results, newest first.
func (s *RingStore) Recent(ctx context.Context, limit int) ([]model.EmotionResult, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := limit
	if n > s.size {
		n = s.size
	}
	out := make([]model.EmotionResult, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + s.capacity) % s.capacity
		out = append(out, s.ring[idx])
	}
	return out, nil
}

// Count returns the number of retained results.
func (s *RingStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}
