package repository

// Option applies a configuration option to the RingStore.
type Option func(*RingStore)

// WithCapacity bounds the number of retained results. Once full, the oldest
// result is overwritten by each append.
func WithCapacity(capacity int) Option {
	return func(s *RingStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}
