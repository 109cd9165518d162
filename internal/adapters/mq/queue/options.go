package queue

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum capacity of the queue.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithGauge sets the callback that receives queue depth and capacity after every change.
// Defaults to the process-wide metrics.
func WithGauge(fn func(size, capacity int)) Option {
	return func(q *InMemoryQueue) {
		if fn != nil {
			q.gauge = fn
		}
	}
}
