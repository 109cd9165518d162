package dedupe

const defaultMaxSize = 10_000

// Option applies a configuration option to the in-memory deduper.
type Option func(*window)

// WithMaxSize sets the maximum number of fingerprints kept in memory.
// If maxSize > 0: bounded mode, oldest first eviction.
// If maxSize <= 0: unbounded mode (no eviction, no size limit).
func WithMaxSize(maxSize int) Option {
	return func(d *window) {
		d.maxSize = maxSize
	}
}
