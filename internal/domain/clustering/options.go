package clustering

import "github.com/okian/victoria/pkg/logger"

// Defaults mirror the usual k-means settings.
const (
	DefaultClusters    = 5
	DefaultMaxClusters = 10
	DefaultSeed        = 42
	DefaultNInit       = 10
	DefaultMaxIter     = 300
	DefaultTolerance   = 1e-4

	fallbackClusters = 3
)

// Option configures an ArchetypeClusterer.
type Option func(*ArchetypeClusterer)

// WithClusters sets the fixed cluster count.
func WithClusters(k int) Option {
	return func(c *ArchetypeClusterer) {
		if k >= 1 {
			c.nClusters = k
		}
	}
}

// WithOptimize turns silhouette-based selection of k on or off.
func WithOptimize(enabled bool) Option {
	return func(c *ArchetypeClusterer) { c.optimize = enabled }
}

// WithMaxClusters bounds the k range searched by the optimizer.
func WithMaxClusters(k int) Option {
	return func(c *ArchetypeClusterer) {
		if k >= 2 {
			c.maxClusters = k
		}
	}
}

// WithSeed seeds centroid initialization.
func WithSeed(seed int64) Option {
	return func(c *ArchetypeClusterer) { c.seed = seed }
}

// WithNInit sets how many initializations are tried per k.
func WithNInit(n int) Option {
	return func(c *ArchetypeClusterer) {
		if n >= 1 {
			c.nInit = n
		}
	}
}

// WithMaxIter bounds Lloyd iterations per initialization.
func WithMaxIter(n int) Option {
	return func(c *ArchetypeClusterer) {
		if n >= 1 {
			c.maxIter = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *ArchetypeClusterer) {
		if l != nil {
			c.log = l
		}
	}
}
