package rasch

import (
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/pkg/logger"
)

// Default estimation settings.
const (
	DefaultMaxIterations = 100
	DefaultTolerance     = 1e-6
	DefaultSeed          = 42
	DefaultInitScale     = 0.5

	minCurvature = 1e-10
	ridgePenalty = 1e-4
)

type settings struct {
	maxIterations int
	tolerance     float64
	seed          int64
	initScale     float64
	scaleMin      float64
	scaleMax      float64
	log           logger.Logger
}

func defaultSettings() settings {
	return settings{
		maxIterations: DefaultMaxIterations,
		tolerance:     DefaultTolerance,
		seed:          DefaultSeed,
		initScale:     DefaultInitScale,
		scaleMin:      model.ScaleMin,
		scaleMax:      model.ScaleMax,
		log:           logger.NewNop(),
	}
}

// Option configures an estimator.
type Option func(*settings)

// WithMaxIterations bounds the number of sweeps.
func WithMaxIterations(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithTolerance sets the convergence threshold on parameter change.
func WithTolerance(tol float64) Option {
	return func(s *settings) {
		if tol > 0 {
			s.tolerance = tol
		}
	}
}

// WithSeed seeds the initial parameter draw.
func WithSeed(seed int64) Option {
	return func(s *settings) { s.seed = seed }
}

// WithInitScale sets the standard deviation of the initial draw.
func WithInitScale(sigma float64) Option {
	return func(s *settings) {
		if sigma >= 0 {
			s.initScale = sigma
		}
	}
}

// WithScale sets the category range used to map responses onto [0, 1].
func WithScale(lo, hi int) Option {
	return func(s *settings) {
		if lo < hi {
			s.scaleMin, s.scaleMax = float64(lo), float64(hi)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}
