package matrix

import (
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/pkg/logger"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for data-quality warnings.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithScale sets the accepted category range. Records outside it are dropped.
func WithScale(lo, hi int) Option {
	return func(b *Builder) {
		if lo < hi {
			b.scaleMin, b.scaleMax = lo, hi
		}
	}
}

func defaults() *Builder {
	return &Builder{log: logger.NewNop(), scaleMin: model.ScaleMin, scaleMax: model.ScaleMax}
}
