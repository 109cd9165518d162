package repository

import (
	"time"

	"github.com/okian/victoria/pkg/logger"
)

// Recorder receives store metrics.
type Recorder interface {
	ObserveStore(op string, d time.Duration, stored int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStore(string, time.Duration, int) {}

type settings struct {
	rec      Recorder
	log      logger.Logger
	maxLimit int
}

func defaultSettings() settings {
	return settings{rec: nopRecorder{}, log: logger.NewNop(), maxLimit: defaultMaxLimit}
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(s *settings) {
		if r != nil {
			s.rec = r
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

// WithMaxLimit caps the page size accepted by List.
func WithMaxLimit(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}
