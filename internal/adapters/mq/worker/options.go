package worker

import (
	"github.com/okian/victoria/pkg/logger"
)

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.size = n
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the metrics sink. Defaults to the process-wide metrics manager.
func WithRecorder(r Recorder) Option {
	return func(p *Pool) {
		if r != nil {
			p.rec = r
		}
	}
}
