package service

import (
	"github.com/okian/victoria/internal/adapters/repository"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/internal/domain/pipeline"
	"github.com/okian/victoria/pkg/logger"
	"github.com/okian/victoria/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of concurrent pipeline runs.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many input fingerprints are remembered. Zero disables deduplication.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSettings sets the pipeline settings used for every job.
func WithSettings(settings pipeline.Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithItemMap sets the item map shared by every job. Without one the built-in item bank is used.
func WithItemMap(m *model.ItemConstructMap) Option {
	return func(s *Service) {
		s.itemMap = m
	}
}

// WithNorms sets the external norms shared by every job.
func WithNorms(n model.Norms) Option {
	return func(s *Service) {
		s.norms = n
	}
}

// WithOutputDir sets the export root. An empty dir disables export.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		s.outputDir = dir
	}
}

// WithStore sets the result store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithOutcomeHook registers fn to be called after every processed job.
// It runs on worker goroutines and must be safe for concurrent use.
func WithOutcomeHook(fn func(Outcome)) Option {
	return func(s *Service) {
		s.onOutcome = fn
	}
}
