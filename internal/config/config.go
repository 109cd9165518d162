// Package config defines the victoria configuration and its loading hooks.
//
// Conventions:
// - New builds a Config holding every default.
// - Load layers a YAML file and VICTORIA_* environment variables over New.
// - Errors returned to callers wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/internal/domain/pipeline"
	"github.com/okian/victoria/internal/domain/rasch"
	"github.com/okian/victoria/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json records.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	Metrics  MetricsConfig  `koanf:"metrics"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Batch    BatchConfig    `koanf:"batch"`
	Store    StoreConfig    `koanf:"store"`
	Input    InputConfig    `koanf:"input"`
	Output   OutputConfig   `koanf:"output"`
}

// MetricsConfig configures the ops HTTP server.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr" validate:"required_if=Enabled true"`
}

// PipelineConfig is the configuration surface of a pipeline run.
type PipelineConfig struct {
	UseRaschScoring      bool    `koanf:"use_rasch_scoring"`
	MinCompletionRate    float64 `koanf:"min_completion_rate" validate:"gte=0,lte=1"`
	NClusters            int     `koanf:"n_clusters" validate:"gte=1,lte=20"`
	OptimizeClusters     bool    `koanf:"optimize_clusters"`
	MaxClusters          int     `koanf:"max_clusters" validate:"gte=2,lte=50"`
	ScoringMethod        string  `koanf:"scoring_method" validate:"oneof=raw standardized percentile"`
	MinItemsPerConstruct int     `koanf:"min_items_per_construct" validate:"gte=1"`
	Estimator            string  `koanf:"estimator" validate:"oneof=newton lbfgs"`
	MaxIterations        int     `koanf:"max_iterations" validate:"gte=1"`
	Tolerance            float64 `koanf:"tolerance" validate:"gt=0"`
	CategoryShift        bool    `koanf:"category_shift"`
	RandomSeed           int64   `koanf:"random_seed"`
}

// BatchConfig sizes the batch runner.
type BatchConfig struct {
	// Workers is the number of concurrent pipeline runs.
	Workers int `koanf:"workers" validate:"gte=1"`

	// QueueSize bounds pending jobs.
	QueueSize int `koanf:"queue_size" validate:"gte=1"`

	// DedupeSize is how many input fingerprints are remembered; 0 disables deduplication.
	DedupeSize int `koanf:"dedupe_size" validate:"gte=0"`
}

// StoreConfig selects the result store.
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"oneof=memory sqlite"`
	DSN    string `koanf:"dsn" validate:"required_if=Driver sqlite"`
}

// InputConfig points at the shared item map and norms files.
type InputConfig struct {
	ItemMap string `koanf:"item_map"`
	Norms   string `koanf:"norms"`
}

// OutputConfig controls artifact export. An empty Dir disables export.
type OutputConfig struct {
	Dir string `koanf:"dir"`
}

// New creates a Config holding the defaults.
func New() *Config {
	d := pipeline.DefaultSettings()
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9080",
		},
		Pipeline: PipelineConfig{
			UseRaschScoring:      d.UseRaschScoring,
			MinCompletionRate:    d.MinCompletionRate,
			NClusters:            d.NClusters,
			OptimizeClusters:     d.OptimizeClusters,
			MaxClusters:          d.MaxClusters,
			ScoringMethod:        string(d.ScoringMethod),
			MinItemsPerConstruct: d.MinItemsPerConstruct,
			Estimator:            string(d.Estimator),
			MaxIterations:        d.MaxIterations,
			Tolerance:            d.Tolerance,
			CategoryShift:        d.CategoryShift,
			RandomSeed:           d.RandomSeed,
		},
		Batch: BatchConfig{
			Workers:    runtime.NumCPU(),
			QueueSize:  1_000,
			DedupeSize: 10_000,
		},
		Store: StoreConfig{
			Driver: "memory",
		},
		Output: OutputConfig{
			Dir: "output",
		},
	}
}

// Validate checks struct constraints.
func (c *Config) Validate(_ context.Context) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return errors.Mark(errors.Wrap(err, "validate config"), ErrInvalidConfig)
	}
	return nil
}

// ToPipelineSettings maps the pipeline section onto pipeline.Settings.
func (c *Config) ToPipelineSettings() (pipeline.Settings, error) {
	method, err := scoring.ParseMethod(c.Pipeline.ScoringMethod)
	if err != nil {
		return pipeline.Settings{}, errors.Mark(err, ErrInvalidConfig)
	}
	strategy, err := rasch.ParseStrategy(c.Pipeline.Estimator)
	if err != nil {
		return pipeline.Settings{}, errors.Mark(err, ErrInvalidConfig)
	}
	return pipeline.Settings{
		UseRaschScoring:      c.Pipeline.UseRaschScoring,
		MinCompletionRate:    c.Pipeline.MinCompletionRate,
		NClusters:            c.Pipeline.NClusters,
		OptimizeClusters:     c.Pipeline.OptimizeClusters,
		MaxClusters:          c.Pipeline.MaxClusters,
		ScoringMethod:        method,
		MinItemsPerConstruct: c.Pipeline.MinItemsPerConstruct,
		Estimator:            strategy,
		MaxIterations:        c.Pipeline.MaxIterations,
		Tolerance:            c.Pipeline.Tolerance,
		CategoryShift:        c.Pipeline.CategoryShift,
		RandomSeed:           c.Pipeline.RandomSeed,
		ScaleMin:             model.ScaleMin,
		ScaleMax:             model.ScaleMax,
	}, nil
}
