package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/victoria/internal/domain/clustering"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/internal/domain/rasch"
	"github.com/okian/victoria/internal/domain/scoring"
	"github.com/okian/victoria/pkg/logger"
)

// Settings is the configuration surface consumed by one pipeline run.
type Settings struct {
	UseRaschScoring      bool           `json:"use_rasch_scoring"`
	MinCompletionRate    float64        `json:"min_completion_rate"`
	NClusters            int            `json:"n_clusters"`
	OptimizeClusters     bool           `json:"optimize_clusters"`
	MaxClusters          int            `json:"max_clusters"`
	ScoringMethod        scoring.Method `json:"scoring_method"`
	MinItemsPerConstruct int            `json:"min_items_per_construct"`
	Estimator            rasch.Strategy `json:"estimator"`
	MaxIterations        int            `json:"max_iterations"`
	Tolerance            float64        `json:"tolerance"`
	CategoryShift        bool           `json:"category_shift"`
	RandomSeed           int64          `json:"random_seed"`
	ScaleMin             int            `json:"scale_min"`
	ScaleMax             int            `json:"scale_max"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		UseRaschScoring:      true,
		MinCompletionRate:    scoring.DefaultMinCompletionRate,
		NClusters:            clustering.DefaultClusters,
		OptimizeClusters:     true,
		MaxClusters:          clustering.DefaultMaxClusters,
		ScoringMethod:        scoring.MethodStandardized,
		MinItemsPerConstruct: scoring.DefaultMinItems,
		Estimator:            rasch.StrategyNewton,
		MaxIterations:        rasch.DefaultMaxIterations,
		Tolerance:            rasch.DefaultTolerance,
		CategoryShift:        true,
		RandomSeed:           rasch.DefaultSeed,
		ScaleMin:             model.ScaleMin,
		ScaleMax:             model.ScaleMax,
	}
}

// Recorder receives pipeline metrics.
type Recorder interface {
	RecordRun(status string)
	ObserveStage(stage string, d time.Duration)
	RecordRasch(strategy string, iterations int, converged bool)
	SetDatasetSize(persons, items int)
	RecordWarning(code string)
	RecordClusterSelection(k int, silhouette float64)
}

type nopRecorder struct{}

func (nopRecorder) RecordRun(string)                    {}
func (nopRecorder) ObserveStage(string, time.Duration)  {}
func (nopRecorder) RecordRasch(string, int, bool)       {}
func (nopRecorder) SetDatasetSize(int, int)             {}
func (nopRecorder) RecordWarning(string)                {}
func (nopRecorder) RecordClusterSelection(int, float64) {}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSettings replaces the run settings.
func WithSettings(s Settings) Option {
	return func(p *Pipeline) { p.settings = s }
}

// WithLogger sets the logger handed to every stage.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.rec = r
		}
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(p *Pipeline) {
		if id != "" {
			p.newID = func() string { return id }
		}
	}
}

func defaults() *Pipeline {
	return &Pipeline{
		settings: DefaultSettings(),
		log:      logger.NewNop(),
		rec:      nopRecorder{},
		newID:    uuid.NewString,
		now:      time.Now,
	}
}
