// Package pipeline runs response calibration, construct scoring and archetype clustering as one invocation.
package pipeline

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/domain/clustering"
	"github.com/okian/victoria/internal/domain/matrix"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/internal/domain/rasch"
	"github.com/okian/victoria/internal/domain/scoring"
	"github.com/okian/victoria/pkg/logger"
)

// Input is everything one run consumes.
type Input struct {
	Responses []model.Response
	ItemMap   *model.ItemConstructMap
	Norms     model.Norms
}

// Result is everything one run produces.
type Result struct {
	RunID      string
	Settings   Settings
	Persons    int
	Items      int
	Rasch      *rasch.Result
	Summary    rasch.ModelSummary
	Fit        rasch.FitStatistics
	Measures   []model.Measure
	Scoring    *scoring.Result
	Clustering *clustering.Result
	Overview   model.ClusterOverview
	Warnings   []model.Warning
	StartedAt  time.Time
	Duration   time.Duration
}

// Profiles returns the person profiles of the run.
func (r *Result) Profiles() []model.PersonProfile {
	if r.Scoring == nil {
		return nil
	}
	return r.Scoring.Profiles
}

// Clusters returns the clusters of the run.
func (r *Result) Clusters() []model.Cluster {
	if r.Clustering == nil {
		return nil
	}
	return r.Clustering.Clusters
}

// Pipeline owns the stage objects of a single invocation. Build a new one per run;
// it keeps the fitted clusterer for Predict and must not be shared between goroutines.
type Pipeline struct {
	settings  Settings
	log       logger.Logger
	rec       Recorder
	newID     func() string
	now       func() time.Time
	clusterer *clustering.ArchetypeClusterer
}

// New creates a pipeline.
func New(opts ...Option) *Pipeline {
	p := defaults()
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) stage(name string, start time.Time) {
	p.rec.ObserveStage(name, p.now().Sub(start))
}

// Run executes every stage. Structural problems abort with an error; data-quality
// findings are collected in Result.Warnings.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	s := p.settings
	res := &Result{RunID: p.newID(), Settings: s, StartedAt: p.now()}
	log := p.log.With(logger.String("run_id", res.RunID))
	log.Info(ctx, "pipeline started", logger.Int("responses", len(in.Responses)))

	out, err := p.run(ctx, log, in, res)
	res.Duration = p.now().Sub(res.StartedAt)
	for _, w := range res.Warnings {
		p.rec.RecordWarning(w.Code)
	}
	if err != nil {
		p.rec.RecordRun("error")
		log.Error(ctx, "pipeline failed", logger.Error(err), logger.Duration("duration", res.Duration))
		return nil, err
	}
	p.rec.RecordRun("ok")
	log.Info(ctx, "pipeline finished",
		logger.Int("persons", res.Persons),
		logger.Int("items", res.Items),
		logger.Int("clusters", len(res.Clusters())),
		logger.Int("warnings", len(res.Warnings)),
		logger.Duration("duration", res.Duration),
	)
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, log logger.Logger, in Input, res *Result) (*Result, error) {
	s := p.settings

	start := p.now()
	m, warnings, err := matrix.NewBuilder(
		matrix.WithLogger(log.Named("matrix")),
		matrix.WithScale(s.ScaleMin, s.ScaleMax),
	).Build(ctx, in.Responses)
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		return nil, errors.Wrap(err, "build response matrix")
	}
	p.stage("matrix", start)
	res.Persons, res.Items = m.Rows(), m.Cols()
	p.rec.SetDatasetSize(res.Persons, res.Items)

	start = p.now()
	est, err := rasch.New(s.Estimator,
		rasch.WithMaxIterations(s.MaxIterations),
		rasch.WithTolerance(s.Tolerance),
		rasch.WithSeed(s.RandomSeed),
		rasch.WithScale(s.ScaleMin, s.ScaleMax),
		rasch.WithLogger(log.Named("rasch")),
	)
	if err != nil {
		return nil, err
	}
	res.Rasch, err = est.Estimate(ctx, m)
	if err != nil {
		return nil, errors.Wrap(err, "estimate rasch parameters")
	}
	p.stage("rasch", start)
	p.rec.RecordRasch(string(res.Rasch.Strategy), res.Rasch.Iterations, res.Rasch.Converged)
	if !res.Rasch.Converged {
		res.Warnings = append(res.Warnings, model.Warning{
			Stage:   "rasch",
			Code:    model.WarnNotConverged,
			Message: "estimation stopped at the iteration limit before converging",
		})
	}
	res.Summary = rasch.Summarize(res.Rasch)
	res.Fit = rasch.Fit(res.Rasch)
	res.Measures = rasch.Measures(m, res.Rasch.Parameters, s.CategoryShift)

	start = p.now()
	input := scoring.Input{Values: m, Kind: scoring.KindRaw, ItemMap: in.ItemMap}
	if s.UseRaschScoring {
		mm, err := rasch.MeasureMatrix(m, res.Measures)
		if err != nil {
			return nil, errors.Wrap(err, "lay out measures")
		}
		input = scoring.Input{Values: mm, Kind: scoring.KindLogit, ItemMap: in.ItemMap}
	}
	scorer := scoring.NewConstructScorer(
		scoring.WithMethod(s.ScoringMethod),
		scoring.WithRaschScoring(s.UseRaschScoring),
		scoring.WithMinItems(s.MinItemsPerConstruct),
		scoring.WithMinCompletionRate(s.MinCompletionRate),
		scoring.WithNorms(in.Norms),
		scoring.WithLogger(log.Named("scoring")),
	)
	res.Scoring, err = scorer.Score(ctx, input)
	if err != nil {
		return nil, errors.Wrap(err, "score constructs")
	}
	res.Warnings = append(res.Warnings, res.Scoring.Warnings...)
	p.stage("scoring", start)

	start = p.now()
	p.clusterer = clustering.New(
		clustering.WithClusters(s.NClusters),
		clustering.WithOptimize(s.OptimizeClusters),
		clustering.WithMaxClusters(s.MaxClusters),
		clustering.WithSeed(s.RandomSeed),
		clustering.WithLogger(log.Named("clustering")),
	)
	res.Clustering = p.clusterer.ClusterPersons(ctx, res.Scoring.Profiles)
	res.Warnings = append(res.Warnings, res.Clustering.Warnings...)
	res.Overview = clustering.Overview(res.Clustering.Clusters)
	p.stage("clustering", start)
	silhouette := 0.0
	if res.Clustering.Silhouette != nil {
		silhouette = *res.Clustering.Silhouette
	}
	p.rec.RecordClusterSelection(res.Clustering.K, silhouette)

	return res, nil
}

// Predict assigns new profiles to the archetypes fitted by the last Run.
func (p *Pipeline) Predict(ctx context.Context, profiles []model.PersonProfile) ([]int, error) {
	if p.clusterer == nil {
		return nil, clustering.ErrModelNotFitted
	}
	return p.clusterer.Predict(ctx, profiles)
}
