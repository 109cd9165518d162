// Package service provides the batch runner that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/okian/victoria/internal/adapters/export"
	"github.com/okian/victoria/internal/adapters/http/api"
	"github.com/okian/victoria/internal/adapters/ingest"
	"github.com/okian/victoria/internal/adapters/mq/queue"
	"github.com/okian/victoria/internal/adapters/mq/worker"
	"github.com/okian/victoria/internal/adapters/repository"
	"github.com/okian/victoria/internal/domain/dedupe"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/internal/domain/pipeline"
	"github.com/okian/victoria/pkg/logger"
	"github.com/okian/victoria/pkg/metrics"
)

// Outcome reports one processed job.
type Outcome struct {
	Job   model.Job
	RunID string
	// Dir is the export directory, empty when export is disabled.
	Dir string
	Run repository.Run
	Err error
}

// Service queues input files and runs the pipeline on each of them.
type Service struct {
	mu sync.RWMutex

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	settings    pipeline.Settings
	itemMap     *model.ItemConstructMap
	norms       model.Norms
	outputDir   string
	onOutcome   func(Outcome)

	// Core components
	store    repository.Store
	deduper  dedupe.Deduper
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	reader   *ingest.Reader
	exporter *export.Exporter
	metrics  *metrics.Manager
	logger   logger.Logger

	// State
	started bool
	stopped bool
	done    chan struct{}
	poolErr error
	now     func() time.Time
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1_000,
		dedupeSize:  10_000,
		settings:    pipeline.DefaultSettings(),
		metrics:     metrics.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.itemMap == nil {
		s.itemMap = model.DefaultItemMap()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(
			repository.WithRecorder(s.metrics),
			repository.WithLogger(s.logger.Named("store")),
		)
	}
	return s
}

// Start builds the queue and worker pool and starts draining jobs.
// Workers stop when ctx is canceled or the service is stopped.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return ErrStopped
	}

	if s.dedupeSize > 0 {
		s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	}
	s.queue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
		queue.WithGauge(s.metrics.UpdateQueue),
	)
	s.reader = ingest.NewReader(ingest.WithLogger(s.logger.Named("ingest")))
	if s.outputDir != "" {
		s.exporter = export.New(s.outputDir, export.WithLogger(s.logger.Named("export")))
	}
	s.pool = worker.NewPool(s.queue, worker.HandlerFunc(s.handle),
		worker.WithWorkers(s.workerCount),
		worker.WithLogger(s.logger.Named("worker-pool")),
		worker.WithRecorder(s.metrics),
	)

	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		s.poolErr = s.pool.Run(ctx)
	}()

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.String("estimator", string(s.settings.Estimator)),
		logger.String("output_dir", s.outputDir),
	)
	return nil
}

// Ready reports whether the service accepts submissions.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started && !s.queue.IsClosed()
}

// Submit fingerprints the file at path and queues it. A file whose content was
// already processed is reported as a duplicate and not queued again.
func (s *Service) Submit(ctx context.Context, path string) (api.SubmitResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return api.SubmitResult{}, ErrNotStarted
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	fp, err := dedupe.FingerprintFile(path)
	if err != nil {
		return api.SubmitResult{}, errors.Mark(err, api.ErrBadRequest)
	}
	job := model.Job{
		ID:          uuid.NewString(),
		Path:        path,
		Fingerprint: fp,
		SubmittedAt: s.now().UTC(),
	}

	if s.deduper != nil && s.deduper.SeenAndRecord(ctx, fp) {
		s.metrics.RecordJobDuplicate()
		s.logger.Info(ctx, "duplicate input skipped", logger.String("path", path), logger.String("fingerprint", fp))
		return api.SubmitResult{Job: job, Duplicate: true}, nil
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.forget(ctx, fp)
		switch {
		case errors.Is(err, queue.ErrFull):
			return api.SubmitResult{}, errors.Mark(errors.Wrap(err, "submit"), api.ErrBackpressure)
		case errors.Is(err, queue.ErrClosed):
			return api.SubmitResult{}, errors.Mark(errors.Wrap(err, "submit"), ErrStopped)
		default:
			return api.SubmitResult{}, errors.Wrap(err, "submit")
		}
	}
	s.logger.Debug(ctx, "job queued", logger.String("job_id", job.ID), logger.String("path", path))
	return api.SubmitResult{Job: job}, nil
}

func (s *Service) forget(ctx context.Context, fp string) {
	if s.deduper != nil {
		s.deduper.Unrecord(ctx, fp)
	}
}

// handle runs one job: ingest, pipeline, export, store.
func (s *Service) handle(ctx context.Context, job model.Job) error {
	out := s.process(ctx, job)
	if out.Err != nil {
		// Let a failed input be submitted again.
		s.forget(ctx, job.Fingerprint)
	}
	if s.onOutcome != nil {
		s.onOutcome(out)
	}
	return out.Err
}

func (s *Service) process(ctx context.Context, job model.Job) Outcome {
	out := Outcome{Job: job, RunID: job.ID}
	log := s.logger.With(logger.String("job_id", job.ID), logger.String("path", job.Path))

	responses, ingestWarnings, err := s.reader.ReadFile(ctx, job.Path)
	if err != nil {
		out.Err = errors.Wrapf(err, "read %s", job.Path)
		return out
	}
	for _, w := range ingestWarnings {
		s.metrics.RecordWarning(w.Code)
	}

	p := pipeline.New(
		pipeline.WithSettings(s.settings),
		pipeline.WithLogger(log.Named("pipeline")),
		pipeline.WithRecorder(s.metrics),
		pipeline.WithRunID(job.ID),
	)
	res, err := p.Run(ctx, pipeline.Input{Responses: responses, ItemMap: s.itemMap, Norms: s.norms})
	if err != nil {
		out.Err = errors.Wrapf(err, "pipeline %s", job.Path)
		return out
	}
	res.Warnings = append(ingestWarnings, res.Warnings...)

	sum := export.NewSummary(res, job.Path, job.Fingerprint)
	if s.exporter != nil {
		dir, err := s.exporter.Export(ctx, res, sum)
		if err != nil {
			out.Err = errors.Wrapf(err, "export %s", job.Path)
			return out
		}
		out.Dir = dir
	}

	raw, err := json.Marshal(sum)
	if err != nil {
		out.Err = errors.Wrap(err, "encode summary")
		return out
	}
	run := repository.Run{
		ID:          res.RunID,
		Source:      job.Path,
		Fingerprint: job.Fingerprint,
		CreatedAt:   res.StartedAt.UTC(),
		Persons:     res.Persons,
		Items:       res.Items,
		Clusters:    len(res.Clusters()),
		Warnings:    len(res.Warnings),
		DurationMS:  res.Duration.Milliseconds(),
		Summary:     raw,
	}
	if res.Clustering != nil {
		run.Silhouette = res.Clustering.Silhouette
	}
	if err := s.store.Save(ctx, run); err != nil {
		out.Err = errors.Wrap(err, "store run")
		return out
	}
	out.RunID = run.ID
	out.Run = run

	log.Info(ctx, "run complete",
		logger.Int("persons", run.Persons),
		logger.Int("items", run.Items),
		logger.Int("clusters", run.Clusters),
		logger.Int("warnings", run.Warnings),
		logger.Int64("duration_ms", run.DurationMS),
	)
	return out
}

// Drain closes the queue and waits until every queued job is processed or ctx ends.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.RLock()
	started, q, done := s.started, s.queue, s.done
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	_ = q.Close()
	select {
	case <-done:
		if s.poolErr != nil && !errors.Is(s.poolErr, context.Canceled) {
			return s.poolErr
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains pending jobs and closes the store.
func (s *Service) Stop() {
	ctx := context.Background()
	if err := s.Drain(ctx); err != nil && !errors.Is(err, ErrNotStarted) {
		s.logger.Warn(ctx, "drain failed", logger.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "close store", logger.Error(err))
	}
	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "service stopped")
}

// ListRuns returns stored runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]repository.Run, error) {
	return s.store.List(ctx, limit)
}

// GetRun returns one stored run with its summary.
func (s *Service) GetRun(ctx context.Context, id string) (repository.Run, error) {
	return s.store.Get(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	stats["queueLength"] = s.queue.Len(ctx)
	ps := s.pool.Stats()
	stats["activeWorkers"] = ps.Active
	stats["processed"] = ps.Processed
	stats["failed"] = ps.Failed
	if s.deduper != nil {
		stats["fingerprints"] = s.deduper.Size()
	}
	if n, err := s.store.Count(ctx); err == nil {
		stats["storedRuns"] = n
	}
	return stats
}
