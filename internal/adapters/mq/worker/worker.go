// Package worker drains the batch queue with a fixed pool of workers.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/adapters/mq/queue"
	"github.com/okian/victoria/pkg/logger"
	"github.com/okian/victoria/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Job is what workers read off the queue.
type Job = queue.Job

// Handler processes one job. Its errors are logged and counted; they never stop the pool.
type Handler interface {
	Handle(ctx context.Context, j Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, j Job) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, j Job) error { return f(ctx, j) }

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Recorder receives pool metrics.
type Recorder interface {
	RecordJob(status string, latency time.Duration)
	UpdateWorkers(total, active int)
}

// Stats is a snapshot of pool activity.
type Stats struct {
	Workers   int   `json:"workers"`
	Active    int64 `json:"active"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// Pool runs Handler for every job on the queue.
type Pool struct {
	queue   Queue
	handler Handler
	size    int
	logger  logger.Logger
	rec     Recorder

	active    atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// NewPool creates a new worker pool.
func NewPool(q Queue, h Handler, opts ...Option) *Pool {
	p := &Pool{
		queue:   q,
		handler: h,
		size:    runtime.NumCPU(),
		logger:  logger.Get().Named("worker-pool"),
		rec:     metrics.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.rec.UpdateWorkers(p.size, 0)
	return p
}

// Run blocks until the queue is closed and drained, or ctx is canceled.
// It returns ctx.Err() on cancellation and nil after a full drain.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	jobs := p.queue.Dequeue(ctx)
	for i := range p.size {
		log := p.logger.Named(fmt.Sprintf("worker-%d", i))
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case j, ok := <-jobs:
					if !ok {
						return nil
					}
					p.process(ctx, log, j)
				}
			}
		})
	}
	err := g.Wait()
	p.logger.Info(ctx, "worker pool stopped",
		logger.Int64("processed", p.processed.Load()),
		logger.Int64("failed", p.failed.Load()),
	)
	return err
}

func (p *Pool) process(ctx context.Context, log logger.Logger, j Job) {
	p.rec.UpdateWorkers(p.size, int(p.active.Add(1)))
	start := time.Now()
	err := p.safeHandle(ctx, j)
	latency := time.Since(start)
	p.rec.UpdateWorkers(p.size, int(p.active.Add(-1)))

	p.processed.Add(1)
	if err != nil {
		p.failed.Add(1)
		p.rec.RecordJob("error", latency)
		log.Error(ctx, "job failed",
			logger.String("job_id", j.ID),
			logger.String("path", j.Path),
			logger.Error(err),
		)
		return
	}
	p.rec.RecordJob("ok", latency)
	log.Debug(ctx, "job done", logger.String("job_id", j.ID), logger.Duration("latency", latency))
}

func (p *Pool) safeHandle(ctx context.Context, j Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("job %s panicked: %v", j.ID, r)
		}
	}()
	return p.handler.Handle(ctx, j)
}

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   p.size,
		Active:    p.active.Load(),
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
	}
}
