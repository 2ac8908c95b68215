// Package jobs runs queued generation jobs in the background. Clients
// get a job id back from POST /api/chat immediately and poll it while
// the local model works.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/vizboard-backend/internal/data/repos"
	"github.com/yungbote/vizboard-backend/internal/domain"
	"github.com/yungbote/vizboard-backend/internal/pkg/dbctx"
	"github.com/yungbote/vizboard-backend/internal/pkg/envutil"
	apperrors "github.com/yungbote/vizboard-backend/internal/pkg/errors"
	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
)

// Runner executes one claimed job. ChatService implements it.
type Runner interface {
	RunJob(ctx context.Context, job *domain.GenerationJob) error
}

type Worker struct {
	jobs        repos.JobRepo
	runner      Runner
	log         *logger.Logger
	concurrency int
	interval    time.Duration

	wg sync.WaitGroup
}

func NewWorker(jobs repos.JobRepo, runner Runner, log *logger.Logger) *Worker {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 2)
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		jobs:        jobs,
		runner:      runner,
		log:         log.With("component", "JobWorker"),
		concurrency: concurrency,
		interval:    envutil.Seconds("WORKER_POLL_SECONDS", 1*time.Second),
	}
}

// Start launches the polling loops. They stop when ctx is canceled;
// Wait blocks until in-flight jobs finish.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("job worker starting", "concurrency", w.concurrency)
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.loop(ctx)
	}
}

func (w *Worker) Wait() { w.wg.Wait() }

func (w *Worker) loop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain claims and runs jobs until the queue is empty, so a burst does
// not wait a tick per job.
func (w *Worker) drain(ctx context.Context) {
	for {
		job, err := w.jobs.ClaimNextPending(dbctx.Context{Ctx: ctx})
		if errors.Is(err, apperrors.ErrNotFound) {
			return
		}
		if err != nil {
			w.log.Warn("claim failed", "error", err)
			return
		}
		w.run(ctx, job)
		if ctx.Err() != nil {
			return
		}
	}
}

func (w *Worker) run(ctx context.Context, job *domain.GenerationJob) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("job handler panic", "job_id", job.ID, "panic", r)
			// The claimed job must reach a terminal status even when the
			// panic coincides with shutdown, or pollers wait forever.
			bookkeeping := dbctx.Context{Ctx: context.WithoutCancel(ctx)}
			err := w.jobs.MarkFailed(bookkeeping, job.ID, "internal", fmt.Sprintf("panic: %v", r))
			if err != nil {
				w.log.Error("failed to mark panicked job", "job_id", job.ID, "error", err)
			}
		}
	}()

	if err := w.runner.RunJob(ctx, job); err != nil {
		// RunJob records pipeline failures itself; an error here means
		// even that bookkeeping broke.
		w.log.Error("job run failed", "job_id", job.ID, "error", err)
	}
}
