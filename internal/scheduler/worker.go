package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"recipehub/internal/models"
	"recipehub/internal/repository"
)

// MaxAttempts bounds retries per job; exhaustion is surfaced to the operator
// through the log and the job's failed status, never to a waiting request.
const MaxAttempts = 3

// Handler executes one job. A nil return marks the job done; an error counts
// as a failed attempt. Handlers must be idempotent because delivery is
// at least once.
type Handler func(ctx context.Context, job *models.ScheduledJob) error

// Worker polls the jobs table and executes whatever has come due. RunAt is a
// lower bound on execution time, not a guarantee of freshness, so handlers
// re-validate state before acting.
type Worker struct {
	jobRepo  repository.JobRepository
	handlers map[models.JobName]Handler
	interval time.Duration
	logger   *zap.Logger
}

func NewWorker(jobRepo repository.JobRepository, interval time.Duration, logger *zap.Logger) *Worker {
	return &Worker{
		jobRepo:  jobRepo,
		handlers: make(map[models.JobName]Handler),
		interval: interval,
		logger:   logger,
	}
}

func (w *Worker) Register(name models.JobName, handler Handler) {
	w.handlers[name] = handler
}

// Start runs the poll loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunDue(ctx)
		}
	}
}

// RunDue executes every pending job whose run_at has passed. Exported so
// tests can drive the worker without the ticker.
func (w *Worker) RunDue(ctx context.Context) {
	jobs, err := w.jobRepo.GetDue(time.Now())
	if err != nil {
		w.logger.Error("failed to fetch due jobs", zap.Error(err))
		return
	}

	for i := range jobs {
		job := jobs[i]
		w.run(ctx, &job)
	}
}

func (w *Worker) run(ctx context.Context, job *models.ScheduledJob) {
	handler, ok := w.handlers[job.Name]
	if !ok {
		w.logger.Error("no handler registered for job",
			zap.String("job", string(job.Name)),
			zap.String("id", job.ID.String()),
		)
		if err := w.jobRepo.RecordFailure(job.ID, MaxAttempts, "no handler registered", true); err != nil {
			w.logger.Error("failed to record job failure", zap.Error(err))
		}
		return
	}

	if err := handler(ctx, job); err != nil {
		attempts := job.Attempts + 1
		exhausted := attempts >= MaxAttempts
		if exhausted {
			w.logger.Error("job failed permanently",
				zap.String("job", string(job.Name)),
				zap.String("id", job.ID.String()),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
		} else {
			w.logger.Warn("job attempt failed, will retry",
				zap.String("job", string(job.Name)),
				zap.String("id", job.ID.String()),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
		}
		if err := w.jobRepo.RecordFailure(job.ID, attempts, err.Error(), exhausted); err != nil {
			w.logger.Error("failed to record job failure", zap.Error(err))
		}
		return
	}

	if err := w.jobRepo.MarkDone(job.ID); err != nil {
		w.logger.Error("failed to mark job done", zap.Error(err))
	}
}
