package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int

	// StaleJobAge defines how long a job can be in running state
	// before it's considered abandoned and requeued
	StaleJobAge time.Duration

	// StaleCheckInterval defines how often to check for stale jobs
	// If zero, defaults to 5 minutes
	StaleCheckInterval time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:        2,
		QueueSize:          100,
		StaleJobAge:        30 * time.Minute,
		StaleCheckInterval: 5 * time.Minute,
	}
}

// Runner manages background job processing. Submitted jobs are persisted
// to the descriptor store before they enter the in-memory queue, so after
// a crash any unfinished job is requeued on the next Start (at-least-once
// execution; handlers must be idempotent).
//
// All collaborators are injected explicitly; the runner holds no
// process-global queue or connection state.
type Runner struct {
	store      DescriptorStore
	statuses   StatusStore
	registry   *Registry
	queue      *Queue
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger
	errHandler func(j Job, err error)
}

// NewRunner creates a new Runner
func NewRunner(
	store DescriptorStore,
	statuses StatusStore,
	registry *Registry,
	config RunnerConfig,
	logger *slog.Logger,
) *Runner {
	// Apply default check interval if not specified
	if config.StaleCheckInterval == 0 {
		config.StaleCheckInterval = 5 * time.Minute
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:      store,
		statuses:   statuses,
		registry:   registry,
		queue:      NewQueue(config.QueueSize, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		wg:         sync.WaitGroup{},
		config:     config,
		logger:     logger,
		errHandler: func(j Job, err error) {
			// Default error handler just logs the error
			logger.Error("job execution failed",
				"job_id", j.ID(),
				"job_type", j.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *Runner) SetErrorHandler(handler func(j Job, err error)) {
	r.errHandler = handler
}

// Submit adds a new job to the queue. The descriptor is saved and the
// status record created in "queued" state before the job becomes visible
// to workers, so a poller never observes a submitted job without a status.
func (r *Runner) Submit(ctx context.Context, j Job) error {
	// Save descriptor to database first
	if err := r.store.SaveJob(ctx, j); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	var meta map[string]string
	if mp, ok := j.(MetaProvider); ok {
		meta = mp.Meta()
	}
	if err := r.statuses.SetQueued(ctx, j.ID(), meta); err != nil {
		return fmt.Errorf("failed to record queued status: %w", err)
	}

	// Then add to in-memory queue. Enqueue failures keep the ErrQueueFull /
	// ErrQueueClosed sentinels in the chain so callers can map them to
	// back-pressure responses.
	if err := r.queue.Enqueue(j); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Start recovers unfinished jobs and then launches the worker pool and
// the stale-job monitor. Recovery happens here and only here; a restart
// must requeue each leftover descriptor exactly once.
func (r *Runner) Start() error {
	if err := r.recoverJobs(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.staleJobMonitor()

	return nil
}

// Stop gracefully shuts down the runner
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	r.queue.Close()
}

// recoverJobs loads any unfinished job descriptors from the database and
// requeues them. Jobs interrupted mid-execution (still "running") are
// reset to "queued" in the descriptor store — their externally visible
// status stays as last written until the re-execution takes over, keeping
// poller-observed transitions monotonic.
func (r *Runner) recoverJobs() error {
	ctx := context.Background()

	queued, err := r.store.GetQueuedJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get queued jobs: %w", err)
	}

	// Jobs that were "running" when the previous process died.
	running, err := r.store.GetRunningJobs(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get running jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs",
		"queued_count", len(queued),
		"running_count", len(running))

	for _, desc := range queued {
		r.requeueDescriptor(ctx, desc)
	}

	for _, desc := range running {
		if err := r.store.UpdateJobStatus(ctx, desc.ID, StatusQueued, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset running job status",
				"job_id", desc.ID,
				"job_type", desc.Type,
				"error", err)
			continue
		}
		r.requeueDescriptor(ctx, desc)
	}

	return nil
}

// requeueDescriptor rehydrates a stored descriptor and puts it back on
// the queue. A descriptor that cannot be rehydrated is marked failed so
// it does not sit in the store forever.
func (r *Runner) requeueDescriptor(ctx context.Context, desc *Descriptor) {
	j, err := r.registry.Hydrate(desc)
	if err != nil {
		r.logger.Error("failed to rehydrate job, marking failed",
			"job_id", desc.ID,
			"job_type", desc.Type,
			"error", err)
		if updateErr := r.store.UpdateJobStatus(ctx, desc.ID, StatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to mark unhydratable job as failed",
				"job_id", desc.ID, "error", updateErr)
		}
		if statusErr := r.statuses.SetFailed(ctx, desc.ID, err.Error()); statusErr != nil {
			r.logger.Error("failed to record failed status for unhydratable job",
				"job_id", desc.ID, "error", statusErr)
		}
		return
	}

	if err := r.queue.Enqueue(j); err != nil {
		r.logger.Error("failed to requeue job",
			"job_id", desc.ID,
			"job_type", desc.Type,
			"error", err)
	}
}

// worker processes jobs from the queue
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case j, ok := <-r.queue.GetChannel():
			if !ok {
				r.logger.Debug("job channel closed, stopping worker", "worker_id", id)
				return
			}

			r.processJob(j, id)
		}
	}
}

// processJob handles execution of a single job. A handler error never
// crashes the worker loop: it is captured, serialized into the status
// record, and the worker moves on to the next job.
func (r *Runner) processJob(j Job, workerID int) {
	ctx := context.Background()
	logger := r.logger.With(
		"job_id", j.ID(),
		"job_type", j.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateJobStatus(ctx, j.ID(), StatusRunning, ""); err != nil {
		logger.Error("failed to update job status to running", "error", err)
		return
	}
	if err := r.statuses.SetRunning(ctx, j.ID()); err != nil {
		logger.Error("failed to record running status", "error", err)
	}

	logger.Info("processing job")

	err := j.Execute(ctx)

	if err != nil {
		logger.Error("job execution failed", "error", err)
		if updateErr := r.store.UpdateJobStatus(ctx, j.ID(), StatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update job status to failed", "error", updateErr)
		}
		if statusErr := r.statuses.SetFailed(ctx, j.ID(), err.Error()); statusErr != nil {
			logger.Error("failed to record failed status", "error", statusErr)
		}

		r.errHandler(j, err)
	} else {
		logger.Info("job completed successfully")
		if updateErr := r.store.UpdateJobStatus(ctx, j.ID(), StatusFinished, ""); updateErr != nil {
			logger.Error("failed to update job status to finished", "error", updateErr)
		}
		if statusErr := r.statuses.SetFinished(ctx, j.ID(), j.Result()); statusErr != nil {
			logger.Error("failed to record finished status", "error", statusErr)
		}
	}
}

// staleJobMonitor periodically checks for jobs that have been in "running"
// state for too long (their worker likely died) and requeues them.
func (r *Runner) staleJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StaleCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stale, err := r.store.GetRunningJobs(ctx, r.config.StaleJobAge)
			if err != nil {
				r.logger.Error("failed to check for stale jobs", "error", err)
				continue
			}

			if len(stale) == 0 {
				continue
			}

			r.logger.Info("found stale jobs", "count", len(stale))

			for _, desc := range stale {
				if err := r.store.UpdateJobStatus(ctx, desc.ID, StatusQueued,
					"Reset after being stuck in running state"); err != nil {
					r.logger.Error("failed to reset stale job status",
						"job_id", desc.ID,
						"job_type", desc.Type,
						"error", err)
					continue
				}
				r.requeueDescriptor(ctx, desc)
			}
		}
	}
}
