package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meridianbank/provisiond/db"
	"github.com/meridianbank/provisiond/errors"
	"github.com/meridianbank/provisiond/internal/util"
	"github.com/meridianbank/provisiond/job"
)

// JobFactory resolves job types to runnable jobs. Implemented by
// job.Factory; an interface here keeps the loop testable with fakes.
type JobFactory interface {
	Create(jobType string) (job.Runnable, error)
}

// Ticker manages periodic execution of scheduled provisioning jobs.
type Ticker struct {
	store     *Store
	execStore *ExecutionStore
	factory   JobFactory
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	logger    *zap.SugaredLogger

	mu              sync.Mutex
	lastTickAt      time.Time
	ticksSinceStart int64
}

// TickerConfig contains configuration for the scheduler ticker
type TickerConfig struct {
	Interval time.Duration // How often to check for due jobs (default: 30 seconds)
}

// DefaultTickerConfig returns sensible defaults
func DefaultTickerConfig() TickerConfig {
	return TickerConfig{
		Interval: 30 * time.Second,
	}
}

// NewTicker creates a scheduler ticker
func NewTicker(store *Store, execStore *ExecutionStore, factory JobFactory, cfg TickerConfig, logger *zap.SugaredLogger) *Ticker {
	return NewTickerWithContext(context.Background(), store, execStore, factory, cfg, logger)
}

// NewTickerWithContext creates a ticker with a parent context
func NewTickerWithContext(ctx context.Context, store *Store, execStore *ExecutionStore, factory JobFactory, cfg TickerConfig, logger *zap.SugaredLogger) *Ticker {
	tickerCtx, cancel := context.WithCancel(ctx)

	return &Ticker{
		store:     store,
		execStore: execStore,
		factory:   factory,
		interval:  cfg.Interval,
		ctx:       tickerCtx,
		cancel:    cancel,
		logger:    logger,
	}
}

// Start begins the ticker loop. A non-positive interval means periodic
// ticking is disabled: the ticker stays idle and Stop remains safe to
// call.
func (t *Ticker) Start() {
	if t.interval <= 0 {
		t.logger.Infow("Scheduler ticker idle, periodic ticking disabled", "interval", t.interval)
		return
	}

	t.wg.Add(1)
	go t.run()
	t.logger.Infow("Scheduler ticker started", "interval", t.interval)
}

// Stop gracefully stops the ticker
func (t *Ticker) Stop() {
	t.cancel()
	t.wg.Wait()
	t.logger.Infow("Scheduler ticker stopped")
}

// run is the main ticker loop
func (t *Ticker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case tickTime := <-ticker.C:
			t.mu.Lock()
			t.lastTickAt = tickTime
			t.ticksSinceStart++
			t.mu.Unlock()

			if err := t.CheckDueJobs(tickTime); err != nil {
				if db.IsDatabaseClosed(err) {
					// Shutdown closed the database under a tick in flight
					t.logger.Debugw("Scheduler tick aborted, database closed", "tick", t.ticksSinceStart)
					return
				}
				t.logger.Warnw("Scheduler tick error", "error", err, "tick", t.ticksSinceStart)
			}
		}
	}
}

// CheckDueJobs finds due jobs and executes them one at a time.
// One job's failure never stops the remaining jobs or the loop.
func (t *Ticker) CheckDueJobs(now time.Time) error {
	jobs, err := t.store.ListDue(t.ctx, now)
	if err != nil {
		return errors.Wrap(err, "failed to list due jobs")
	}

	for _, scheduled := range jobs {
		select {
		case <-t.ctx.Done():
			return t.ctx.Err()
		default:
		}

		if err := t.executeScheduled(scheduled, now); err != nil {
			t.logger.Errorw("Failed to execute scheduled job",
				"job_id", scheduled.ID,
				"job_type", scheduled.JobType,
				"region", scheduled.Region,
				"error", err)
			// Continue with other jobs even if one fails
			continue
		}
	}

	return nil
}

// executeScheduled runs one due job, records its execution, and advances
// next_run_at. The schedule is advanced even when the run fails so a
// broken job type cannot hot-loop every tick.
func (t *Ticker) executeScheduled(scheduled *ScheduledJob, now time.Time) error {
	startTime := time.Now()

	t.logger.Infow("Executing scheduled job",
		"job_id", scheduled.ID,
		"job_type", scheduled.JobType,
		"region", scheduled.Region)

	execution := &Execution{
		ID:             uuid.NewString(),
		ScheduledJobID: scheduled.ID,
		JobType:        scheduled.JobType,
		Region:         scheduled.Region,
		Status:         ExecutionStatusRunning,
		StartedAt:      startTime.UTC().Format(time.RFC3339),
		CreatedAt:      startTime.UTC().Format(time.RFC3339),
		UpdatedAt:      startTime.UTC().Format(time.RFC3339),
	}
	if err := t.execStore.Create(t.ctx, execution); err != nil {
		// Execution history is best effort; the run itself still proceeds
		t.logger.Errorw("Failed to create execution record",
			"job_id", scheduled.ID,
			"error", err)
	}

	summary, runErr := t.runJob(scheduled)

	completedAt := time.Now()
	durationMs := int(completedAt.Sub(startTime).Milliseconds())
	execution.CompletedAt = util.Ptr(completedAt.UTC().Format(time.RFC3339))
	execution.DurationMs = &durationMs
	execution.UpdatedAt = completedAt.UTC().Format(time.RFC3339)

	if runErr != nil {
		execution.Status = ExecutionStatusFailed
		execution.ErrorMessage = util.Ptr(runErr.Error())

		t.logger.Errorw("Scheduled job failed",
			"job_type", scheduled.JobType,
			"region", scheduled.Region,
			"execution_id", execution.ID,
			"duration_ms", durationMs,
			"error", runErr)
	} else {
		execution.Requested = summary.Requested
		execution.Succeeded = summary.Succeeded
		execution.Failed = summary.Failed
		if summary.Status == job.StatusSkipped {
			execution.Status = ExecutionStatusSkipped
		} else {
			execution.Status = ExecutionStatusCompleted
		}

		t.logger.Infow("Scheduled job finished",
			"job_type", scheduled.JobType,
			"region", scheduled.Region,
			"execution_id", execution.ID,
			"status", execution.Status,
			"requested", summary.Requested,
			"succeeded", summary.Succeeded,
			"failed", summary.Failed,
			"duration_ms", durationMs)
	}

	nextRun := now.Add(time.Duration(scheduled.IntervalSeconds) * time.Second)
	if err := t.store.UpdateAfterExecution(t.ctx, scheduled.ID, now, execution.ID, nextRun); err != nil {
		return errors.Wrap(err, "failed to advance scheduled job")
	}

	if err := t.execStore.Update(t.ctx, execution); err != nil {
		t.logger.Errorw("Failed to update execution record",
			"execution_id", execution.ID,
			"error", err)
		// Not critical - continue
	}

	return runErr
}

// runJob resolves the job type and executes it.
func (t *Ticker) runJob(scheduled *ScheduledJob) (job.Summary, error) {
	runnable, err := t.factory.Create(scheduled.JobType)
	if err != nil {
		return job.Summary{}, err
	}
	return runnable.Execute(t.ctx, scheduled.Region, scheduled.Params.Count)
}

// Stats returns ticker statistics
func (t *Ticker) Stats() (lastTickAt time.Time, ticks int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastTickAt, t.ticksSinceStart
}
