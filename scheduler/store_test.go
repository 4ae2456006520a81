package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	provtest "github.com/meridianbank/provisiond/internal/testing"
	"github.com/meridianbank/provisiond/internal/util"
)

func TestRegisterAndListAll(t *testing.T) {
	db := provtest.CreateTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	d := Descriptor{
		JobType:  "dda_mining_p",
		Interval: 4 * time.Hour,
		Enabled:  true,
	}
	require.NoError(t, store.Register(ctx, d.JobType, "SIT1", d))
	require.NoError(t, store.Register(ctx, d.JobType, "SIT2", d))

	jobs, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "dda_mining_p", jobs[0].JobType)
	assert.Equal(t, "SIT1", jobs[0].Region)
	assert.Equal(t, int(4*time.Hour/time.Second), jobs[0].IntervalSeconds)
	assert.Equal(t, StateActive, jobs[0].State)
	assert.Nil(t, jobs[0].Params.Count)
}

func TestRegisterPersistsCountParam(t *testing.T) {
	db := provtest.CreateTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	d := Descriptor{
		JobType:  "dda_threshold_p",
		Interval: 24 * time.Hour,
		Enabled:  true,
		Params:   Params{Count: util.Ptr(100)},
	}
	require.NoError(t, store.Register(ctx, d.JobType, "SIT1", d))

	jobs, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].Params.Count)
	assert.Equal(t, 100, *jobs[0].Params.Count)
}

func TestRegisterDisabledEntriesArePaused(t *testing.T) {
	db := provtest.CreateTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	d := Descriptor{JobType: "custom_dda_p_mining", Interval: 24 * time.Hour, Enabled: false}
	require.NoError(t, store.Register(ctx, d.JobType, "SIT1", d))

	jobs, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, StatePaused, jobs[0].State)
}

func TestRegisterPreservesNextRunOnReRegistration(t *testing.T) {
	db := provtest.CreateTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	d := Descriptor{JobType: "dda_mining_p", Interval: 4 * time.Hour, Enabled: true}
	require.NoError(t, store.Register(ctx, d.JobType, "SIT1", d))

	jobs, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	id := jobs[0].ID

	// Advance the job as if it just ran
	future := time.Now().Add(4 * time.Hour)
	require.NoError(t, store.UpdateAfterExecution(ctx, id, time.Now(), "exec-1", future))

	// Restart: the same catalog entry registers again with a new interval
	d.Interval = 2 * time.Hour
	require.NoError(t, store.Register(ctx, d.JobType, "SIT1", d))

	jobs, err = store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1, "re-registration must not create a second row")
	assert.Equal(t, id, jobs[0].ID)
	assert.Equal(t, int(2*time.Hour/time.Second), jobs[0].IntervalSeconds)
	assert.WithinDuration(t, future, jobs[0].NextRunAt, time.Second,
		"restart must not re-trigger a job that already ran")
}

func TestListDueOnlyReturnsActiveDueJobs(t *testing.T) {
	db := provtest.CreateTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Register(ctx, "dda_mining_p", "SIT1", Descriptor{JobType: "dda_mining_p", Interval: time.Hour, Enabled: true}))
	require.NoError(t, store.Register(ctx, "dda_mining_b", "SIT1", Descriptor{JobType: "dda_mining_b", Interval: time.Hour, Enabled: true}))
	require.NoError(t, store.Register(ctx, "cca_mining", "SIT1", Descriptor{JobType: "cca_mining", Interval: time.Hour, Enabled: false}))

	jobs, err := store.ListAll(ctx)
	require.NoError(t, err)

	// Push one active job into the future
	for _, j := range jobs {
		if j.JobType == "dda_mining_b" {
			require.NoError(t, store.UpdateAfterExecution(ctx, j.ID, now, "exec-x", now.Add(time.Hour)))
		}
	}

	due, err := store.ListDue(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "dda_mining_p", due[0].JobType)
}

func TestUpdateStatePauseAndResume(t *testing.T) {
	db := provtest.CreateTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Register(ctx, "dda_mining_p", "SIT1", Descriptor{JobType: "dda_mining_p", Interval: time.Hour, Enabled: true}))

	jobs, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	id := jobs[0].ID

	require.NoError(t, store.UpdateState(ctx, id, StatePaused))
	due, err := store.ListDue(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, due, "paused jobs never come due")

	require.NoError(t, store.UpdateState(ctx, id, StateActive))
	due, err = store.ListDue(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "dda_mining_p", due[0].JobType)
}

func TestUpdateStateUnknownJob(t *testing.T) {
	db := provtest.CreateTestDB(t)
	store := NewStore(db)

	err := store.UpdateState(context.Background(), "no-such-id", StatePaused)
	require.Error(t, err)
}

func TestExecutionStoreRoundTrip(t *testing.T) {
	db := provtest.CreateTestDB(t)
	store := NewStore(db)
	execStore := NewExecutionStore(db)
	ctx := context.Background()

	require.NoError(t, store.Register(ctx, "dda_mining_p", "SIT1", Descriptor{JobType: "dda_mining_p", Interval: time.Hour, Enabled: true}))
	jobs, err := store.ListAll(ctx)
	require.NoError(t, err)
	scheduledID := jobs[0].ID

	started := time.Now().UTC().Format(time.RFC3339)
	exec := &Execution{
		ID:             "exec-1",
		ScheduledJobID: scheduledID,
		JobType:        "dda_mining_p",
		Region:         "SIT1",
		Status:         ExecutionStatusRunning,
		StartedAt:      started,
		CreatedAt:      started,
		UpdatedAt:      started,
	}
	require.NoError(t, execStore.Create(ctx, exec))

	exec.Status = ExecutionStatusCompleted
	exec.Requested = 5
	exec.Succeeded = 4
	exec.Failed = 1
	exec.CompletedAt = util.Ptr(time.Now().UTC().Format(time.RFC3339))
	exec.DurationMs = util.Ptr(1234)
	require.NoError(t, execStore.Update(ctx, exec))

	recent, err := execStore.ListRecent(ctx, scheduledID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	got := recent[0]
	assert.Equal(t, ExecutionStatusCompleted, got.Status)
	assert.Equal(t, 5, got.Requested)
	assert.Equal(t, 4, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	require.NotNil(t, got.DurationMs)
	assert.Equal(t, 1234, *got.DurationMs)

	// Empty scheduled job ID lists across all jobs
	all, err := execStore.ListRecent(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
