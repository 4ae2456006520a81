package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meridianbank/provisiond/errors"
)

func testPool(cfg PoolConfig) *Pool {
	return NewPool(cfg, zap.NewNop().Sugar())
}

func TestRunAllSucceed(t *testing.T) {
	pool := testPool(PoolConfig{Workers: 1})

	var calls int32
	summary := pool.Run(context.Background(), 5, func(ctx context.Context) Outcome {
		n := atomic.AddInt32(&calls, 1)
		return Succeeded(fmt.Sprintf("ACC-%d", n), "Mining")
	})

	assert.Equal(t, 5, summary.Requested)
	assert.Equal(t, 5, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, summary.Outcomes, 5)
	assert.EqualValues(t, 5, atomic.LoadInt32(&calls))
}

func TestRunContinuesPastFailures(t *testing.T) {
	pool := testPool(PoolConfig{Workers: 1})

	var calls int32
	summary := pool.Run(context.Background(), 5, func(ctx context.Context) Outcome {
		n := atomic.AddInt32(&calls, 1)
		if n == 2 || n == 5 {
			return Failed("Mining", errors.Newf("attempt %d failed", n))
		}
		return Succeeded(fmt.Sprintf("ACC-%d", n), "Mining")
	})

	assert.Equal(t, 5, summary.Requested)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	assert.Len(t, summary.Outcomes, 5)
	// Every attempt ran despite the failures in between
	assert.EqualValues(t, 5, atomic.LoadInt32(&calls))
}

func TestRunRateLimitPacesAttempts(t *testing.T) {
	// Burst 1 at 200/s spaces attempts roughly 5ms apart, so four
	// attempts take at least three waits regardless of worker count.
	pool := testPool(PoolConfig{Workers: 4, RatePerSecond: 200})

	var calls int32
	start := time.Now()
	summary := pool.Run(context.Background(), 4, func(ctx context.Context) Outcome {
		n := atomic.AddInt32(&calls, 1)
		return Succeeded(fmt.Sprintf("ACC-%d", n), "Mining")
	})
	elapsed := time.Since(start)

	assert.Equal(t, 4, summary.Requested)
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
}

func TestRunRateLimitStopsOnCancel(t *testing.T) {
	pool := testPool(PoolConfig{Workers: 1, RatePerSecond: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	summary := pool.Run(ctx, 3, func(ctx context.Context) Outcome {
		atomic.AddInt32(&calls, 1)
		return Succeeded("ACC-1", "Mining")
	})

	// The limiter wait fails fast on a dead context; no attempt runs
	assert.Equal(t, 3, summary.Requested)
	assert.Equal(t, 3, summary.Failed)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestRunOutcomeOrderPreserved(t *testing.T) {
	pool := testPool(PoolConfig{Workers: 4})

	var next int32
	summary := pool.Run(context.Background(), 8, func(ctx context.Context) Outcome {
		n := atomic.AddInt32(&next, 1)
		return Succeeded(fmt.Sprintf("ACC-%d", n), "SDG")
	})

	require.Len(t, summary.Outcomes, 8)
	for _, o := range summary.Outcomes {
		assert.True(t, o.OK())
		assert.NotEmpty(t, o.Ref)
	}
	assert.Equal(t, summary.Requested, summary.Succeeded+summary.Failed)
}

func TestRunZeroRequested(t *testing.T) {
	pool := testPool(PoolConfig{Workers: 2})

	summary := pool.Run(context.Background(), 0, func(ctx context.Context) Outcome {
		t.Fatal("attempt should not run")
		return Outcome{}
	})

	assert.Equal(t, 0, summary.Requested)
	assert.Empty(t, summary.Outcomes)
}

func TestRunAttemptTimeout(t *testing.T) {
	pool := testPool(PoolConfig{Workers: 1, AttemptTimeout: 20 * time.Millisecond})

	summary := pool.Run(context.Background(), 2, func(ctx context.Context) Outcome {
		select {
		case <-time.After(5 * time.Second):
			return Succeeded("ACC-late", "Mining")
		case <-ctx.Done():
			// A well-behaved attempt returns on cancellation, but the pool
			// does not depend on it; sleep past the select below.
			time.Sleep(50 * time.Millisecond)
			return Failed("Mining", ctx.Err())
		}
	})

	assert.Equal(t, 2, summary.Requested)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	for _, o := range summary.Outcomes {
		assert.False(t, o.OK())
		assert.NotEmpty(t, o.Err)
	}
}

func TestMergePreservesConservation(t *testing.T) {
	a := Summary{Requested: 3, Succeeded: 2, Failed: 1, Outcomes: []Outcome{
		Succeeded("A1", "Mining"),
		Succeeded("A2", "Mining"),
		Failed("Mining", errors.New("boom")),
	}}
	b := Summary{Requested: 2, Succeeded: 2, Failed: 0, Outcomes: []Outcome{
		Succeeded("B1", "SDG"),
		Succeeded("B2", "SDG"),
	}}

	merged := a.Merge(b)

	assert.Equal(t, 5, merged.Requested)
	assert.Equal(t, 4, merged.Succeeded)
	assert.Equal(t, 1, merged.Failed)
	assert.Len(t, merged.Outcomes, 5)
	assert.Equal(t, merged.Requested, merged.Succeeded+merged.Failed)
}
