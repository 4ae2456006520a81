package runner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Attempt provisions one unit. Implementations should honor ctx, but the
// pool also bounds each call with its own timeout in case they don't.
type Attempt func(ctx context.Context) Outcome

// PoolConfig contains configuration for the provisioning pool
type PoolConfig struct {
	Workers        int           // Concurrent attempts (default: 1 = sequential)
	AttemptTimeout time.Duration // Per-attempt bound; 0 = unbounded
	RatePerSecond  float64       // Attempt pacing; 0 = unpaced
}

// DefaultPoolConfig returns sensible defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:        1,
		AttemptTimeout: 2 * time.Minute,
	}
}

// Pool runs N independent provisioning attempts per call, tallying
// success/failure. Attempts have no ordering dependency on each other and
// run on a bounded set of workers; each failure is recorded as an Outcome
// and never aborts the remaining attempts.
type Pool struct {
	cfg     PoolConfig
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// NewPool creates a provisioning pool
func NewPool(cfg PoolConfig, logger *zap.SugaredLogger) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &Pool{
		cfg:     cfg,
		limiter: limiter,
		logger:  logger,
	}
}

// Run executes exactly n attempts and returns the aggregated summary.
// Outcomes keep attempt order regardless of worker interleaving.
func (p *Pool) Run(ctx context.Context, n int, attempt Attempt) Summary {
	if n <= 0 {
		return Summary{}
	}

	runID := uuid.NewString()
	p.logger.Debugw("Provisioning run started",
		"run_id", runID,
		"requested", n,
		"workers", p.cfg.Workers)

	outcomes := make([]Outcome, n)
	indices := make(chan int)

	var wg sync.WaitGroup
	workers := p.cfg.Workers
	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				outcomes[i] = p.runOne(ctx, attempt)
			}
		}()
	}

	for i := 0; i < n; i++ {
		indices <- i
	}
	close(indices)
	wg.Wait()

	summary := Summary{Requested: n, Outcomes: outcomes}
	for _, o := range outcomes {
		if o.OK() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	p.logger.Infow("Provisioning run finished",
		"run_id", runID,
		"requested", summary.Requested,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)

	return summary
}

// runOne executes a single attempt with pacing and the per-attempt bound.
func (p *Pool) runOne(ctx context.Context, attempt Attempt) Outcome {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Failed("", err)
		}
	}

	attemptCtx := ctx
	var cancel context.CancelFunc
	if p.cfg.AttemptTimeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, p.cfg.AttemptTimeout)
		defer cancel()
	}

	// The attempt runs in its own goroutine so a backend call that ignores
	// its context still cannot hang the run past the timeout. An abandoned
	// attempt's result is discarded.
	done := make(chan Outcome, 1)
	go func() {
		done <- attempt(attemptCtx)
	}()

	select {
	case outcome := <-done:
		return outcome
	case <-attemptCtx.Done():
		return Failed("", attemptCtx.Err())
	}
}
