package flags

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Gate answers "may this job run?" from the job_control table.
//
// Lookup order: exact (jobName, region) row, then the region-agnostic
// default row. The two failure modes are deliberately asymmetric:
//
//   - no row at all → enabled. New jobs run until someone disables them.
//   - storage error → disabled. A storage outage must not flood the
//     downstream banking systems with test data.
type Gate struct {
	store  *Store
	logger *zap.SugaredLogger

	// Per-(job, region) exclusion for SetEnabled. The store transaction
	// protects against a second process; this keeps concurrent
	// administrative calls in this process from even racing the tx.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGate creates a gate over the given store
func NewGate(store *Store, logger *zap.SugaredLogger) *Gate {
	return &Gate{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// IsEnabled reports whether a job may run in a region.
func (g *Gate) IsEnabled(ctx context.Context, jobName, region string) bool {
	flag, err := g.store.Get(ctx, jobName, region)
	if err != nil {
		// Fail closed on lookup errors
		g.logger.Errorw("Job control lookup failed, treating job as disabled",
			"job", jobName,
			"region", region,
			"error", err)
		return false
	}

	if flag == nil && region != RegionAll {
		flag, err = g.store.Get(ctx, jobName, RegionAll)
		if err != nil {
			g.logger.Errorw("Job control default lookup failed, treating job as disabled",
				"job", jobName,
				"region", region,
				"error", err)
			return false
		}
	}

	if flag == nil {
		// Absence is not a blocker
		g.logger.Debugw("No job control record found, defaulting to enabled",
			"job", jobName,
			"region", region)
		return true
	}

	return flag.Enabled
}

// SetEnabled enables or disables a job for a region (RegionAll for every
// region). Upsert semantics: the row is updated in place when it exists.
func (g *Gate) SetEnabled(ctx context.Context, jobName, region string, enabled bool, updatedBy, comment string) error {
	lock := g.keyLock(jobName, region)
	lock.Lock()
	defer lock.Unlock()

	err := g.store.Upsert(ctx, &Flag{
		JobName:   jobName,
		Region:    region,
		Enabled:   enabled,
		UpdatedBy: updatedBy,
		Comment:   comment,
	})
	if err != nil {
		return err
	}

	action := "disabled"
	if enabled {
		action = "enabled"
	}
	g.logger.Infow("Job control flag updated",
		"job", jobName,
		"region", region,
		"action", action,
		"updated_by", updatedBy)
	return nil
}

// List returns flag rows for the operator surface.
func (g *Gate) List(ctx context.Context, region string) ([]*Flag, error) {
	return g.store.List(ctx, region)
}

func (g *Gate) keyLock(jobName, region string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := jobName + "\x00" + region
	lock, ok := g.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[key] = lock
	}
	return lock
}
