package quota

import (
	"context"

	"go.uber.org/zap"

	"github.com/meridianbank/provisiond/errors"
)

// ErrNoTarget marks a missing threshold target for a combination. Callers
// treat it as "nothing to create" rather than crashing the scheduler.
var ErrNoTarget = errors.New("no threshold target configured")

// ActiveCounter counts existing not-yet-consumed accounts. Implemented by
// the accounts store.
type ActiveCounter interface {
	CountActive(ctx context.Context, accountType, customerType, region, source string) (int, error)
}

// TargetSource resolves the configured target for a combination.
// Implemented by config.Config.
type TargetSource interface {
	Target(accountType, customerType, region, source string) (int, bool)
}

// Calculator computes per-combination provisioning deficits.
type Calculator struct {
	counter ActiveCounter
	targets TargetSource
	logger  *zap.SugaredLogger
}

// NewCalculator creates a threshold calculator
func NewCalculator(counter ActiveCounter, targets TargetSource, logger *zap.SugaredLogger) *Calculator {
	return &Calculator{
		counter: counter,
		targets: targets,
		logger:  logger,
	}
}

// Compute returns the quota for one (account type, customer type, region,
// source) combination. Returns ErrNoTarget when the combination has no
// configured target.
func (c *Calculator) Compute(ctx context.Context, accountType, customerType, region, source string) (Quota, error) {
	target, ok := c.targets.Target(accountType, customerType, region, source)
	if !ok {
		return Quota{}, errors.Wrapf(ErrNoTarget, "%s/%s in %s from %s", accountType, customerType, region, source)
	}

	existing, err := c.counter.CountActive(ctx, accountType, customerType, region, source)
	if err != nil {
		return Quota{}, errors.Wrapf(err, "failed to count active %s accounts in %s", accountType, region)
	}

	deficit := target - existing
	if deficit < 0 {
		deficit = 0
	}

	c.logger.Debugw("Threshold computed",
		"account_type", accountType,
		"customer_type", customerType,
		"region", region,
		"source", source,
		"existing", existing,
		"target", target,
		"deficit", deficit)

	return Quota{Existing: existing, Target: target, Deficit: deficit}, nil
}
