package job

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/meridianbank/provisiond/accounts"
	"github.com/meridianbank/provisiond/quota"
	"github.com/meridianbank/provisiond/runner"
)

// BlendedJob fulfills one combined quota by splitting it across the
// Mining and SDG sources by percentage. The split preserves exact unit
// conservation: mining + sdg == total, with the floor remainder absorbed
// by SDG.
type BlendedJob struct {
	name          string
	accountType   string
	customerType  string
	miningPercent int

	mining *Job
	sdg    *Job

	gate   Gate
	calc   Calculator
	logger *zap.SugaredLogger

	state State
}

// NewBlendedJob constructs a blended job. The two sub-jobs share the
// blended job's dependencies; their own names never reach the gate, since
// admission is decided once under the blended name.
func NewBlendedJob(name, accountType, customerType string, miningPercent int, deps Deps) *BlendedJob {
	return &BlendedJob{
		name:          name,
		accountType:   accountType,
		customerType:  customerType,
		miningPercent: miningPercent,
		mining:        NewJob(name+":mining", accountType, customerType, accounts.SourceMining, deps),
		sdg:           NewJob(name+":sdg", accountType, customerType, accounts.SourceSDG, deps),
		gate:          deps.Gate,
		calc:          deps.Calculator,
		logger:        deps.Logger,
		state:         StateCreated,
	}
}

// Name returns the job's control-flag name.
func (b *BlendedJob) Name() string { return b.name }

// State returns the state reached by the most recent Execute call.
func (b *BlendedJob) State() State { return b.state }

// Execute runs the blended job for one region.
//
// The combined unit count comes from countOverride when supplied,
// otherwise from the combined deficit across both sources. The count is
// split by miningPercent and the two sub-runs execute concurrently; their
// summaries merge with the conservation invariant intact.
func (b *BlendedJob) Execute(ctx context.Context, region string, countOverride *int) (Summary, error) {
	b.state = StateGated
	if !b.gate.IsEnabled(ctx, b.name, region) {
		b.state = StateSkipped
		b.logger.Infow("Job disabled, skipping",
			"job", b.name,
			"region", region)
		return Summary{Status: StatusSkipped, Region: region}, nil
	}

	total := 0
	if countOverride != nil {
		total = *countOverride
	} else {
		deficit, err := b.combinedDeficit(ctx, region)
		if err != nil {
			return Summary{}, err
		}
		total = deficit
	}

	if total <= 0 {
		b.state = StateCompleted
		b.logger.Infow("Combined quota satisfied, nothing to provision",
			"job", b.name,
			"region", region)
		return Summary{Status: StatusCompleted, Region: region}, nil
	}

	alloc := quota.Split(total, b.miningPercent)
	b.state = StateRunning
	b.logger.Infow("Provisioning blended quota",
		"job", b.name,
		"region", region,
		"total", alloc.TotalDeficit,
		"mining_percent", alloc.PercentA,
		"mining", alloc.CountA,
		"sdg", alloc.CountB)

	// The two sub-runs have no ordering dependency; run them concurrently.
	var wg sync.WaitGroup
	var miningResult, sdgResult runner.Summary

	wg.Add(2)
	go func() {
		defer wg.Done()
		miningResult = b.mining.runCount(ctx, region, alloc.CountA)
	}()
	go func() {
		defer wg.Done()
		sdgResult = b.sdg.runCount(ctx, region, alloc.CountB)
	}()
	wg.Wait()

	merged := miningResult.Merge(sdgResult)
	b.state = StateCompleted
	return Summary{
		Status:    StatusCompleted,
		Region:    region,
		Requested: merged.Requested,
		Succeeded: merged.Succeeded,
		Failed:    merged.Failed,
		Outcomes:  merged.Outcomes,
	}, nil
}

// combinedDeficit treats both sources as one blended pool: summed targets
// against summed existing counts, clamped at zero. A surplus in one source
// offsets a shortfall in the other. Both sources must have configured
// targets; a missing target propagates as the calculator's configuration
// error.
func (b *BlendedJob) combinedDeficit(ctx context.Context, region string) (int, error) {
	mining, err := b.calc.Compute(ctx, b.accountType, b.customerType, region, accounts.SourceMining)
	if err != nil {
		return 0, err
	}
	sdg, err := b.calc.Compute(ctx, b.accountType, b.customerType, region, accounts.SourceSDG)
	if err != nil {
		return 0, err
	}

	deficit := (mining.Target + sdg.Target) - (mining.Existing + sdg.Existing)
	if deficit < 0 {
		deficit = 0
	}
	return deficit, nil
}
