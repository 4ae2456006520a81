// Package job wires the control gate, threshold calculator, and
// provisioning pool into externally callable units of work, and maps job
// type identifiers to constructed instances.
package job

import (
	"context"

	"go.uber.org/zap"

	"github.com/meridianbank/provisiond/accounts"
	"github.com/meridianbank/provisiond/quota"
	"github.com/meridianbank/provisiond/runner"
)

// State of a job instance as it moves through one execution.
type State string

const (
	StateCreated   State = "created"
	StateGated     State = "gated"
	StateSkipped   State = "skipped"
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

// Status of an execution summary.
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusCompleted Status = "completed"
)

// Summary is the aggregated result of one Execute call, owned by the
// caller. Succeeded + Failed == Requested == len(Outcomes).
type Summary struct {
	Status    Status
	Region    string
	Requested int
	Succeeded int
	Failed    int
	Outcomes  []runner.Outcome
}

// Gate admits or skips a job run. Implemented by flags.Gate.
type Gate interface {
	IsEnabled(ctx context.Context, jobName, region string) bool
}

// Calculator sizes a run. Implemented by quota.Calculator.
type Calculator interface {
	Compute(ctx context.Context, accountType, customerType, region, source string) (quota.Quota, error)
}

// Pool fans a run out into independent attempts. Implemented by
// runner.Pool.
type Pool interface {
	Run(ctx context.Context, n int, attempt runner.Attempt) runner.Summary
}

// RecordWriter persists created account references. Implemented by
// accounts.Store.
type RecordWriter interface {
	Insert(ctx context.Context, ref accounts.EntityRef, customerType, region, source string) error
}

// Job is one named, schedulable unit of quota-driven provisioning work,
// parameterized by (account type, customer type, data source).
type Job struct {
	name         string
	accountType  string
	customerType string
	source       string

	gate        Gate
	calc        Calculator
	pool        Pool
	provisioner accounts.Provisioner
	records     RecordWriter
	picker      *accounts.Picker
	logger      *zap.SugaredLogger

	state State
}

// NewJob constructs a job for one (account type, customer type, source)
// combination. Construction performs no I/O.
func NewJob(name, accountType, customerType, source string, deps Deps) *Job {
	return &Job{
		name:         name,
		accountType:  accountType,
		customerType: customerType,
		source:       source,
		gate:         deps.Gate,
		calc:         deps.Calculator,
		pool:         deps.Pool,
		provisioner:  deps.Provisioner,
		records:      deps.Records,
		picker:       deps.Picker,
		logger:       deps.Logger,
		state:        StateCreated,
	}
}

// Name returns the job's control-flag name.
func (j *Job) Name() string { return j.name }

// State returns the state reached by the most recent Execute call.
func (j *Job) State() State { return j.state }

// Execute runs the job for one region.
//
// The gate is checked first; a disabled job returns a skipped summary with
// zero counts and no provisioning side effects. The unit count comes from
// countOverride when supplied, otherwise from the threshold calculator; a
// non-positive count completes with zero counts (not an error). Per-unit
// failures are captured in the summary and never escape; calculator errors
// (including a missing target) propagate to the caller.
func (j *Job) Execute(ctx context.Context, region string, countOverride *int) (Summary, error) {
	j.state = StateGated
	if !j.gate.IsEnabled(ctx, j.name, region) {
		j.state = StateSkipped
		j.logger.Infow("Job disabled, skipping",
			"job", j.name,
			"region", region)
		return Summary{Status: StatusSkipped, Region: region}, nil
	}

	count := 0
	if countOverride != nil {
		count = *countOverride
	} else {
		q, err := j.calc.Compute(ctx, j.accountType, j.customerType, region, j.source)
		if err != nil {
			return Summary{}, err
		}
		count = q.Deficit
	}

	if count <= 0 {
		j.state = StateCompleted
		j.logger.Infow("Quota satisfied, nothing to provision",
			"job", j.name,
			"region", region)
		return Summary{Status: StatusCompleted, Region: region}, nil
	}

	j.state = StateRunning
	j.logger.Infow("Provisioning accounts",
		"job", j.name,
		"region", region,
		"count", count,
		"source", j.source)

	result := j.runCount(ctx, region, count)

	j.state = StateCompleted
	return Summary{
		Status:    StatusCompleted,
		Region:    region,
		Requested: result.Requested,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Outcomes:  result.Outcomes,
	}, nil
}

// runCount executes n attempts without re-checking the gate. Blended jobs
// call this directly for their sub-runs: admission was already decided
// under the blended job's own name.
func (j *Job) runCount(ctx context.Context, region string, n int) runner.Summary {
	return j.pool.Run(ctx, n, func(ctx context.Context) runner.Outcome {
		req := accounts.Request{
			AccountType:  j.accountType,
			CustomerType: j.customerType,
			Region:       region,
			Source:       j.source,
		}
		if j.source == accounts.SourceSDG && j.picker != nil {
			req.ProductHint = j.picker.PickProductType(j.accountType, j.customerType)
		}

		ref, err := j.provisioner.CreateAccount(ctx, req)
		if err != nil {
			return runner.Failed(j.source, err)
		}

		if err := j.records.Insert(ctx, ref, j.customerType, region, j.source); err != nil {
			// The account exists upstream but is unusable without its
			// reserved record; count the unit as failed.
			j.logger.Errorw("Created account could not be recorded",
				"job", j.name,
				"account", ref.AccountNumber,
				"error", err)
			return runner.Failed(j.source, err)
		}

		return runner.Succeeded(ref.AccountNumber, j.source)
	})
}
