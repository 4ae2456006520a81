package job

import (
	"context"

	"go.uber.org/zap"

	"github.com/meridianbank/provisiond/accounts"
	"github.com/meridianbank/provisiond/errors"
)

// ErrUnknownJobType marks a factory miss. Callers respond gracefully
// (skip the scheduled entry, reject the operator request) rather than
// treating it as a fault.
var ErrUnknownJobType = errors.New("unknown job type")

// Runnable is what the factory hands out: a constructed job ready to
// execute for a region.
type Runnable interface {
	Name() string
	Execute(ctx context.Context, region string, countOverride *int) (Summary, error)
}

// Deps bundles the collaborators every job needs. Resolved once at
// startup so a missing dependency fails at wiring time, not at first use.
type Deps struct {
	Gate        Gate
	Calculator  Calculator
	Pool        Pool
	Provisioner accounts.Provisioner
	Records     RecordWriter
	Picker      *accounts.Picker
	Logger      *zap.SugaredLogger
}

// Factory maps job type identifiers to fully constructed jobs.
// Construction is pure dependency wiring; no I/O happens until Execute.
type Factory struct {
	deps          Deps
	miningPercent int
}

// NewFactory creates a job factory. miningPercent is the default mining
// share for blended (threshold) jobs.
func NewFactory(deps Deps, miningPercent int) *Factory {
	return &Factory{deps: deps, miningPercent: miningPercent}
}

// Create returns the job for a job type, or ErrUnknownJobType.
func (f *Factory) Create(jobType string) (Runnable, error) {
	switch jobType {
	// Single-source DDA jobs
	case "dda_mining_p":
		return NewJob(jobType, "dda", accounts.CustomerPersonal, accounts.SourceMining, f.deps), nil
	case "dda_mining_b":
		return NewJob(jobType, "dda", accounts.CustomerBusiness, accounts.SourceMining, f.deps), nil
	case "dda_sdg_p":
		return NewJob(jobType, "dda", accounts.CustomerPersonal, accounts.SourceSDG, f.deps), nil
	case "dda_sdg_b":
		return NewJob(jobType, "dda", accounts.CustomerBusiness, accounts.SourceSDG, f.deps), nil

	// Single-source CCA jobs
	case "cca_mining":
		return NewJob(jobType, "cca", accounts.CustomerPersonal, accounts.SourceMining, f.deps), nil
	case "cca_sdg_p":
		return NewJob(jobType, "cca", accounts.CustomerPersonal, accounts.SourceSDG, f.deps), nil
	case "cca_sdg_b":
		return NewJob(jobType, "cca", accounts.CustomerBusiness, accounts.SourceSDG, f.deps), nil

	// Blended threshold jobs: one combined quota split across both sources
	case "dda_threshold_p":
		return NewBlendedJob(jobType, "dda", accounts.CustomerPersonal, f.miningPercent, f.deps), nil
	case "dda_threshold_b":
		return NewBlendedJob(jobType, "dda", accounts.CustomerBusiness, f.miningPercent, f.deps), nil
	case "cca_threshold_p":
		return NewBlendedJob(jobType, "cca", accounts.CustomerPersonal, f.miningPercent, f.deps), nil
	case "cca_threshold_b":
		return NewBlendedJob(jobType, "cca", accounts.CustomerBusiness, f.miningPercent, f.deps), nil

	// Custom variants: identical mechanics, distinct control-flag names,
	// normally invoked with an explicit count override
	case "custom_dda_p_mining":
		return NewJob(jobType, "dda", accounts.CustomerPersonal, accounts.SourceMining, f.deps), nil
	case "custom_dda_b_mining":
		return NewJob(jobType, "dda", accounts.CustomerBusiness, accounts.SourceMining, f.deps), nil
	case "custom_dda_p_sdg":
		return NewJob(jobType, "dda", accounts.CustomerPersonal, accounts.SourceSDG, f.deps), nil
	case "custom_dda_b_sdg":
		return NewJob(jobType, "dda", accounts.CustomerBusiness, accounts.SourceSDG, f.deps), nil
	case "custom_cca_p_mining":
		return NewJob(jobType, "cca", accounts.CustomerPersonal, accounts.SourceMining, f.deps), nil
	case "custom_cca_b_mining":
		return NewJob(jobType, "cca", accounts.CustomerBusiness, accounts.SourceMining, f.deps), nil
	case "custom_cca_p_sdg":
		return NewJob(jobType, "cca", accounts.CustomerPersonal, accounts.SourceSDG, f.deps), nil
	case "custom_cca_b_sdg":
		return NewJob(jobType, "cca", accounts.CustomerBusiness, accounts.SourceSDG, f.deps), nil

	default:
		return nil, errors.Wrapf(ErrUnknownJobType, "%s", jobType)
	}
}

// Types returns every job type the factory can construct.
func (f *Factory) Types() []string {
	return []string{
		"dda_mining_p", "dda_mining_b", "dda_sdg_p", "dda_sdg_b",
		"cca_mining", "cca_sdg_p", "cca_sdg_b",
		"dda_threshold_p", "dda_threshold_b", "cca_threshold_p", "cca_threshold_b",
		"custom_dda_p_mining", "custom_dda_b_mining", "custom_dda_p_sdg", "custom_dda_b_sdg",
		"custom_cca_p_mining", "custom_cca_b_mining", "custom_cca_p_sdg", "custom_cca_b_sdg",
	}
}
