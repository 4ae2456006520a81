// Package scheduler registers the recurring job catalog per region and
// drives execution on a ticker loop.
package scheduler

import (
	"time"

	"github.com/meridianbank/provisiond/internal/util"
)

// Descriptor declares one recurring schedule entry. Immutable once
// registered; re-registration replaces it.
type Descriptor struct {
	JobType  string
	Interval time.Duration
	Enabled  bool
	Params   Params
}

// Params carries per-schedule execution parameters.
type Params struct {
	// Count overrides the threshold calculator when set: the job
	// provisions exactly this many units per run.
	Count *int `json:"count,omitempty"`
}

// ScheduledJob is one persisted schedule row, unique per
// (job type, region).
type ScheduledJob struct {
	ID              string
	JobType         string
	Region          string
	IntervalSeconds int
	Params          Params
	State           string
	NextRunAt       time.Time
	LastRunAt       *time.Time
	LastExecutionID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// State constants for scheduled jobs
const (
	StateActive = "active" // job runs on schedule
	StatePaused = "paused" // registered but not ticking
)

// Catalog returns the fixed set of schedule entries registered for every
// region at bootstrap. Threshold jobs run daily with their long-standing
// per-customer counts; single-source jobs run every four hours sized by
// the threshold calculator.
func Catalog() []Descriptor {
	return []Descriptor{
		{JobType: "dda_threshold_p", Interval: 24 * time.Hour, Enabled: true, Params: Params{Count: util.Ptr(100)}},
		{JobType: "dda_threshold_b", Interval: 24 * time.Hour, Enabled: true, Params: Params{Count: util.Ptr(50)}},
		{JobType: "cca_threshold_p", Interval: 24 * time.Hour, Enabled: true, Params: Params{Count: util.Ptr(50)}},
		{JobType: "cca_threshold_b", Interval: 24 * time.Hour, Enabled: true, Params: Params{Count: util.Ptr(30)}},

		{JobType: "dda_mining_p", Interval: 4 * time.Hour, Enabled: true},
		{JobType: "dda_mining_b", Interval: 4 * time.Hour, Enabled: true},
		{JobType: "dda_sdg_p", Interval: 4 * time.Hour, Enabled: true},
		{JobType: "dda_sdg_b", Interval: 4 * time.Hour, Enabled: true},
		{JobType: "cca_mining", Interval: 4 * time.Hour, Enabled: true},
		{JobType: "cca_sdg_p", Interval: 4 * time.Hour, Enabled: true},
		{JobType: "cca_sdg_b", Interval: 4 * time.Hour, Enabled: true},

		// Registered paused; operators enable it when a bulk top-up is needed
		{JobType: "custom_dda_p_mining", Interval: 24 * time.Hour, Enabled: false, Params: Params{Count: util.Ptr(1000)}},
	}
}
