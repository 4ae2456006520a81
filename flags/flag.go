// Package flags implements runtime job control: database-backed enable flags
// checked before every job run, so operators can switch jobs on and off per
// region without redeploying.
package flags

import "time"

// RegionAll is the empty region marker on a flag row that applies to every
// region. Region-specific rows take precedence over it at lookup time.
const RegionAll = ""

// Flag is one job control row, unique per (JobName, Region).
// Rows are created by migration seeding or the first SetEnabled call, and
// are updated in place, never deleted.
type Flag struct {
	JobName   string
	Region    string // RegionAll for the region-agnostic default
	Enabled   bool
	UpdatedBy string
	UpdatedAt time.Time
	Comment   string
}
