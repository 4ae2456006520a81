// Package quota computes how many accounts a job must still provision and
// how a combined quota splits across the two data sources.
package quota

// Quota is the outcome of one threshold computation. Recomputed on every
// job run, never persisted.
type Quota struct {
	Existing int // NEW reserved accounts already on hand
	Target   int // configured target for the combination
	Deficit  int // max(Target-Existing, 0)
}

// Allocation splits a total deficit across the Mining/SDG sources.
// CountA + CountB == TotalDeficit always; the floor remainder is absorbed
// by source B so no unit is lost or double-counted.
type Allocation struct {
	TotalDeficit int
	PercentA     int
	CountA       int
	CountB       int
}

// Split allocates total units between two sources by percentage.
// percentA is clamped to [0,100]; a negative total is treated as zero.
func Split(total, percentA int) Allocation {
	if total < 0 {
		total = 0
	}
	if percentA < 0 {
		percentA = 0
	}
	if percentA > 100 {
		percentA = 100
	}

	countA := total * percentA / 100
	return Allocation{
		TotalDeficit: total,
		PercentA:     percentA,
		CountA:       countA,
		CountB:       total - countA,
	}
}
