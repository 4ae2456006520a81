// Package runner executes batches of independent provisioning attempts with
// continue-on-error semantics: one failed attempt never aborts the rest.
package runner

// Outcome is the result of one provisioning attempt: either a created
// entity reference or a failure reason. Ephemeral, collected per run.
type Outcome struct {
	Ref    string // created entity reference, set on success
	Source string // data source the attempt drew from (Mining/SDG)
	Err    string // failure reason, empty on success
}

// OK reports whether the attempt succeeded.
func (o Outcome) OK() bool {
	return o.Err == ""
}

// Succeeded builds a success outcome for a created entity reference.
func Succeeded(ref, source string) Outcome {
	return Outcome{Ref: ref, Source: source}
}

// Failed builds a failure outcome carrying the reason.
func Failed(source string, err error) Outcome {
	return Outcome{Source: source, Err: err.Error()}
}

// Summary aggregates the outcomes of one run.
// Invariant: Succeeded + Failed == Requested == len(Outcomes).
type Summary struct {
	Requested int
	Succeeded int
	Failed    int
	Outcomes  []Outcome
}

// Merge combines two summaries, preserving the count invariant of both.
// Used by blended jobs to fold their two sub-runs into one result.
func (s Summary) Merge(other Summary) Summary {
	merged := Summary{
		Requested: s.Requested + other.Requested,
		Succeeded: s.Succeeded + other.Succeeded,
		Failed:    s.Failed + other.Failed,
	}
	merged.Outcomes = make([]Outcome, 0, len(s.Outcomes)+len(other.Outcomes))
	merged.Outcomes = append(merged.Outcomes, s.Outcomes...)
	merged.Outcomes = append(merged.Outcomes, other.Outcomes...)
	return merged
}
