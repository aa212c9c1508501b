package models

import "time"

// Outcome classifies the result of one operation after a dry-run or execute
// pass over a plan.
type Outcome string

const (
	// OutcomeApplied means the operation mutated the filesystem or tag store
	OutcomeApplied Outcome = "applied"
	// OutcomeSkipped means the operation did not run (cancellation, missing
	// adapter, or an occupied destination)
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the operation was attempted and failed
	OutcomeFailed Outcome = "failed"
	// OutcomeWouldApply means dry-run validation found no obstacle
	OutcomeWouldApply Outcome = "would-apply"
	// OutcomeWouldFail means dry-run validation found a blocking problem
	OutcomeWouldFail Outcome = "would-fail"
)

// OperationResult records the outcome of a single operation.
type OperationResult struct {
	Operation Operation
	Outcome   Outcome
	// Reason explains skipped and failed outcomes; empty on success
	Reason    string
	Timestamp time.Time
}

// Report is the ordered record of one pass over a plan. It is the only
// artifact the executor produces; persistence and presentation are the
// callers' concern.
type Report struct {
	// DryRun indicates the pass validated without mutating anything
	DryRun bool
	// Results in plan order, one per operation
	Results []OperationResult
	// Started and Finished bound the pass
	Started  time.Time
	Finished time.Time
}

// CountByOutcome returns the number of results with the given outcome.
func (r *Report) CountByOutcome(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Failed reports whether any operation failed or would fail.
func (r *Report) Failed() bool {
	return r.CountByOutcome(OutcomeFailed) > 0 || r.CountByOutcome(OutcomeWouldFail) > 0
}
