package engine

import (
	"fmt"
	"time"
)

// Mode selects the executor's failure policy.
type Mode string

const (
	// ModeFailFast stops at the first failed action and marks every
	// remaining action as skipped.
	ModeFailFast Mode = "fail-fast"

	// ModeBestEffort continues past failed actions and reports them all.
	ModeBestEffort Mode = "best-effort"
)

// Validate checks that the mode is one of the known execution modes.
func (m Mode) Validate() error {
	switch m {
	case ModeFailFast, ModeBestEffort:
		return nil
	default:
		return fmt.Errorf("invalid execution mode: %s", m)
	}
}

// ActionStatus is the per-action outcome recorded in the report.
type ActionStatus string

const (
	// StatusApplied means the backend call succeeded.
	StatusApplied ActionStatus = "applied"

	// StatusSkipped means the action was not attempted; Reason says why.
	StatusSkipped ActionStatus = "skipped"

	// StatusFailed means the backend call failed; Err carries the cause.
	StatusFailed ActionStatus = "failed"
)

// Skip reasons recorded on StatusSkipped results.
const (
	// SkipReasonAborted marks actions abandoned after a FailFast abort.
	SkipReasonAborted = "aborted"

	// SkipReasonDryRun marks actions recorded but not executed in a dry
	// run.
	SkipReasonDryRun = "dry-run"
)

// ActionResult is the outcome of one planned action.
type ActionResult struct {
	// Action is the planned action this result belongs to.
	Action Action `json:"action"`

	// Status is the outcome.
	Status ActionStatus `json:"status"`

	// Reason explains a skip.
	Reason string `json:"reason,omitempty"`

	// Err is the classified failure, set only for StatusFailed.
	Err *Error `json:"error,omitempty"`

	// Duration is how long the backend call took.
	Duration time.Duration `json:"duration,omitempty"`
}

// RunStatus is the terminal status of one reconciliation run.
type RunStatus string

const (
	// RunComplete means every action applied (or the plan was empty).
	RunComplete RunStatus = "complete"

	// RunCompletedWithFailures means the whole plan was attempted but at
	// least one action failed (BestEffort).
	RunCompletedWithFailures RunStatus = "completed_with_failures"

	// RunAborted means execution stopped at a failed action (FailFast).
	RunAborted RunStatus = "aborted"
)

// Report is the audit log of one reconciliation run: one result per planned
// action, in plan order regardless of execution mode, plus the terminal
// status.
type Report struct {
	// RunID is the unique identifier of this run.
	RunID string `json:"run_id"`

	// PlanID is the plan this run executed.
	PlanID string `json:"plan_id"`

	// Mode is the failure policy the run executed under.
	Mode Mode `json:"mode"`

	// DryRun is true when no backend mutation was invoked.
	DryRun bool `json:"dry_run"`

	// StartedAt is when execution began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when execution finished.
	CompletedAt time.Time `json:"completed_at"`

	// Results holds one entry per planned action, in plan order.
	Results []ActionResult `json:"results"`

	// Status is the terminal status of the run.
	Status RunStatus `json:"status"`
}

// Counts returns the number of applied, skipped and failed actions.
func (r *Report) Counts() (applied, skipped, failed int) {
	for _, result := range r.Results {
		switch result.Status {
		case StatusApplied:
			applied++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return applied, skipped, failed
}
