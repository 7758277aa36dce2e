package stores

import "time"

// Run is one persisted reconciliation run.
type Run struct {
	ID          string
	PlanID      string
	Mode        string
	DryRun      bool
	Status      string
	StartedAt   time.Time
	CompletedAt time.Time
	Applied     int
	Skipped     int
	Failed      int
}

// ActionRecord is one persisted action outcome within a run. Seq is the
// zero-based position of the action in the plan.
type ActionRecord struct {
	RunID        string
	Seq          int
	Op           string
	ResourceKind string
	ResourceName string
	Status       string
	Reason       string
	Error        string
	DurationMS   int64
}
