package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options configures one reconciliation run.
type Options struct {
	// Mode is the failure policy. Defaults to ModeFailFast.
	Mode Mode

	// DryRun computes and reports the plan without invoking any mutating
	// backend call.
	DryRun bool
}

// Executor applies a plan action by action against the backends, strictly
// sequentially in plan order. It owns the in-progress report for the
// duration of the run; nothing else touches it.
type Executor struct {
	backends Backends
	logger   zerolog.Logger
	now      func() time.Time
}

// NewExecutor creates an executor over the given backends.
func NewExecutor(backends Backends, logger zerolog.Logger) *Executor {
	return &Executor{
		backends: backends,
		logger:   logger.With().Str("component", "executor").Logger(),
		now:      time.Now,
	}
}

// Execute applies the plan and returns the run report. The report holds one
// result per planned action, in plan order, regardless of execution mode,
// so the report stays a complete audit log even for aborted runs.
// Backend failures are recorded,
// not returned; the only errors Execute itself can produce are invalid
// options.
func (e *Executor) Execute(ctx context.Context, plan *Plan, opts Options) (*Report, error) {
	if opts.Mode == "" {
		opts.Mode = ModeFailFast
	}
	if err := opts.Mode.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.New().String(),
		PlanID:    plan.ID,
		Mode:      opts.Mode,
		DryRun:    opts.DryRun,
		StartedAt: e.now(),
		Results:   make([]ActionResult, 0, len(plan.Actions)),
	}

	aborted := false
	failures := 0
	for _, action := range plan.Actions {
		switch {
		case aborted:
			report.Results = append(report.Results, ActionResult{
				Action: action,
				Status: StatusSkipped,
				Reason: SkipReasonAborted,
			})
		case opts.DryRun:
			e.logger.Info().Str("action", action.String()).Msg("would apply")
			report.Results = append(report.Results, ActionResult{
				Action: action,
				Status: StatusSkipped,
				Reason: SkipReasonDryRun,
			})
		default:
			result := e.apply(ctx, action)
			report.Results = append(report.Results, result)
			if result.Status == StatusFailed {
				failures++
				if opts.Mode == ModeFailFast {
					aborted = true
				}
			}
		}
	}

	report.CompletedAt = e.now()
	switch {
	case aborted:
		report.Status = RunAborted
	case failures > 0:
		report.Status = RunCompletedWithFailures
	default:
		report.Status = RunComplete
	}
	return report, nil
}

// apply performs the single backend call an action maps to.
func (e *Executor) apply(ctx context.Context, action Action) ActionResult {
	started := e.now()
	err := e.dispatch(ctx, action)
	elapsed := e.now().Sub(started)

	if err != nil {
		classified := classify(err, action)
		e.logger.Error().Err(classified).
			Str("action", action.String()).
			Dur("duration", elapsed).
			Msg("action failed")
		return ActionResult{
			Action:   action,
			Status:   StatusFailed,
			Err:      classified,
			Duration: elapsed,
		}
	}

	e.logger.Info().
		Str("action", action.String()).
		Dur("duration", elapsed).
		Msg("applied")
	return ActionResult{
		Action:   action,
		Status:   StatusApplied,
		Duration: elapsed,
	}
}

func (e *Executor) dispatch(ctx context.Context, action Action) error {
	name := action.Resource.Name
	switch action.Op {
	case OpInstall:
		return e.backends.Packages.Install(ctx, name)
	case OpRemove:
		return e.backends.Packages.Remove(ctx, name)
	case OpCreateLink:
		return e.backends.Files.CreateLink(ctx, name, action.Source)
	case OpRemoveLink:
		return e.backends.Files.RemoveLink(ctx, name)
	case OpEnableService:
		return e.backends.Services.Enable(ctx, name)
	case OpDisableService:
		return e.backends.Services.Disable(ctx, name)
	case OpStartService:
		return e.backends.Services.Start(ctx, name)
	case OpStopService:
		return e.backends.Services.Stop(ctx, name)
	default:
		return fmt.Errorf("invalid op: %s", action.Op)
	}
}

// classify wraps a backend error with kind and context. Link conflicts keep
// their distinguished kind so reports can tell "fix this by hand" apart from
// ordinary backend failures.
func classify(err error, action Action) *Error {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		if engineErr.Resource == "" {
			engineErr.Resource = action.Resource.String()
		}
		if engineErr.Operation == "" {
			engineErr.Operation = string(action.Op)
		}
		return engineErr
	}
	return NewError(ErrBackend, "backend call failed", err).
		WithResource(action.Resource.String()).
		WithOperation(string(action.Op))
}
