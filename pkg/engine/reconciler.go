package engine

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hearthd/hearth/pkg/telemetry"
)

// RunRecorder persists finished runs for later inspection. Recording is
// best-effort: a recording failure is logged, never fails the run.
type RunRecorder interface {
	RecordRun(ctx context.Context, plan *Plan, report *Report) error
}

// Reconciler drives one full reconciliation run:
// observe -> diff -> plan -> execute.
type Reconciler struct {
	backends Backends
	observer *Observer
	planner  *Planner
	executor *Executor
	logger   zerolog.Logger
	metrics  *telemetry.Metrics
	tracer   *telemetry.Tracer
	recorder RunRecorder
}

// NewReconciler wires a reconciler over the given backends. Metrics and
// tracer may be the disabled instances; recorder may be nil to skip run
// history.
func NewReconciler(
	backends Backends,
	logger zerolog.Logger,
	metrics *telemetry.Metrics,
	tracer *telemetry.Tracer,
	recorder RunRecorder,
) *Reconciler {
	return &Reconciler{
		backends: backends,
		observer: NewObserver(backends, logger),
		planner:  NewPlanner(),
		executor: NewExecutor(backends, logger),
		logger:   logger.With().Str("component", "reconciler").Logger(),
		metrics:  metrics,
		tracer:   tracer,
		recorder: recorder,
	}
}

// Plan runs the read-only half of the pipeline: snapshot the host, diff it
// against the model, and order the result. No backend mutation is issued.
func (r *Reconciler) Plan(ctx context.Context, model *Model) (*Plan, error) {
	obsCtx, obsSpan := r.tracer.StartSpan(ctx, "reconcile.observe")
	snapshot := r.observer.Observe(obsCtx, model)
	obsSpan.End()

	_, diffSpan := r.tracer.StartSpan(ctx, "reconcile.diff")
	actions := Diff(model, snapshot)
	diffSpan.End()

	_, planSpan := r.tracer.StartSpan(ctx, "reconcile.plan")
	plan, err := r.planner.BuildPlan(actions, model.Len())
	planSpan.End()
	if err != nil {
		return nil, err
	}

	r.metrics.RecordPlanSummary(plan.Summary.ToApply, plan.Summary.ToTeardown, plan.Summary.InSync)
	r.logger.Info().
		Str("plan_id", plan.ID).
		Int("actions", len(plan.Actions)).
		Int("in_sync", plan.Summary.InSync).
		Msg("plan computed")
	return plan, nil
}

// Reconcile runs the full pipeline and returns the run report.
func (r *Reconciler) Reconcile(ctx context.Context, model *Model, opts Options) (*Report, error) {
	if opts.Mode == "" {
		opts.Mode = ModeFailFast
	}
	runCtx, runSpan := r.tracer.StartSpan(ctx, "reconcile.run")
	defer runSpan.End()

	r.metrics.RecordRunStarted(string(opts.Mode), opts.DryRun)

	plan, err := r.Plan(runCtx, model)
	if err != nil {
		telemetry.RecordError(runSpan, err)
		return nil, err
	}

	execCtx, execSpan := r.tracer.StartSpan(runCtx, "reconcile.execute",
		attribute.String("plan_id", plan.ID),
		attribute.Bool("dry_run", opts.DryRun),
	)
	report, err := r.executor.Execute(execCtx, plan, opts)
	execSpan.End()
	if err != nil {
		telemetry.RecordError(runSpan, err)
		return nil, err
	}

	for _, result := range report.Results {
		r.metrics.RecordAction(string(result.Action.Op), string(result.Status), result.Duration)
	}
	r.metrics.RecordRunCompleted(string(report.Status), report.CompletedAt.Sub(report.StartedAt))

	applied, skipped, failed := report.Counts()
	r.logger.Info().
		Str("run_id", report.RunID).
		Str("status", string(report.Status)).
		Int("applied", applied).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("run finished")

	if r.recorder != nil {
		if err := r.recorder.RecordRun(ctx, plan, report); err != nil {
			r.logger.Warn().Err(err).Str("run_id", report.RunID).
				Msg("failed to record run history")
		}
	}
	return report, nil
}
