package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/hearthd/hearth/pkg/telemetry"
)

func newTestReconciler(t *testing.T, host *fakeHost, recorder RunRecorder) *Reconciler {
	t.Helper()
	metrics, err := telemetry.NewMetrics(telemetry.MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	tracer, err := telemetry.NewTracer(telemetry.TracingConfig{}, "hearth-test", "test")
	if err != nil {
		t.Fatalf("NewTracer failed: %v", err)
	}
	return NewReconciler(host.backends(), testLogger(), metrics, tracer, recorder)
}

func TestReconcileConvergesThenIdempotent(t *testing.T) {
	host := newFakeHost()
	host.packages["foo"] = struct{}{}
	host.services["foo-svc"] = &fakeService{enabled: FlagOn, running: FlagOn}

	source := tempSource(t)
	model := mustModel(t, []Entry{
		pkgEntry("git", PresencePresent),
		linkEntry("/home/u/.gitconfig", source),
		svcEntry("sshd", PresencePresent, true, true),
		pkgEntry("foo", PresenceAbsent),
		svcEntry("foo-svc", PresenceAbsent, false, false),
	})

	reconciler := newTestReconciler(t, host, nil)

	report, err := reconciler.Reconcile(context.Background(), model, Options{})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if report.Status != RunComplete {
		t.Fatalf("expected status %s, got %s", RunComplete, report.Status)
	}

	// Teardown first (foo-svc stopped and disabled, foo removed), then
	// bring-up in kind order.
	wantCalls := []string{
		"stop_service foo-svc",
		"disable_service foo-svc",
		"remove foo",
		"install git",
		"create_link /home/u/.gitconfig",
		"enable_service sshd",
		"start_service sshd",
	}
	got := host.callLog()
	if len(got) != len(wantCalls) {
		t.Fatalf("expected calls %v, got %v", wantCalls, got)
	}
	for i := range wantCalls {
		if got[i] != wantCalls[i] {
			t.Fatalf("call %d: expected %q, got %q", i, wantCalls[i], got[i])
		}
	}

	// Converged host: second plan is empty.
	plan, err := reconciler.Plan(context.Background(), model)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !plan.Empty() {
		t.Fatalf("expected empty plan after convergence, got %v", plan.Actions)
	}
	if plan.Summary.InSync != model.Len() {
		t.Errorf("expected all %d resources in sync, got %d", model.Len(), plan.Summary.InSync)
	}
}

func TestReconcileDryRunChangesNothing(t *testing.T) {
	host := newFakeHost()
	model := mustModel(t, []Entry{pkgEntry("git", PresencePresent)})
	reconciler := newTestReconciler(t, host, nil)

	report, err := reconciler.Reconcile(context.Background(), model, Options{DryRun: true})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(host.callLog()) != 0 {
		t.Fatalf("dry run issued backend calls: %v", host.callLog())
	}
	if len(report.Results) != 1 || report.Results[0].Reason != SkipReasonDryRun {
		t.Fatalf("expected one dry-run result, got %+v", report.Results)
	}

	// The host still diverges, so a later real plan shows the same work.
	plan, err := reconciler.Plan(context.Background(), model)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(plan.Actions) != 1 || plan.Actions[0].Op != OpInstall {
		t.Fatalf("expected the install to still be pending, got %v", plan.Actions)
	}
}

func TestReconcileRecordsRunHistory(t *testing.T) {
	host := newFakeHost()
	recorder := &recordingRecorder{}
	model := mustModel(t, []Entry{pkgEntry("git", PresencePresent)})

	reconciler := newTestReconciler(t, host, recorder)
	report, err := reconciler.Reconcile(context.Background(), model, Options{})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(recorder.reports) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(recorder.reports))
	}
	if recorder.reports[0].RunID != report.RunID {
		t.Errorf("recorded run %s, expected %s", recorder.reports[0].RunID, report.RunID)
	}
	if recorder.plans[0].ID != report.PlanID {
		t.Errorf("recorded plan %s, expected %s", recorder.plans[0].ID, report.PlanID)
	}
}

func TestReconcileToleratesRecorderFailure(t *testing.T) {
	host := newFakeHost()
	recorder := &recordingRecorder{err: errors.New("disk full")}
	model := mustModel(t, []Entry{pkgEntry("git", PresencePresent)})

	reconciler := newTestReconciler(t, host, recorder)
	report, err := reconciler.Reconcile(context.Background(), model, Options{})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if report.Status != RunComplete {
		t.Errorf("recorder failure leaked into run status: %s", report.Status)
	}
}

func TestReconcileFailureContainment(t *testing.T) {
	host := newFakeHost()
	host.occupied["/home/u/.bashrc"] = struct{}{}

	source := tempSource(t)
	model := mustModel(t, []Entry{
		pkgEntry("git", PresencePresent),
		linkEntry("/home/u/.bashrc", source),
		svcEntry("sshd", PresencePresent, true, false),
	})

	reconciler := newTestReconciler(t, host, nil)
	report, err := reconciler.Reconcile(context.Background(), model,
		Options{Mode: ModeBestEffort})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if report.Status != RunCompletedWithFailures {
		t.Fatalf("expected %s, got %s", RunCompletedWithFailures, report.Status)
	}

	// The conflict failed but everything else applied.
	applied, _, failed := report.Counts()
	if applied != 2 || failed != 1 {
		t.Fatalf("expected 2 applied and 1 failed, got %d/%d", applied, failed)
	}
	if _, ok := host.occupied["/home/u/.bashrc"]; !ok {
		t.Error("conflicting occupant was removed")
	}
}
