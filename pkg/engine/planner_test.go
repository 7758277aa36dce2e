package engine

import (
	"reflect"
	"testing"
)

func action(op Op, kind Kind, name string) Action {
	return Action{Op: op, Resource: ID{Kind: kind, Name: name}}
}

func TestBuildPlanTeardownPhasePrecedesApply(t *testing.T) {
	// Differ emission order: manifest declaration order, mixed directions.
	actions := []Action{
		action(OpInstall, KindPackage, "git"),
		action(OpStopService, KindServiceUnit, "foo-svc"),
		action(OpDisableService, KindServiceUnit, "foo-svc"),
		action(OpRemove, KindPackage, "foo"),
		action(OpCreateLink, KindLinkedFile, "/home/u/.gitconfig"),
		action(OpRemoveLink, KindLinkedFile, "/home/u/.foorc"),
		action(OpEnableService, KindServiceUnit, "sshd"),
		action(OpStartService, KindServiceUnit, "sshd"),
	}

	plan, err := NewPlanner().BuildPlan(actions, 8)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	want := []Op{
		// Teardown in mirror kind order: services, files, packages.
		OpStopService, OpDisableService, OpRemoveLink, OpRemove,
		// Apply in kind order: packages, files, services.
		OpInstall, OpCreateLink, OpEnableService, OpStartService,
	}
	if !reflect.DeepEqual(ops(plan.Actions), want) {
		t.Fatalf("expected op order %v, got %v", want, ops(plan.Actions))
	}
}

func TestBuildPlanKeepsEmissionOrderWithinKind(t *testing.T) {
	actions := []Action{
		action(OpInstall, KindPackage, "alpha"),
		action(OpInstall, KindPackage, "beta"),
		action(OpInstall, KindPackage, "gamma"),
		action(OpRemove, KindPackage, "one"),
		action(OpRemove, KindPackage, "two"),
	}

	plan, err := NewPlanner().BuildPlan(actions, 5)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	var names []string
	for _, a := range plan.Actions {
		names = append(names, a.Resource.Name)
	}
	want := []string{"one", "two", "alpha", "beta", "gamma"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected order %v, got %v", want, names)
	}
}

func TestBuildPlanStopBeforeDisableSurvivesOrdering(t *testing.T) {
	actions := []Action{
		action(OpStopService, KindServiceUnit, "foo-svc"),
		action(OpDisableService, KindServiceUnit, "foo-svc"),
	}

	plan, err := NewPlanner().BuildPlan(actions, 1)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	want := []Op{OpStopService, OpDisableService}
	if !reflect.DeepEqual(ops(plan.Actions), want) {
		t.Fatalf("expected %v, got %v", want, ops(plan.Actions))
	}
}

func TestBuildPlanSummary(t *testing.T) {
	actions := []Action{
		action(OpInstall, KindPackage, "git"),
		action(OpEnableService, KindServiceUnit, "sshd"),
		action(OpStartService, KindServiceUnit, "sshd"),
		action(OpRemove, KindPackage, "foo"),
	}

	plan, err := NewPlanner().BuildPlan(actions, 5)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	// sshd has two actions but is one resource.
	want := PlanSummary{Total: 5, ToApply: 3, ToTeardown: 1, InSync: 2}
	if plan.Summary != want {
		t.Fatalf("expected summary %+v, got %+v", want, plan.Summary)
	}
}

func TestBuildPlanEmpty(t *testing.T) {
	plan, err := NewPlanner().BuildPlan(nil, 3)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	if !plan.Empty() {
		t.Fatal("expected empty plan")
	}
	if plan.Summary.InSync != 3 {
		t.Errorf("expected 3 in sync, got %d", plan.Summary.InSync)
	}
	if plan.ID == "" {
		t.Error("expected a plan ID even for empty plans")
	}
}

func TestBuildPlanDeterministicOrder(t *testing.T) {
	actions := []Action{
		action(OpStopService, KindServiceUnit, "a"),
		action(OpRemove, KindPackage, "b"),
		action(OpInstall, KindPackage, "c"),
		action(OpCreateLink, KindLinkedFile, "/d"),
		action(OpRemoveLink, KindLinkedFile, "/e"),
		action(OpEnableService, KindServiceUnit, "f"),
	}

	planner := NewPlanner()
	first, err := planner.BuildPlan(actions, 6)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := planner.BuildPlan(actions, 6)
		if err != nil {
			t.Fatalf("BuildPlan failed: %v", err)
		}
		if !reflect.DeepEqual(again.Actions, first.Actions) {
			t.Fatal("plan order changed between identical inputs")
		}
	}
}

func TestKindOrder(t *testing.T) {
	order, err := kindOrder()
	if err != nil {
		t.Fatalf("kindOrder failed: %v", err)
	}
	want := []Kind{KindPackage, KindLinkedFile, KindServiceUnit}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

func TestKindOrderDetectsCycle(t *testing.T) {
	saved := kindRequires
	defer func() { kindRequires = saved }()

	kindRequires = map[Kind][]Kind{
		KindPackage:     {KindServiceUnit},
		KindLinkedFile:  {KindPackage},
		KindServiceUnit: {KindLinkedFile},
	}

	_, err := kindOrder()
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !IsCyclicDependency(err) {
		t.Errorf("expected cyclic dependency kind, got %v", err)
	}
}
