package engine

import (
	"fmt"
	"time"
)

// Op is the operation an action performs against a backend. Each op maps to
// exactly one backend call, which either fully succeeds or fully fails.
type Op string

const (
	// OpInstall installs a package.
	OpInstall Op = "install"

	// OpRemove removes a package.
	OpRemove Op = "remove"

	// OpCreateLink creates (or retargets) a symlink.
	OpCreateLink Op = "create_link"

	// OpRemoveLink removes a symlink.
	OpRemoveLink Op = "remove_link"

	// OpEnableService enables a service unit at boot.
	OpEnableService Op = "enable_service"

	// OpDisableService disables a service unit at boot.
	OpDisableService Op = "disable_service"

	// OpStartService starts a service unit.
	OpStartService Op = "start_service"

	// OpStopService stops a service unit.
	OpStopService Op = "stop_service"
)

// Validate checks that the op is one of the known operations.
func (o Op) Validate() error {
	switch o {
	case OpInstall, OpRemove, OpCreateLink, OpRemoveLink,
		OpEnableService, OpDisableService, OpStartService, OpStopService:
		return nil
	default:
		return fmt.Errorf("invalid op: %s", o)
	}
}

// IsTeardown reports whether the op tears host state down. Teardown actions
// are ordered consumers-first, the mirror image of the apply order.
func (o Op) IsTeardown() bool {
	switch o {
	case OpRemove, OpRemoveLink, OpDisableService, OpStopService:
		return true
	default:
		return false
	}
}

// Action is one atomic change to apply to the host.
type Action struct {
	// Op is the backend operation to perform.
	Op Op `json:"op"`

	// Resource is the resource the action targets.
	Resource ID `json:"resource"`

	// Source is the symlink source path, set only for OpCreateLink.
	Source string `json:"source,omitempty"`
}

// String renders the action for logs and plan output.
func (a Action) String() string {
	if a.Op == OpCreateLink {
		return fmt.Sprintf("%s %s -> %s", a.Op, a.Resource.Name, a.Source)
	}
	return fmt.Sprintf("%s %s", a.Op, a.Resource.Name)
}

// Plan is the ordered action sequence for one reconciliation run. The order
// is total and consistent with the kind precedence partial order; executing
// the actions front to back never touches a resource whose dependencies come
// later.
type Plan struct {
	// ID is the unique identifier of this plan.
	ID string `json:"id"`

	// CreatedAt is when the plan was computed.
	CreatedAt time.Time `json:"created_at"`

	// Actions is the ordered action sequence.
	Actions []Action `json:"actions"`

	// Summary counts the planned work by direction.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides statistics about a plan.
type PlanSummary struct {
	// Total is the number of resources considered.
	Total int `json:"total"`

	// ToApply is the number of build-up actions (install, link, enable,
	// start).
	ToApply int `json:"to_apply"`

	// ToTeardown is the number of teardown actions (stop, disable,
	// unlink, remove).
	ToTeardown int `json:"to_teardown"`

	// InSync is the number of resources already matching their desired
	// state.
	InSync int `json:"in_sync"`
}

// Empty reports whether the plan contains no actions, i.e. the host already
// matches the manifest.
func (p *Plan) Empty() bool {
	return len(p.Actions) == 0
}
