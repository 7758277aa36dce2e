package engine

// Diff computes the actions needed to move the host from the observed
// snapshot to the model's desired state. It is a pure function: no backend
// calls, fully deterministic in its inputs. Resources are processed in
// manifest declaration order, and each resource yields at most one action.
// Service units are the exception: their enabled and running flags are
// diffed independently and may yield one action each.
//
// An unknown observation is resolved in favor of convergence: the desired
// action is emitted and the backend call settles what the observer could
// not. The one exception is teardown of something the observer did not see
// at all; removing what is already absent is a no-op, not convergence.
func Diff(model *Model, snapshot Snapshot) []Action {
	var actions []Action
	for _, entry := range model.Entries() {
		observed, ok := snapshot[entry.ID]
		if !ok {
			observed = ObservedState{
				Presence: PresenceUnknown,
				Enabled:  FlagUnknown,
				Running:  FlagUnknown,
			}
		}
		switch entry.ID.Kind {
		case KindPackage:
			actions = append(actions, diffPackage(entry.ID, entry.Desired, observed)...)
		case KindLinkedFile:
			actions = append(actions, diffLink(entry.ID, entry.Desired, observed)...)
		case KindServiceUnit:
			actions = append(actions, diffService(entry.ID, entry.Desired, observed)...)
		}
	}
	return actions
}

func diffPackage(id ID, desired DesiredState, observed ObservedState) []Action {
	switch {
	case desired.Presence == PresencePresent && observed.Presence != PresencePresent:
		return []Action{{Op: OpInstall, Resource: id}}
	case desired.Presence == PresenceAbsent && observed.Presence == PresencePresent:
		return []Action{{Op: OpRemove, Resource: id}}
	default:
		return nil
	}
}

func diffLink(id ID, desired DesiredState, observed ObservedState) []Action {
	if desired.Presence == PresencePresent {
		// Anything other than a symlink already pointing at the wanted
		// source needs a create. A conflicting occupant also lands
		// here: the backend surfaces the conflict at apply time
		// without touching the occupant.
		if observed.Presence == PresencePresent && observed.LinkSource == desired.LinkSource {
			return nil
		}
		return []Action{{Op: OpCreateLink, Resource: id, Source: desired.LinkSource}}
	}
	// Desired absent: only an actual symlink is ours to remove.
	if observed.Presence == PresencePresent {
		return []Action{{Op: OpRemoveLink, Resource: id}}
	}
	return nil
}

func diffService(id ID, desired DesiredState, observed ObservedState) []Action {
	wantEnabled := desired.Presence == PresencePresent && desired.Enabled
	wantRunning := desired.Presence == PresencePresent && desired.Running

	enabledAct := diffServiceFlag(id, wantEnabled, observed.Enabled, observed.Presence,
		OpEnableService, OpDisableService)
	runningAct := diffServiceFlag(id, wantRunning, observed.Running, observed.Presence,
		OpStartService, OpStopService)

	// A unit being brought up is enabled before it is started; a unit
	// being torn down is stopped before it is disabled. The planner keeps
	// this emission order.
	var actions []Action
	if runningAct != nil && runningAct.Op == OpStopService {
		actions = append(actions, *runningAct)
		if enabledAct != nil {
			actions = append(actions, *enabledAct)
		}
		return actions
	}
	if enabledAct != nil {
		actions = append(actions, *enabledAct)
	}
	if runningAct != nil {
		actions = append(actions, *runningAct)
	}
	return actions
}

func diffServiceFlag(id ID, want bool, observed Flag, presence Presence, up, down Op) *Action {
	if want {
		if observed == FlagOn {
			return nil
		}
		// Off or unknown: converge upward.
		return &Action{Op: up, Resource: id}
	}
	if observed == FlagOff {
		return nil
	}
	if presence == PresenceAbsent {
		// Nothing to tear down on a unit the service manager does not
		// know about.
		return nil
	}
	return &Action{Op: down, Resource: id}
}
