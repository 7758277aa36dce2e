// Package engine implements the reconciliation core of hearth: it diffs the
// desired state of a single host (packages, linked files, service units)
// against the observed state, orders the resulting actions into an executable
// plan, and applies that plan through the backend interfaces.
//
// One reconciliation run is the pipeline
//
//	Model -> Observe -> Diff -> Plan -> Execute -> Report
//
// The desired-state Model is built once per run from the manifest. The
// observer takes a single read-only snapshot of the host before planning, so
// the plan is always computed against one consistent view. The differ and
// planner are pure: given the same model and snapshot they produce the same
// plan, independent of prior runs. The executor is the only component that
// mutates the host, strictly one action at a time in plan order.
//
// Ordering is the engine's central guarantee. Actions that build state up
// (install, link, enable, start) run in kind order Package, LinkedFile,
// ServiceUnit: files may assume their packages exist, services may assume
// their files and packages exist. Actions that tear state down (stop,
// disable, unlink, remove) run in the mirror order, consumers before
// producers, and the whole teardown phase runs before the apply phase. A
// service is therefore always stopped and disabled before its backing
// package is removed.
//
// Failure containment is per layer: manifest validation errors abort a run
// before any backend call; observation failures downgrade single resources
// to an unknown state; action failures are recorded per action and either
// abort the remainder of the plan (FailFast) or let it continue
// (BestEffort). A dry run exercises the full pipeline and records the plan
// without invoking any mutating backend call.
package engine
