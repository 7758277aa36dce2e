package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// kindRequires is the precedence partial order between kinds: a kind lists
// the kinds it may assume are already in place. Files may assume packages
// exist; services may assume both files and packages exist.
var kindRequires = map[Kind][]Kind{
	KindPackage:     nil,
	KindLinkedFile:  {KindPackage},
	KindServiceUnit: {KindPackage, KindLinkedFile},
}

// Planner orders the differ's actions into a single executable plan.
//
// Apply-direction actions run in kind precedence order (packages, then
// files, then services). Teardown actions run in the mirror order, consumers
// before producers, and the whole teardown phase precedes the apply phase:
// a service is stopped and disabled before its backing package is removed,
// and a package is never removed while a dependent service is still up.
// Within one direction and kind, differ emission order is preserved, which
// makes the plan deterministic for a fixed model and snapshot.
type Planner struct {
	now func() time.Time
}

// NewPlanner creates a planner.
func NewPlanner() *Planner {
	return &Planner{now: time.Now}
}

// BuildPlan orders the given actions into a plan. The total parameter is the
// number of resources the differ considered, used for the summary. It
// returns an ErrCyclicDependency error if the kind precedence graph contains
// a cycle; with the three built-in kinds the graph is acyclic by
// construction.
func (p *Planner) BuildPlan(actions []Action, total int) (*Plan, error) {
	order, err := kindOrder()
	if err != nil {
		return nil, err
	}

	applyRank := make(map[Kind]int, len(order))
	for i, kind := range order {
		applyRank[kind] = i
	}

	// rank is the total-order key: teardown actions first in mirror kind
	// order, then apply actions in kind order. SliceStable keeps differ
	// emission order within equal ranks.
	rank := func(a Action) int {
		if a.Op.IsTeardown() {
			return len(order) - 1 - applyRank[a.Resource.Kind]
		}
		return len(order) + applyRank[a.Resource.Kind]
	}

	ordered := make([]Action, len(actions))
	copy(ordered, actions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(ordered[i]) < rank(ordered[j])
	})

	plan := &Plan{
		ID:        uuid.New().String(),
		CreatedAt: p.now(),
		Actions:   ordered,
		Summary:   summarize(ordered, total),
	}
	return plan, nil
}

func summarize(actions []Action, total int) PlanSummary {
	summary := PlanSummary{Total: total}
	changed := make(map[ID]struct{})
	for _, action := range actions {
		changed[action.Resource] = struct{}{}
		if action.Op.IsTeardown() {
			summary.ToTeardown++
		} else {
			summary.ToApply++
		}
	}
	summary.InSync = total - len(changed)
	return summary
}

// kindOrder topologically sorts the kind precedence graph using Kahn's
// algorithm, producing the apply-direction kind order. Ties are broken by
// kind name so the order is stable.
func kindOrder() ([]Kind, error) {
	inDegree := make(map[Kind]int, len(kindRequires))
	dependents := make(map[Kind][]Kind, len(kindRequires))
	for kind := range kindRequires {
		inDegree[kind] = 0
	}
	for kind, requires := range kindRequires {
		for _, dep := range requires {
			dependents[dep] = append(dependents[dep], kind)
			inDegree[kind]++
		}
	}

	var frontier []Kind
	for kind, degree := range inDegree {
		if degree == 0 {
			frontier = append(frontier, kind)
		}
	}

	order := make([]Kind, 0, len(kindRequires))
	for len(frontier) > 0 {
		sort.Slice(frontier, func(i, j int) bool { return frontier[i] < frontier[j] })
		next := frontier[0]
		frontier = frontier[1:]
		order = append(order, next)
		for _, dependent := range dependents[next] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				frontier = append(frontier, dependent)
			}
		}
	}

	if len(order) != len(kindRequires) {
		return nil, NewError(ErrCyclicDependency,
			fmt.Sprintf("kind precedence graph has a cycle among %d kinds", len(kindRequires)-len(order)),
			nil)
	}
	return order, nil
}
