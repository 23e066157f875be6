// Package validate checks structural invariants over assembled contracts.
//
// Rules are free functions returning violation lists, decoupled from the
// entity definitions in internal/model so each rule can be tested on its
// own. Validation never stops at the first failure: every violation found
// is reported, letting a caller surface all problems at once instead of
// iterating fixes one at a time.
package validate

import (
	"fmt"
	"strings"

	"github.com/covenantlabs/covenant/internal/graph"
	"github.com/covenantlabs/covenant/internal/model"
)

// Contract validation error codes (E200-E299).
const (
	ErrAutomatonNoStates     = "E201" // automaton has no states
	ErrAutomatonNoInitial    = "E202" // canonical initial state missing
	ErrTransitionBadSource   = "E203" // transition source not in the automaton's state set
	ErrTransitionBadTarget   = "E204" // transition target not in the automaton's state set
	ErrDanglingDependency    = "E205" // dependency id resolves to no automaton
	ErrDependencyCycle       = "E206" // contract-level dependency graph has a cycle
	ErrDuplicateStateID      = "E207" // state id appears more than once in an automaton
)

// Violation is one failed contract invariant.
type Violation struct {
	Code      string `json:"code"`
	Automaton string `json:"automaton,omitempty"`
	Message   string `json:"message"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	if v.Automaton != "" {
		return fmt.Sprintf("[%s] automaton %s: %s", v.Code, v.Automaton, v.Message)
	}
	return fmt.Sprintf("[%s] %s", v.Code, v.Message)
}

// AggregateError carries every violation found in one validation pass.
type AggregateError struct {
	Violations []Violation
}

func (e *AggregateError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("contract validation failed with %d violation(s): %s",
		len(e.Violations), strings.Join(msgs, "; "))
}

// Contract runs every invariant check over the assembled contract and
// returns all violations found. An empty result means the contract is valid.
func Contract(c *model.Contract) []Violation {
	var violations []Violation

	automatonIDs := make(map[string]bool, len(c.Automatons))
	for _, a := range c.Automatons {
		automatonIDs[a.ID] = true
	}

	for i := range c.Automatons {
		violations = append(violations, automatonStructure(&c.Automatons[i])...)
		violations = append(violations, dependencyResolution(&c.Automatons[i], automatonIDs)...)
	}

	violations = append(violations, dependencyAcyclicity(c)...)

	return violations
}

// AsError wraps a non-empty violation list in an AggregateError, or returns
// nil for a valid contract.
func AsError(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return &AggregateError{Violations: violations}
}

// automatonStructure checks per-automaton invariants: at least one state,
// the canonical initial state present, state ids unique, and every
// transition endpoint resolving inside the automaton's own state set.
func automatonStructure(a *model.Automaton) []Violation {
	var violations []Violation

	if len(a.States) == 0 {
		violations = append(violations, Violation{
			Code:      ErrAutomatonNoStates,
			Automaton: a.ID,
			Message:   "must have at least one state",
		})
	}

	if a.InitialState() == nil {
		violations = append(violations, Violation{
			Code:      ErrAutomatonNoInitial,
			Automaton: a.ID,
			Message:   fmt.Sprintf("missing canonical initial state %q", model.StateInitialID),
		})
	}

	// State ids must be unique; a repeated id makes transition endpoints
	// ambiguous and can shadow the canonical initial state.
	seen := make(map[string]bool, len(a.States))
	for _, st := range a.States {
		if seen[st.ID] {
			violations = append(violations, Violation{
				Code:      ErrDuplicateStateID,
				Automaton: a.ID,
				Message:   fmt.Sprintf("state id %q appears more than once", st.ID),
			})
		}
		seen[st.ID] = true
	}

	stateIDs := a.StateIDs()
	for _, tr := range a.Transitions {
		if !stateIDs[tr.Source] {
			violations = append(violations, Violation{
				Code:      ErrTransitionBadSource,
				Automaton: a.ID,
				Message:   fmt.Sprintf("transition %s references unknown source state %q", tr.ID, tr.Source),
			})
		}
		if !stateIDs[tr.Target] {
			violations = append(violations, Violation{
				Code:      ErrTransitionBadTarget,
				Automaton: a.ID,
				Message:   fmt.Sprintf("transition %s references unknown target state %q", tr.ID, tr.Target),
			})
		}
	}

	return violations
}

// dependencyResolution checks that every dependency id referenced by the
// automaton, including the copies embedded in transition metadata, resolves
// to a real automaton of the same contract.
func dependencyResolution(a *model.Automaton, automatonIDs map[string]bool) []Violation {
	var violations []Violation

	check := func(dep, where string) {
		if !automatonIDs[dep] {
			violations = append(violations, Violation{
				Code:      ErrDanglingDependency,
				Automaton: a.ID,
				Message:   fmt.Sprintf("%s references unknown automaton %q", where, dep),
			})
		}
	}

	for _, dep := range a.Dependencies {
		check(dep, "dependency list")
	}
	for _, tr := range a.Transitions {
		for _, dep := range tr.Dependencies {
			check(dep, fmt.Sprintf("transition %s", tr.ID))
		}
	}

	return violations
}

// dependencyAcyclicity checks the contract-level automaton dependency graph
// with the same detection routine the eliminator uses.
func dependencyAcyclicity(c *model.Contract) []Violation {
	g := graph.Graph(c.DependencyGraph())
	if !graph.HasCycle(g) {
		return nil
	}

	var violations []Violation
	for _, cycle := range graph.FindCycles(g) {
		violations = append(violations, Violation{
			Code:    ErrDependencyCycle,
			Message: fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")),
		})
	}
	if len(violations) == 0 {
		// FindCycles is best-effort; HasCycle is authoritative.
		violations = append(violations, Violation{
			Code:    ErrDependencyCycle,
			Message: "dependency graph contains a cycle",
		})
	}
	return violations
}
