// Package automaton synthesizes a linear finite-state automaton from each
// validated business process.
//
// Topology is fixed: one synthetic initial state, one state per step in
// step order, one synthetic completed state; transitions chain them so a
// process with n steps always yields n+2 states and n+1 transitions. The
// process dependency list is attached only to the first transition,
// modeling "the whole process is blocked until these other processes
// complete".
package automaton

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/covenantlabs/covenant/internal/ident"
	"github.com/covenantlabs/covenant/internal/model"
)

// Layout constants for the generated state grid. Consumers render the
// automaton top-to-bottom with the completed state offset to the right.
const (
	layoutLeftX   = 80.0
	layoutRightX  = 320.0
	layoutTopY    = 80.0
	layoutStepY0  = 180.0
	layoutStepGap = 100.0
)

const stateKindDefault = "default"

const transitionMarker = "arrowclosed"

// Synthesizer builds automatons. All identifiers it mints go through the
// same sanitizer so ids computed independently from the same text agree.
type Synthesizer struct {
	sanitizer *ident.Sanitizer
}

// New returns a Synthesizer minting ids through sanitizer.
func New(sanitizer *ident.Sanitizer) *Synthesizer {
	return &Synthesizer{sanitizer: sanitizer}
}

// Synthesize derives the automaton for one process and its (already
// filtered) dependency list. The process is assumed valid: the record
// builder guarantees at least one step, so the chain is never degenerate.
//
// Duplicate step labels are disambiguated with positional suffixes through
// a per-automaton registry; the raw label is preserved in the state's
// display label.
func (s *Synthesizer) Synthesize(process model.Process, dependencies []string) model.Automaton {
	// Step ids are minted from the unprefixed base, so the synthetic
	// endpoints are reserved by base as well. A step labeled "initial" or
	// "completed" then collides and gets a suffix instead of forging a
	// second canonical state.
	registry := ident.NewRegistry(s.sanitizer)
	registry.Reserve(stripStatePrefix(model.StateInitialID))
	registry.Reserve(stripStatePrefix(model.StateCompletedID))

	stepIDs := make([]string, len(process.Steps))
	for i, step := range process.Steps {
		stepIDs[i] = "state-" + registry.MintStep(step)
	}

	sanitizedDeps := make([]string, len(dependencies))
	for i, dep := range dependencies {
		sanitizedDeps[i] = s.sanitizer.Sanitize(dep)
	}

	return model.Automaton{
		ID:           s.sanitizer.Sanitize(process.ID),
		Name:         process.Name,
		Active:       false,
		States:       s.states(process.Steps, stepIDs),
		Transitions:  s.transitions(stepIDs, sanitizedDeps),
		Dependencies: sanitizedDeps,
	}
}

// states emits the ordered state sequence: initial, one per step, completed.
func (s *Synthesizer) states(steps []string, stepIDs []string) []model.State {
	states := make([]model.State, 0, len(steps)+2)

	states = append(states, model.State{
		ID:           model.StateInitialID,
		Label:        "INITIAL",
		Position:     model.Position{X: layoutLeftX, Y: layoutTopY},
		Kind:         stateKindDefault,
		SourceAnchor: "bottom",
		TargetAnchor: "top",
	})

	for i, step := range steps {
		states = append(states, model.State{
			ID:           stepIDs[i],
			Label:        stepLabel(step),
			Position:     model.Position{X: layoutLeftX, Y: layoutStepY0 + float64(i)*layoutStepGap},
			Kind:         stateKindDefault,
			SourceAnchor: "bottom",
			TargetAnchor: "top",
		})
	}

	states = append(states, model.State{
		ID:           model.StateCompletedID,
		Label:        "COMPLETED",
		Position:     model.Position{X: layoutRightX, Y: layoutStepY0 + float64(len(steps))*layoutStepGap},
		Kind:         stateKindDefault,
		SourceAnchor: "bottom",
		TargetAnchor: "top",
	})

	return states
}

// transitions chains the states: initial→step₁, stepᵢ→stepᵢ₊₁, last→completed.
// Only the first transition carries the dependency list.
func (s *Synthesizer) transitions(stepIDs []string, dependencies []string) []model.Transition {
	transitions := make([]model.Transition, 0, len(stepIDs)+1)

	chain := make([]string, 0, len(stepIDs)+2)
	chain = append(chain, model.StateInitialID)
	chain = append(chain, stepIDs...)
	chain = append(chain, model.StateCompletedID)

	for i := 0; i < len(chain)-1; i++ {
		source, target := chain[i], chain[i+1]

		t := model.Transition{
			ID:           fmt.Sprintf("edge-%s-to-%s", stripStatePrefix(source), stripStatePrefix(target)),
			Source:       source,
			Target:       target,
			Label:        transitionLabel(source, target),
			Marker:       transitionMarker,
			Conditions:   []string{},
			Dependencies: []string{},
		}
		if i == 0 {
			t.Dependencies = dependencies
		}
		transitions = append(transitions, t)
	}

	return transitions
}

// stepLabel renders a step for display: underscores become spaces and each
// word is capitalized.
func stepLabel(step string) string {
	words := strings.Fields(strings.ReplaceAll(step, "_", " "))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// transitionLabel renders "source_to_target" with hyphens folded to
// underscores, matching the document shape consumers expect.
func transitionLabel(source, target string) string {
	from := strings.ReplaceAll(stripStatePrefix(source), "-", "_")
	to := strings.ReplaceAll(stripStatePrefix(target), "-", "_")
	return from + "_to_" + to
}

func stripStatePrefix(id string) string {
	return strings.TrimPrefix(id, "state-")
}
