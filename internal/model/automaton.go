package model

// Canonical synthetic state identifiers. Every automaton begins at
// StateInitialID and ends at StateCompletedID; the validator rejects
// automatons missing the initial state.
const (
	StateInitialID   = "state-initial"
	StateCompletedID = "state-completed"
)

// Position is a 2-D layout coordinate for rendering a state.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State is a single automaton state.
// Kind is always "default" for synthesized states; SourceAnchor and
// TargetAnchor are rendering hints carried through to consumers.
type State struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Position     Position `json:"position"`
	Kind         string   `json:"type"`
	SourceAnchor string   `json:"source_position"`
	TargetAnchor string   `json:"target_position"`
}

// Transition links two states of the same automaton.
//
// Dependencies is populated only on an automaton's first transition
// (initial → first step): the whole process is blocked until the listed
// automatons complete. No other transition ever carries dependencies.
type Transition struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	Label        string   `json:"label"`
	Marker       string   `json:"marker_end"`
	Conditions   []string `json:"conditions"`
	Dependencies []string `json:"automata_dependencies"`
}

// Automaton is the finite-state-machine form of one Process.
//
// States are ordered: synthetic initial state first, one state per step in
// step order, synthetic completed state last. Transitions connect them in a
// single linear chain. Derived exactly once from a Process plus its filtered
// dependency list; never mutated after creation.
type Automaton struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Active       bool         `json:"active"`
	States       []State      `json:"states"`
	Transitions  []Transition `json:"transitions"`
	Dependencies []string     `json:"automata_dependencies"`
}

// InitialState returns the canonical initial state, or nil if absent.
func (a *Automaton) InitialState() *State {
	for i := range a.States {
		if a.States[i].ID == StateInitialID {
			return &a.States[i]
		}
	}
	return nil
}

// StateIDs returns the set of state ids in this automaton.
func (a *Automaton) StateIDs() map[string]bool {
	ids := make(map[string]bool, len(a.States))
	for _, s := range a.States {
		ids[s.ID] = true
	}
	return ids
}
