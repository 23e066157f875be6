package automaton

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenantlabs/covenant/internal/ident"
	"github.com/covenantlabs/covenant/internal/model"
)

func newSynth() *Synthesizer {
	return New(ident.New(ident.DefaultMaxLength))
}

func TestSynthesize_LinearTopology(t *testing.T) {
	process := model.Process{
		ID:    "01",
		Name:  "Reception",
		Steps: []string{"check", "sign"},
	}

	a := newSynth().Synthesize(process, nil)

	require.Len(t, a.States, 4, "n steps yield n+2 states")
	require.Len(t, a.Transitions, 3, "n steps yield n+1 transitions")

	assert.Equal(t, model.StateInitialID, a.States[0].ID)
	assert.Equal(t, "state-check", a.States[1].ID)
	assert.Equal(t, "state-sign", a.States[2].ID)
	assert.Equal(t, model.StateCompletedID, a.States[3].ID)

	// Transition i links state i to state i+1.
	for i, tr := range a.Transitions {
		assert.Equal(t, a.States[i].ID, tr.Source)
		assert.Equal(t, a.States[i+1].ID, tr.Target)
	}
}

// TestSynthesize_StateCounts tests n+2/n+1 across step counts up to the bound.
func TestSynthesize_StateCounts(t *testing.T) {
	s := newSynth()

	for n := 1; n <= 10; n++ {
		steps := make([]string, n)
		for i := range steps {
			steps[i] = fmt.Sprintf("step %d", i+1)
		}
		a := s.Synthesize(model.Process{ID: "p", Name: "P", Steps: steps}, nil)

		assert.Len(t, a.States, n+2, "n=%d", n)
		assert.Len(t, a.Transitions, n+1, "n=%d", n)
	}
}

func TestSynthesize_DependenciesOnlyOnFirstTransition(t *testing.T) {
	process := model.Process{
		ID:    "02",
		Name:  "Payment",
		Steps: []string{"invoice", "collect"},
	}

	a := newSynth().Synthesize(process, []string{"01"})

	require.Len(t, a.Transitions, 3)
	assert.Equal(t, []string{"01"}, a.Transitions[0].Dependencies)
	for _, tr := range a.Transitions[1:] {
		assert.Empty(t, tr.Dependencies, "only the first transition carries dependencies")
	}
	assert.Equal(t, []string{"01"}, a.Dependencies)
}

func TestSynthesize_SanitizesIdentifiers(t *testing.T) {
	process := model.Process{
		ID:    "Processus Réception",
		Name:  "Réception",
		Steps: []string{"contrôle_qualité"},
	}

	a := newSynth().Synthesize(process, []string{"Processus Paiement"})

	assert.Equal(t, "processus-reception", a.ID)
	assert.Equal(t, "state-controle-qualite", a.States[1].ID)
	assert.Equal(t, []string{"processus-paiement"}, a.Dependencies)
	assert.Equal(t, "Contrôle Qualité", a.States[1].Label)
}

// TestSynthesize_DuplicateStepLabels tests the disambiguation policy:
// repeated labels get positional suffixes so state ids stay unique and the
// transition chain stays resolvable.
func TestSynthesize_DuplicateStepLabels(t *testing.T) {
	process := model.Process{
		ID:    "03",
		Name:  "Inspection",
		Steps: []string{"inspect", "inspect", "inspect"},
	}

	a := newSynth().Synthesize(process, nil)

	assert.Equal(t, "state-inspect", a.States[1].ID)
	assert.Equal(t, "state-inspect-2", a.States[2].ID)
	assert.Equal(t, "state-inspect-3", a.States[3].ID)

	seen := make(map[string]bool)
	for _, st := range a.States {
		assert.False(t, seen[st.ID], "duplicate state id %s", st.ID)
		seen[st.ID] = true
	}

	// Transitions reference the suffixed ids, not the colliding base.
	assert.Equal(t, "state-inspect", a.Transitions[1].Source)
	assert.Equal(t, "state-inspect-2", a.Transitions[1].Target)
}

// TestSynthesize_ReservedEndpointLabels tests that the synthetic endpoint
// ids cannot be forged from step labels: a step named like an endpoint is
// suffixed, leaving exactly one initial and one completed state.
func TestSynthesize_ReservedEndpointLabels(t *testing.T) {
	process := model.Process{
		ID:    "01",
		Name:  "Edge case",
		Steps: []string{"initial", "suite", "completed"},
	}

	a := newSynth().Synthesize(process, nil)

	assert.Equal(t, "state-initial-2", a.States[1].ID)
	assert.Equal(t, "state-suite", a.States[2].ID)
	assert.Equal(t, "state-completed-2", a.States[3].ID)

	counts := make(map[string]int)
	for _, st := range a.States {
		counts[st.ID]++
	}
	assert.Equal(t, 1, counts[model.StateInitialID])
	assert.Equal(t, 1, counts[model.StateCompletedID])

	// The chain still references the suffixed ids.
	assert.Equal(t, model.StateInitialID, a.Transitions[0].Source)
	assert.Equal(t, "state-initial-2", a.Transitions[0].Target)
	assert.Equal(t, "state-completed-2", a.Transitions[3].Source)
	assert.Equal(t, model.StateCompletedID, a.Transitions[3].Target)
}

func TestSynthesize_TransitionShape(t *testing.T) {
	process := model.Process{ID: "01", Name: "Reception", Steps: []string{"check goods"}}

	a := newSynth().Synthesize(process, nil)

	first := a.Transitions[0]
	assert.Equal(t, "edge-initial-to-check-goods", first.ID)
	assert.Equal(t, "initial_to_check_goods", first.Label)
	assert.Equal(t, "arrowclosed", first.Marker)
	assert.NotNil(t, first.Conditions)

	last := a.Transitions[len(a.Transitions)-1]
	assert.Equal(t, "edge-check-goods-to-completed", last.ID)
	assert.Equal(t, model.StateCompletedID, last.Target)
}

func TestSynthesize_Layout(t *testing.T) {
	process := model.Process{ID: "01", Name: "P", Steps: []string{"a", "b"}}

	a := newSynth().Synthesize(process, nil)

	assert.Equal(t, model.Position{X: 80, Y: 80}, a.States[0].Position)
	assert.Equal(t, model.Position{X: 80, Y: 180}, a.States[1].Position)
	assert.Equal(t, model.Position{X: 80, Y: 280}, a.States[2].Position)
	assert.Equal(t, model.Position{X: 320, Y: 380}, a.States[3].Position)
}

func TestSynthesize_Deterministic(t *testing.T) {
	process := model.Process{ID: "07", Name: "Contrôle", Steps: []string{"étape une", "étape deux"}}
	deps := []string{"01", "02"}

	s := newSynth()
	first := s.Synthesize(process, deps)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Synthesize(process, deps))
	}
}
