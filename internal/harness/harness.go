package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/covenantlabs/covenant/internal/analyzer"
	"github.com/covenantlabs/covenant/internal/config"
	"github.com/covenantlabs/covenant/internal/detect"
	"github.com/covenantlabs/covenant/internal/model"
	"github.com/covenantlabs/covenant/internal/provider"
)

// Result captures one scenario run.
type Result struct {
	Scenario *Scenario
	Document *model.Document
	Err      error
}

// Run executes a scenario through the real pipeline with a scripted
// provider. A pipeline failure is captured in the result, not returned;
// the returned error reports harness-level problems only.
func Run(scenario *Scenario) (*Result, error) {
	cfg := config.Default()
	if scenario.MaxSteps > 0 {
		cfg.Analysis.MaxSteps = scenario.MaxSteps
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := analyzer.New(provider.NewScripted(scenario.Responses...), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	doc, runErr := a.Analyze(context.Background(), scenario.Name, scenario.Contract, detect.Options{})
	return &Result{Scenario: scenario, Document: doc, Err: runErr}, nil
}

// Verify evaluates the scenario's expectations against the run and
// returns every mismatch found, empty when the run conforms.
func (r *Result) Verify() []string {
	var problems []string
	expect := r.Scenario.Expect

	if expect.Error != "" {
		if r.Err == nil {
			problems = append(problems, fmt.Sprintf("expected failure containing %q, run succeeded", expect.Error))
		} else if !strings.Contains(r.Err.Error(), expect.Error) {
			problems = append(problems, fmt.Sprintf("expected error containing %q, got %q", expect.Error, r.Err))
		}
		return problems
	}

	if r.Err != nil {
		return append(problems, fmt.Sprintf("unexpected failure: %v", r.Err))
	}

	doc := r.Document
	if expect.Processes > 0 && len(doc.Analysis.Processes) != expect.Processes {
		problems = append(problems, fmt.Sprintf("expected %d processes, got %d",
			expect.Processes, len(doc.Analysis.Processes)))
	}

	for i, want := range expect.Automatons {
		if i >= len(doc.Contract.Automatons) {
			problems = append(problems, fmt.Sprintf("expected automaton %s at position %d, contract has %d",
				want.ID, i, len(doc.Contract.Automatons)))
			continue
		}
		got := doc.Contract.Automatons[i]
		if got.ID != want.ID {
			problems = append(problems, fmt.Sprintf("automaton[%d]: expected id %s, got %s", i, want.ID, got.ID))
		}
		if want.States > 0 && len(got.States) != want.States {
			problems = append(problems, fmt.Sprintf("automaton %s: expected %d states, got %d",
				want.ID, want.States, len(got.States)))
		}
		if want.Dependencies != nil && !sameStrings(got.Dependencies, want.Dependencies) {
			problems = append(problems, fmt.Sprintf("automaton %s: expected dependencies %v, got %v",
				want.ID, want.Dependencies, got.Dependencies))
		}
	}

	if expect.Dependencies != nil && !sameDependencyMaps(doc.Dependencies, expect.Dependencies) {
		problems = append(problems, fmt.Sprintf("expected dependencies %v, got %v",
			expect.Dependencies, doc.Dependencies))
	}

	if expect.MinConfidence > 0 && doc.Analysis.Confidence < expect.MinConfidence {
		problems = append(problems, fmt.Sprintf("expected confidence >= %.2f, got %.2f",
			expect.MinConfidence, doc.Analysis.Confidence))
	}

	return problems
}

// sameStrings compares two lists ignoring nil/empty distinction.
func sameStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	g := append([]string(nil), got...)
	w := append([]string(nil), want...)
	sort.Strings(g)
	sort.Strings(w)
	return reflect.DeepEqual(g, w)
}

func sameDependencyMaps(got, want map[string][]string) bool {
	if len(got) != len(want) {
		return false
	}
	for id, deps := range want {
		gotDeps, ok := got[id]
		if !ok || !sameStrings(gotDeps, deps) {
			return false
		}
	}
	return true
}
