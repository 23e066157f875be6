package harness

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/covenantlabs/covenant/internal/model"
)

// ContractSnapshot is the deterministic view of a scenario run used for
// golden comparison. The run id and creation timestamp are cleared before
// snapshotting; everything else in the pipeline is deterministic.
type ContractSnapshot struct {
	Contract     model.Contract      `json:"contract"`
	Dependencies map[string][]string `json:"dependencies"`
}

// RunWithGolden executes a scenario and compares its synthesized contract
// against the golden file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if result.Err != nil {
		return fmt.Errorf("scenario %s: %w", scenario.Name, result.Err)
	}

	snapshot := ContractSnapshot{
		Contract:     result.Document.Contract,
		Dependencies: result.Document.Dependencies,
	}
	snapshot.Contract.CreatedAt = time.Time{}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, payload)

	return nil
}
