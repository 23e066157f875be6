package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestScenarios(t *testing.T) {
	names := []string{
		"logistique-simple",
		"cycle-mutuel",
		"etapes-excedentaires",
		"reponse-vide",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			scenario := loadTestScenario(t, name)

			result, err := Run(scenario)
			require.NoError(t, err)

			assert.Empty(t, result.Verify())
		})
	}
}

func TestGoldenContract(t *testing.T) {
	scenario := loadTestScenario(t, "logistique-simple")
	require.NoError(t, RunWithGolden(t, scenario))
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	writeScenarioFile(t, path, `
name: typo
description: has a typo
contract: texte
responses:
  - "[]"
expectations:
  processes: 1
`)
	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenarioRequiresExpectations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	writeScenarioFile(t, path, `
name: vide
description: no expectations
contract: texte
responses:
  - "[]"
expect: {}
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one outcome")
}

func TestLoadScenarioErrorExcludesSuccessExpectations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conflict.yaml")
	writeScenarioFile(t, path, `
name: conflit
description: conflicting expectations
contract: texte
responses:
  - "[]"
expect:
  error: boom
  processes: 2
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "excludes success")
}

func TestVerifyReportsMismatch(t *testing.T) {
	scenario := loadTestScenario(t, "logistique-simple")
	scenario.Expect.Processes = 5

	result, err := Run(scenario)
	require.NoError(t, err)

	problems := result.Verify()
	require.NotEmpty(t, problems)
	assert.Contains(t, problems[0], "expected 5 processes")
}
