package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenantlabs/covenant/internal/model"
)

const detectionResponse = `[
  {
    "id": "01",
    "name": "Réception des marchandises",
    "description": "Réception et contrôle des livraisons",
    "steps": ["reception", "controle", "stockage"],
    "responsible_party": "Logisticien",
    "triggers": "Arrivée d'une livraison"
  },
  {
    "id": "02",
    "name": "Paiement fournisseur",
    "description": "Règlement des factures",
    "steps": ["verification", "virement"],
    "responsible_party": "Comptable",
    "triggers": "Réception de facture"
  }
]`

const dependencyResponse = `{"01": [], "02": ["01"]}`

// fakeOllama serves canned generate responses in order.
func fakeOllama(t *testing.T, responses ...string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	next := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		require.Less(t, next, len(responses), "unexpected extra provider call")
		resp := responses[next]
		next++
		json.NewEncoder(w).Encode(map[string]string{"response": resp})
	}))
}

// writeConfig points the default configuration at the fake provider.
func writeConfig(t *testing.T, providerURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := fmt.Sprintf("provider:\n  name: ollama\n  ollama:\n    url: %s\n", providerURL)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestAnalyzeCommand(t *testing.T) {
	srv := fakeOllama(t, detectionResponse, dependencyResponse)
	defer srv.Close()

	contractPath := filepath.Join(t.TempDir(), "contrat-logistique.txt")
	require.NoError(t, os.WriteFile(contractPath, []byte("texte du contrat"), 0o644))

	out, err := execute(t,
		"--config", writeConfig(t, srv.URL),
		"--format", "json",
		"analyze", contractPath,
	)
	require.NoError(t, err)

	var doc model.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "contrat-logistique", doc.Contract.ID)
	assert.Len(t, doc.Contract.Automatons, 2)
	assert.Equal(t, "ai_ollama", doc.Analysis.Method)
}

func TestAnalyzeEmptyContract(t *testing.T) {
	contractPath := filepath.Join(t.TempDir(), "vide.txt")
	require.NoError(t, os.WriteFile(contractPath, []byte("   \n"), 0o644))

	_, err := execute(t, "analyze", contractPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAnalyzeMissingFile(t *testing.T) {
	_, err := execute(t, "analyze", filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAnalyzeInvalidType(t *testing.T) {
	contractPath := filepath.Join(t.TempDir(), "c.txt")
	require.NoError(t, os.WriteFile(contractPath, []byte("texte"), 0o644))

	_, err := execute(t, "analyze", "--type", "bail", contractPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAnalyzeWritesDocumentAndStoresRun(t *testing.T) {
	srv := fakeOllama(t, detectionResponse, dependencyResponse)
	defer srv.Close()

	dir := t.TempDir()
	contractPath := filepath.Join(dir, "contrat.txt")
	require.NoError(t, os.WriteFile(contractPath, []byte("texte"), 0o644))
	outPath := filepath.Join(dir, "contrat.json")
	dbPath := filepath.Join(dir, "covenant.db")

	_, err := execute(t,
		"--config", writeConfig(t, srv.URL),
		"--db", dbPath,
		"analyze", "--out", outPath, contractPath,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var doc model.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "contrat", doc.Contract.ID)

	// The run is listed from the database.
	out, err := execute(t, "--format", "json", "--db", dbPath, "runs")
	require.NoError(t, err)
	var list RunList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, doc.RunID, list.Runs[0].RunID)
	assert.Equal(t, "contrat", list.Runs[0].Contract)
}

func TestBatchCommand(t *testing.T) {
	// Two contracts analyzed in name order; the second one's detection
	// response is unusable so it fails while the first succeeds.
	srv := fakeOllama(t,
		detectionResponse, dependencyResponse,
		"réponse sans tableau",
	)
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-bon.txt"), []byte("texte"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-casse.txt"), []byte("texte"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.pdf"), []byte("binaire"), 0o644))

	out, err := execute(t,
		"--config", writeConfig(t, srv.URL),
		"--format", "json",
		"batch", dir,
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var report BatchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Items, 2)
	assert.Equal(t, "a-bon", report.Items[0].Name)
	assert.Empty(t, report.Items[0].Error)
	assert.Equal(t, "b-casse", report.Items[1].Name)
	assert.NotEmpty(t, report.Items[1].Error)
}

func TestBatchEmptyDirectory(t *testing.T) {
	_, err := execute(t, "batch", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommandValidContract(t *testing.T) {
	srv := fakeOllama(t, detectionResponse, dependencyResponse)
	defer srv.Close()

	dir := t.TempDir()
	contractPath := filepath.Join(dir, "contrat.txt")
	require.NoError(t, os.WriteFile(contractPath, []byte("texte"), 0o644))
	outPath := filepath.Join(dir, "contrat.json")

	_, err := execute(t,
		"--config", writeConfig(t, srv.URL),
		"analyze", "--out", outPath, contractPath,
	)
	require.NoError(t, err)

	out, err := execute(t, "--format", "json", "validate", outPath)
	require.NoError(t, err)

	var result ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.Automatons)
}

func TestValidateCommandInvalidContract(t *testing.T) {
	contract := model.Contract{
		ID:   "casse",
		Name: "Cassé",
		Automatons: []model.Automaton{
			{ID: "01", Name: "Sans états"},
		},
	}
	data, err := json.Marshal(contract)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "contrat.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, execErr := execute(t, "--format", "json", "validate", path)
	require.Error(t, execErr)
	assert.Equal(t, ExitFailure, GetExitCode(execErr))

	var result ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateCommandGarbageInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("pas du json"), 0o644))

	_, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunsRequiresDB(t *testing.T) {
	_, err := execute(t, "runs")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError(ExitFailure, "wrap", assert.AnError)))
}
