package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/covenantlabs/covenant/internal/model"
)

// ErrNotFound reports that no run matched the query.
var ErrNotFound = errors.New("run not found")

// RunSummary is the metadata of one stored run, without the document.
type RunSummary struct {
	RunID        string
	ContractID   string
	ContractName string
	Status       string
	Method       string
	Confidence   float64
	ProcessCount int
	CreatedAt    time.Time
}

// GetDocument loads the full document for a run id.
// Returns ErrNotFound if the run does not exist.
func (s *Store) GetDocument(ctx context.Context, runID string) (*model.Document, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM runs WHERE run_id = ?`, runID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}

	var doc model.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("get run %s: decode document: %w", runID, err)
	}
	return &doc, nil
}

// LatestDocument loads the most recent document for a contract id.
// Returns ErrNotFound if the contract has no stored runs.
func (s *Store) LatestDocument(ctx context.Context, contractID string) (*model.Document, error) {
	var runID string
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id FROM runs
		WHERE contract_id = ?
		ORDER BY created_at DESC, run_id DESC
		LIMIT 1
	`, contractID).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest run for %s: %w", contractID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest run for %s: %w", contractID, err)
	}

	return s.GetDocument(ctx, runID)
}

// ListRuns returns summaries of every stored run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, contract_id, contract_name, status, method, confidence, process_count, created_at
		FROM runs
		ORDER BY created_at DESC, run_id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var rs RunSummary
		var created string
		if err := rows.Scan(
			&rs.RunID, &rs.ContractID, &rs.ContractName, &rs.Status,
			&rs.Method, &rs.Confidence, &rs.ProcessCount, &created,
		); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		rs.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("list runs: parse created_at %q: %w", created, err)
		}
		summaries = append(summaries, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return summaries, nil
}
