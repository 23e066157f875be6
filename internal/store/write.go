package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/covenantlabs/covenant/internal/model"
)

// SaveDocument inserts the full result of one analysis run.
// Uses ON CONFLICT(run_id) DO NOTHING for idempotency - a run id is
// written at most once.
func (s *Store) SaveDocument(ctx context.Context, doc *model.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("save run: encode document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, contract_id, contract_name, status, method, confidence, process_count, created_at, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`,
		doc.RunID,
		doc.Contract.ID,
		doc.Contract.Name,
		doc.Contract.Status,
		doc.Analysis.Method,
		doc.Analysis.Confidence,
		len(doc.Analysis.Processes),
		doc.Contract.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	return nil
}
