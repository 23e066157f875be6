// Package record converts untyped reasoning-service records into validated
// model.Process entities.
//
// The conversion is an explicit schema-validation boundary: each raw record
// is unified against an embedded CUE schema and checked against the
// configured bounds, and either becomes a Process or is rejected with a
// structured, coded reason. Nothing downstream ever trusts field presence
// implicitly.
package record

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/covenantlabs/covenant/internal/model"
)

//go:embed schema.cue
var schemaFS embed.FS

// Record validation error codes (E100-E109).
const (
	ErrRecordSchema       = "E100" // record does not satisfy the CUE schema
	ErrRecordMissingID    = "E101" // id absent or empty
	ErrRecordMissingName  = "E102" // name absent or empty
	ErrRecordNoSteps      = "E103" // step list absent or empty
	ErrRecordTooManySteps = "E104" // step list exceeds the configured bound
	ErrRecordEmptyStep    = "E105" // a step label is empty
	ErrRecordDuplicateID  = "E106" // id already claimed by an earlier record
)

// DefaultMaxSteps bounds the step list when no limit is configured.
const DefaultMaxSteps = 10

// Violation is one reason a raw record was rejected.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	return fmt.Sprintf("[%s] %s: %s", v.Code, v.Field, v.Message)
}

// Rejection records a dropped raw record with every violation found.
type Rejection struct {
	Index      int         `json:"index"` // position in the raw array
	RecordID   string      `json:"record_id,omitempty"`
	Violations []Violation `json:"violations"`
}

// rawRecord is the decoded wire shape before validation.
type rawRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	Responsible string   `json:"responsible_party"`
	Triggers    string   `json:"triggers"`
}

// Builder validates raw records and assembles Process entities.
//
// Validation is partial-success: invalid records are dropped with a
// diagnostic and the builder returns every Process that could be salvaged.
type Builder struct {
	schema   cue.Value
	cuectx   *cue.Context
	maxSteps int
	logger   *slog.Logger
}

// NewBuilder compiles the embedded schema and returns a Builder enforcing
// the given step bound (DefaultMaxSteps when non-positive).
func NewBuilder(maxSteps int, logger *slog.Logger) (*Builder, error) {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	if logger == nil {
		logger = slog.Default()
	}

	src, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}

	cuectx := cuecontext.New()
	compiled := cuectx.CompileBytes(src, cue.Filename("schema.cue"))
	if err := compiled.Err(); err != nil {
		return nil, fmt.Errorf("compiling record schema: %w", err)
	}
	schema := compiled.LookupPath(cue.ParsePath("#Record"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("resolving #Record: %w", err)
	}

	return &Builder{
		schema:   schema,
		cuectx:   cuectx,
		maxSteps: maxSteps,
		logger:   logger,
	}, nil
}

// Build converts raw records into Process entities.
//
// Each record is validated independently; failures are returned as
// Rejections alongside the survivors, never as a fatal error. The returned
// Process slice preserves input order. Identifiers must be unique across
// the batch: the first record carrying an id wins and later claimants are
// rejected, so a process can never be silently shadowed downstream.
func (b *Builder) Build(raw []json.RawMessage) ([]model.Process, []Rejection) {
	processes := make([]model.Process, 0, len(raw))
	var rejections []Rejection
	claimed := make(map[string]bool, len(raw))

	for i, data := range raw {
		process, violations := b.buildOne(data)
		if len(violations) == 0 && claimed[process.ID] {
			violations = append(violations, Violation{
				Field:   "id",
				Message: fmt.Sprintf("identifier %q already claimed by an earlier record", process.ID),
				Code:    ErrRecordDuplicateID,
			})
		}
		if len(violations) > 0 {
			rejection := Rejection{Index: i, Violations: violations}
			if process != nil {
				rejection.RecordID = process.ID
			}
			rejections = append(rejections, rejection)

			b.logger.Warn("dropping invalid process record",
				"index", i,
				"record_id", rejection.RecordID,
				"violations", len(violations))
			continue
		}
		claimed[process.ID] = true
		processes = append(processes, *process)
	}

	return processes, rejections
}

// buildOne validates one raw record, accumulating every violation rather
// than stopping at the first. A non-nil Process is returned even on
// rejection when enough fields decoded to identify the record.
func (b *Builder) buildOne(data json.RawMessage) (*model.Process, []Violation) {
	var violations []Violation

	// Structural gate: the record must unify with the schema.
	value := b.cuectx.CompileBytes(data)
	if err := value.Err(); err != nil {
		return nil, []Violation{{
			Field:   ".",
			Message: fmt.Sprintf("record is not a JSON object: %v", err),
			Code:    ErrRecordSchema,
		}}
	}
	unified := b.schema.Unify(value)
	if err := unified.Validate(cue.Final()); err != nil {
		for _, e := range cueerrors.Errors(err) {
			violations = append(violations, Violation{
				Field:   strings.Join(e.Path(), "."),
				Message: e.Error(),
				Code:    ErrRecordSchema,
			})
		}
	}

	var rec rawRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		violations = append(violations, Violation{
			Field:   ".",
			Message: fmt.Sprintf("decoding record: %v", err),
			Code:    ErrRecordSchema,
		})
		return nil, violations
	}

	// Bound checks the schema cannot express (configuration-dependent).
	if strings.TrimSpace(rec.ID) == "" {
		violations = append(violations, Violation{
			Field:   "id",
			Message: "identifier is required and must be non-empty",
			Code:    ErrRecordMissingID,
		})
	}
	if strings.TrimSpace(rec.Name) == "" {
		violations = append(violations, Violation{
			Field:   "name",
			Message: "name is required and must be non-empty",
			Code:    ErrRecordMissingName,
		})
	}
	if len(rec.Steps) == 0 {
		violations = append(violations, Violation{
			Field:   "steps",
			Message: "at least one step is required",
			Code:    ErrRecordNoSteps,
		})
	}
	if len(rec.Steps) > b.maxSteps {
		violations = append(violations, Violation{
			Field:   "steps",
			Message: fmt.Sprintf("%d steps exceeds the limit of %d", len(rec.Steps), b.maxSteps),
			Code:    ErrRecordTooManySteps,
		})
	}
	for j, step := range rec.Steps {
		if strings.TrimSpace(step) == "" {
			violations = append(violations, Violation{
				Field:   fmt.Sprintf("steps[%d]", j),
				Message: "step label must be non-empty",
				Code:    ErrRecordEmptyStep,
			})
		}
	}

	process := &model.Process{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Steps:       rec.Steps,
		Responsible: rec.Responsible,
		Triggers:    rec.Triggers,
		Tag:         InferTag(rec.Name, rec.Description),
	}
	return process, violations
}

// MaxSteps returns the configured step bound.
func (b *Builder) MaxSteps() int {
	return b.maxSteps
}
