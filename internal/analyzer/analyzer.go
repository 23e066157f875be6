// Package analyzer wires detection, synthesis, and validation into the
// full contract analysis pipeline.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/covenantlabs/covenant/internal/automaton"
	"github.com/covenantlabs/covenant/internal/config"
	"github.com/covenantlabs/covenant/internal/detect"
	"github.com/covenantlabs/covenant/internal/graph"
	"github.com/covenantlabs/covenant/internal/ident"
	"github.com/covenantlabs/covenant/internal/model"
	"github.com/covenantlabs/covenant/internal/provider"
	"github.com/covenantlabs/covenant/internal/record"
	"github.com/covenantlabs/covenant/internal/validate"
)

// Analyzer runs the contract analysis pipeline: detect processes, resolve
// dependencies, synthesize one automaton per process, validate the result.
type Analyzer struct {
	detector    *detect.Detector
	synthesizer *automaton.Synthesizer
	sanitizer   *ident.Sanitizer
	cfg         config.Config
	logger      *slog.Logger
}

// New builds an Analyzer around a reasoning provider.
func New(p provider.Provider, cfg config.Config, logger *slog.Logger) (*Analyzer, error) {
	builder, err := record.NewBuilder(cfg.Analysis.MaxSteps, logger)
	if err != nil {
		return nil, fmt.Errorf("building record schema: %w", err)
	}

	sanitizer := ident.New(cfg.Ident.MaxLength)
	return &Analyzer{
		detector:    detect.New(p, builder, cfg.Analysis, logger),
		synthesizer: automaton.New(sanitizer),
		sanitizer:   sanitizer,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// Analyze runs the full pipeline over one contract's text. The name labels
// the resulting contract; opts tune the detection prompts.
func (a *Analyzer) Analyze(ctx context.Context, name, contractText string, opts detect.Options) (*model.Document, error) {
	a.logger.Info("analyzing contract", "name", name, "length", len(contractText))

	analysis, err := a.detector.DetectProcesses(ctx, contractText, opts)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", name, err)
	}
	if len(analysis.Processes) == 0 {
		return nil, fmt.Errorf("analyzing %s: no valid processes detected", name)
	}

	deps, err := a.detector.AnalyzeDependencies(ctx, analysis.Processes)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", name, err)
	}

	contract, err := a.SynthesizeContract(name, analysis.Processes, deps)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", name, err)
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("minting run id: %w", err)
	}

	return &model.Document{
		RunID:        runID.String(),
		Contract:     *contract,
		Analysis:     *analysis,
		Dependencies: deps,
	}, nil
}

// SynthesizeContract assembles the automatons for the given processes into
// a validated contract. Automatons appear in topological order of the
// dependency relation, so every dependency precedes its dependents.
func (a *Analyzer) SynthesizeContract(name string, processes []model.Process, deps graph.Graph) (*model.Contract, error) {
	order, err := graph.TopologicalOrder(deps)
	if err != nil {
		return nil, fmt.Errorf("ordering processes: %w", err)
	}

	byID := make(map[string]model.Process, len(processes))
	for _, p := range processes {
		byID[p.ID] = p
	}

	automatons := make([]model.Automaton, 0, len(processes))
	for _, id := range order {
		p, ok := byID[id]
		if !ok {
			continue
		}
		automatons = append(automatons, a.synthesizer.Synthesize(p, deps[id]))
	}

	contract := &model.Contract{
		ID:          a.sanitizer.Sanitize(name),
		Name:        name,
		Status:      "draft",
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   "covenant",
		Description: fmt.Sprintf("Automates générés à partir de %d processus métier", len(automatons)),
		Automatons:  automatons,
	}

	if violations := validate.Contract(contract); len(violations) > 0 {
		for _, v := range violations {
			a.logger.Error("contract validation failed",
				"code", v.Code,
				"automaton", v.Automaton,
				"message", v.Message)
		}
		return nil, validate.AsError(violations)
	}

	a.logger.Info("contract synthesized",
		"contract", contract.ID,
		"automatons", len(contract.Automatons))

	return contract, nil
}

// BatchResult reports one item of a batch analysis.
type BatchResult struct {
	Name     string
	Document *model.Document
	Err      error
}

// AnalyzeBatch runs Analyze over the given named contract texts in order.
// A failing item is recorded in its result and never aborts the rest of
// the batch.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, items []BatchItem, opts detect.Options) []BatchResult {
	results := make([]BatchResult, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			results = append(results, BatchResult{Name: item.Name, Err: err})
			continue
		}

		doc, err := a.Analyze(ctx, item.Name, item.Text, opts)
		if err != nil {
			a.logger.Error("batch item failed", "name", item.Name, "error", err)
		}
		results = append(results, BatchResult{Name: item.Name, Document: doc, Err: err})
	}
	return results
}

// BatchItem is one named contract text in a batch.
type BatchItem struct {
	Name string
	Text string
}
