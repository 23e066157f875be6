// Package detect turns contract text into validated process records and a
// dependency graph by querying a reasoning provider and interpreting its
// free-form responses.
package detect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/covenantlabs/covenant/internal/config"
	"github.com/covenantlabs/covenant/internal/graph"
	"github.com/covenantlabs/covenant/internal/model"
	"github.com/covenantlabs/covenant/internal/parse"
	"github.com/covenantlabs/covenant/internal/provider"
	"github.com/covenantlabs/covenant/internal/record"
)

// Detector runs the two reasoning passes of an analysis: process detection
// over the contract text, then dependency analysis over the detected
// processes.
type Detector struct {
	provider provider.Provider
	builder  *record.Builder
	cfg      config.AnalysisConfig
	logger   *slog.Logger
}

// New builds a Detector.
func New(p provider.Provider, builder *record.Builder, cfg config.AnalysisConfig, logger *slog.Logger) *Detector {
	return &Detector{
		provider: p,
		builder:  builder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Options tune a single detection run.
type Options struct {
	// Hint biases the detection prompt toward a contract family.
	Hint ContractType
	// Instructions are free-form extra directions appended to the prompt.
	Instructions string
}

// DetectProcesses asks the provider for the business processes in the
// contract text and builds validated records from its answer.
//
// A response with no parseable record span is an error; individual invalid
// records are dropped by the builder and only lower the confidence score.
func (d *Detector) DetectProcesses(ctx context.Context, contractText string, opts Options) (*model.AnalysisResult, error) {
	start := time.Now()

	prompt := DetectionPrompt(contractText, opts.Hint, opts.Instructions, d.cfg)
	response, err := d.provider.Query(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("detecting processes: %w", err)
	}

	var raw []json.RawMessage
	if err := parse.ExtractArray(response, &raw); err != nil {
		if errors.Is(err, parse.ErrNoSpan) {
			return nil, fmt.Errorf("detecting processes: response contains no record array")
		}
		return nil, fmt.Errorf("detecting processes: %w", err)
	}

	processes, rejections := d.builder.Build(raw)
	if len(rejections) > 0 {
		d.logger.Warn("dropped invalid process records",
			"rejected", len(rejections),
			"kept", len(processes))
	}

	result := &model.AnalysisResult{
		Processes:  processes,
		Method:     "ai_" + d.provider.Name(),
		Confidence: d.confidence(processes),
		Elapsed:    time.Since(start),
		TotalSteps: totalSteps(processes),
	}

	d.logger.Info("process detection complete",
		"processes", len(result.Processes),
		"confidence", result.Confidence,
		"elapsed", result.Elapsed)

	return result, nil
}

// AnalyzeDependencies asks the provider for the dependency relation over
// the detected processes and returns a cleaned graph: one entry per known
// process id, foreign ids and self-references removed.
//
// An unparseable response degrades to an empty relation rather than
// failing the analysis. When cycle detection is enabled, cycles in the
// answer are eliminated deterministically.
func (d *Detector) AnalyzeDependencies(ctx context.Context, processes []model.Process) (graph.Graph, error) {
	known := make(map[string]bool, len(processes))
	for _, p := range processes {
		known[p.ID] = true
	}

	deps := make(graph.Graph, len(processes))
	for _, p := range processes {
		deps[p.ID] = []string{}
	}
	if len(processes) == 0 {
		return deps, nil
	}

	response, err := d.provider.Query(ctx, DependencyPrompt(processes))
	if err != nil {
		return nil, fmt.Errorf("analyzing dependencies: %w", err)
	}

	var answer map[string][]string
	if err := parse.ExtractObject(response, &answer); err != nil {
		d.logger.Warn("dependency response unusable, assuming independent processes", "error", err)
		return deps, nil
	}

	for id, listed := range answer {
		if !known[id] {
			continue
		}
		kept := []string{}
		for _, dep := range listed {
			if known[dep] && dep != id {
				kept = append(kept, dep)
			}
		}
		deps[id] = kept
	}

	if d.cfg.CycleDetection && graph.HasCycle(deps) {
		d.logger.Warn("dependency cycles detected, removing")
		deps = graph.RemoveCycles(deps)
	}

	return deps, nil
}

// confidence scores a detection between 0 and 1. Process count relative to
// the configured target and field completeness each weigh 0.3; average
// step count against an optimum of five and tag diversity each weigh 0.2.
func (d *Detector) confidence(processes []model.Process) float64 {
	if len(processes) == 0 {
		return 0
	}

	n := float64(len(processes))
	score := 0.0

	expected := float64(d.cfg.MinProcesses+d.cfg.MaxProcesses) / 2
	score += min(n/expected, 1.0) * 0.3

	complete := 0
	for _, p := range processes {
		if p.Complete() {
			complete++
		}
	}
	score += float64(complete) / n * 0.3

	avgSteps := float64(totalSteps(processes)) / n
	score += min(avgSteps/5.0, 1.0) * 0.2

	tags := make(map[model.Tag]bool, len(processes))
	for _, p := range processes {
		tags[p.Tag] = true
	}
	score += min(float64(len(tags))/n, 1.0) * 0.2

	return min(score, 1.0)
}

func totalSteps(processes []model.Process) int {
	total := 0
	for _, p := range processes {
		total += len(p.Steps)
	}
	return total
}
