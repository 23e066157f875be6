package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/covenantlabs/covenant/internal/analyzer"
	"github.com/covenantlabs/covenant/internal/detect"
	"github.com/covenantlabs/covenant/internal/provider"
)

// BatchOptions holds flags specific to the batch command.
type BatchOptions struct {
	Type   string
	OutDir string
}

// BatchReport summarizes a batch run for structured output.
type BatchReport struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchReportItem `json:"items"`
}

// BatchReportItem is one contract's outcome in a batch report.
type BatchReportItem struct {
	Name       string  `json:"name"`
	RunID      string  `json:"run_id,omitempty"`
	Automatons int     `json:"automatons,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{}

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Analyze every contract text file in a directory",
		Long: `Analyze every .txt file in a directory sequentially.

A failing contract is reported and skipped; it never aborts the rest of
the batch. The command exits nonzero when any contract failed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "auto", "contract type hint applied to every file")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "", "write one document file per contract into this directory")

	return cmd
}

func runBatch(cmd *cobra.Command, rootOpts *RootOptions, opts *BatchOptions, dir string) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}
	logger := newLogger(cmd.ErrOrStderr(), rootOpts.Verbose)

	hint, err := contractType(opts.Type)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --type", err)
	}

	items, err := loadBatchItems(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading batch", err)
	}
	if len(items) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no .txt files found in %s", dir))
	}

	p, err := provider.New(rootOpts.cfg.Provider, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuring provider", err)
	}
	a, err := analyzer.New(p, rootOpts.cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "initializing analyzer", err)
	}

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return WrapExitError(ExitCommandError, "creating output directory", err)
		}
	}

	formatter.VerboseLog("Analyzing %d contracts from %s", len(items), dir)
	results := a.AnalyzeBatch(cmd.Context(), items, detect.Options{Hint: hint})

	report := BatchReport{Total: len(results)}
	for _, r := range results {
		item := BatchReportItem{Name: r.Name}
		if r.Err != nil {
			report.Failed++
			item.Error = r.Err.Error()
			formatter.Textf("FAIL %s: %v", r.Name, r.Err)
			report.Items = append(report.Items, item)
			continue
		}

		report.Succeeded++
		item.RunID = r.Document.RunID
		item.Automatons = len(r.Document.Contract.Automatons)
		item.Confidence = r.Document.Analysis.Confidence

		if rootOpts.DBPath != "" {
			if err := saveRun(cmd.Context(), rootOpts.DBPath, r.Document); err != nil {
				return WrapExitError(ExitCommandError, "saving run", err)
			}
		}
		if opts.OutDir != "" {
			path := filepath.Join(opts.OutDir, r.Name+"."+exportFormat(rootOpts))
			if err := writeDocument(path, rootOpts, r.Document); err != nil {
				return WrapExitError(ExitCommandError, "writing document", err)
			}
		}

		formatter.Textf("OK   %s: %d automatons, confidence %.2f",
			r.Name, item.Automatons, item.Confidence)
		report.Items = append(report.Items, item)
	}

	if rootOpts.Format != "text" {
		if err := formatter.Emit(report); err != nil {
			return err
		}
	} else {
		formatter.Textf("%d/%d contracts analyzed", report.Succeeded, report.Total)
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d contracts failed", report.Failed, report.Total))
	}
	return nil
}

// loadBatchItems reads every .txt file in dir, sorted by name.
func loadBatchItems(dir string) ([]analyzer.BatchItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var items []analyzer.BatchItem
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		text, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		items = append(items, analyzer.BatchItem{
			Name: strings.TrimSuffix(entry.Name(), ".txt"),
			Text: string(text),
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}
