package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/covenantlabs/covenant/internal/analyzer"
	"github.com/covenantlabs/covenant/internal/detect"
	"github.com/covenantlabs/covenant/internal/model"
	"github.com/covenantlabs/covenant/internal/provider"
	"github.com/covenantlabs/covenant/internal/store"
)

// AnalyzeOptions holds flags specific to the analyze command.
type AnalyzeOptions struct {
	Type         string
	Instructions string
	OutPath      string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <contract.txt>",
		Short: "Analyze one contract text file",
		Long: `Analyze a plain-text contract file and synthesize its automatons.

The contract text is sent to the configured reasoning provider, detected
processes are validated, dependencies are resolved into an acyclic graph,
and the resulting contract document is printed (and optionally saved).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "auto", "contract type hint (auto|logistics|sales|service)")
	cmd.Flags().StringVar(&opts.Instructions, "instructions", "", "extra analysis instructions for the provider")
	cmd.Flags().StringVarP(&opts.OutPath, "out", "o", "", "write the document to this file instead of stdout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, rootOpts *RootOptions, opts *AnalyzeOptions, path string) error {
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

	text, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading contract", err)
	}
	if strings.TrimSpace(string(text)) == "" {
		return NewExitError(ExitCommandError, fmt.Sprintf("contract %s is empty", path))
	}

	p, err := provider.New(rootOpts.cfg.Provider, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuring provider", err)
	}
	a, err := analyzer.New(p, rootOpts.cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "initializing analyzer", err)
	}

	name := contractName(path)
	formatter.VerboseLog("Analyzing %s (%d bytes) with %s", name, len(text), p.Name())

	doc, err := a.Analyze(cmd.Context(), name, string(text), detect.Options{
		Hint:         hint,
		Instructions: opts.Instructions,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "analysis failed", err)
	}

	if rootOpts.DBPath != "" {
		if err := saveRun(cmd.Context(), rootOpts.DBPath, doc); err != nil {
			return WrapExitError(ExitCommandError, "saving run", err)
		}
		formatter.VerboseLog("Saved run %s to %s", doc.RunID, rootOpts.DBPath)
	}

	if opts.OutPath != "" {
		if err := writeDocument(opts.OutPath, rootOpts, doc); err != nil {
			return WrapExitError(ExitCommandError, "writing document", err)
		}
		formatter.Textf("Wrote %s (%d automatons, confidence %.2f)",
			opts.OutPath, len(doc.Contract.Automatons), doc.Analysis.Confidence)
		return nil
	}

	return formatter.Emit(doc)
}

// contractType parses the --type flag.
func contractType(s string) (detect.ContractType, error) {
	switch detect.ContractType(s) {
	case detect.TypeAuto, detect.TypeLogistics, detect.TypeSales, detect.TypeService:
		return detect.ContractType(s), nil
	default:
		return "", fmt.Errorf("unknown contract type %q", s)
	}
}

// contractName derives the contract display name from the file path.
func contractName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func saveRun(ctx context.Context, dbPath string, doc *model.Document) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.SaveDocument(ctx, doc)
}

// writeDocument exports a document to a file. The output section of the
// configuration controls the export: format and pretty-printing, and
// whether the analysis metadata is included or only the contract.
func writeDocument(path string, rootOpts *RootOptions, doc *model.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	out := rootOpts.cfg.Output
	var payload any = doc
	if !out.IncludeMetadata {
		payload = doc.Contract
	}

	if exportFormat(rootOpts) == "yaml" {
		enc := yaml.NewEncoder(f)
		defer enc.Close()
		return enc.Encode(payload)
	}

	enc := json.NewEncoder(f)
	if out.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(payload)
}

// exportFormat picks the file format: an explicit --format yaml wins,
// otherwise the configured output format applies.
func exportFormat(rootOpts *RootOptions) string {
	if rootOpts.Format == "yaml" || (rootOpts.Format == "text" && rootOpts.cfg.Output.Format == "yaml") {
		return "yaml"
	}
	return "json"
}
