// Package cli implements the covenant command line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/covenantlabs/covenant/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text" | "yaml"
	ConfigPath string
	DBPath     string

	// cfg is resolved from ConfigPath during PersistentPreRunE.
	cfg config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the covenant CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "covenant",
		Short: "Covenant - contract analysis and automaton synthesis",
		Long: `Covenant turns contract text into validated business-process automatons.

It detects business processes with a reasoning provider, resolves their
dependency relation into an acyclic graph, and synthesizes one linear
automaton per process assembled into a validated contract document.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			cfg := config.Default()
			if opts.ConfigPath != "" {
				loaded, err := config.Load(opts.ConfigPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if problems := cfg.Validate(); len(problems) > 0 {
				return fmt.Errorf("invalid configuration: %v", problems)
			}
			opts.cfg = cfg
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the run database (omit to skip persistence)")

	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newLogger builds the command logger. Verbose mode lowers the level to
// debug; logs always go to stderr so structured output stays clean.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
