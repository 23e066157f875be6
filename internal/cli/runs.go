package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/covenantlabs/covenant/internal/store"
)

// RunList is the structured payload of the runs command.
type RunList struct {
	Runs []RunEntry `json:"runs"`
}

// RunEntry is one stored run in a listing.
type RunEntry struct {
	RunID      string    `json:"run_id"`
	Contract   string    `json:"contract"`
	Status     string    `json:"status"`
	Method     string    `json:"method"`
	Confidence float64   `json:"confidence"`
	Processes  int       `json:"processes"`
	CreatedAt  time.Time `json:"created_at"`
}

// String renders the listing as a fixed-width table.
func (l RunList) String() string {
	if len(l.Runs) == 0 {
		return "no stored runs"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-38s %-24s %-8s %-12s %10s %6s", "RUN", "CONTRACT", "STATUS", "METHOD", "CONFIDENCE", "PROCS")
	for _, r := range l.Runs {
		fmt.Fprintf(&b, "\n%-38s %-24s %-8s %-12s %10.2f %6d",
			r.RunID, r.Contract, r.Status, r.Method, r.Confidence, r.Processes)
	}
	return b.String()
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "runs",
		Short:         "List stored analysis runs",
		Long:          "List every analysis run stored in the run database, newest first.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, rootOpts)
		},
	}

	return cmd
}

func runRuns(cmd *cobra.Command, rootOpts *RootOptions) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	if rootOpts.DBPath == "" {
		return NewExitError(ExitCommandError, "--db is required for the runs command")
	}

	s, err := store.Open(rootOpts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening run database", err)
	}
	defer s.Close()

	summaries, err := s.ListRuns(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "listing runs", err)
	}

	list := RunList{Runs: make([]RunEntry, 0, len(summaries))}
	for _, rs := range summaries {
		list.Runs = append(list.Runs, RunEntry{
			RunID:      rs.RunID,
			Contract:   rs.ContractID,
			Status:     rs.Status,
			Method:     rs.Method,
			Confidence: rs.Confidence,
			Processes:  rs.ProcessCount,
			CreatedAt:  rs.CreatedAt,
		})
	}

	return formatter.Emit(list)
}
