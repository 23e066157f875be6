package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/covenantlabs/covenant/internal/model"
	"github.com/covenantlabs/covenant/internal/validate"
)

// ValidationResult holds the outcome of validating a contract document.
type ValidationResult struct {
	Valid      bool                 `json:"valid"`
	Contract   string               `json:"contract"`
	Automatons int                  `json:"automatons"`
	Errors     []validate.Violation `json:"errors,omitempty"`
}

// String renders the result for text output.
func (r ValidationResult) String() string {
	if r.Valid {
		return fmt.Sprintf("Contract %s is valid (%d automatons)", r.Contract, r.Automatons)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Contract %s has %d validation error(s):", r.Contract, len(r.Errors))
	for _, v := range r.Errors {
		fmt.Fprintf(&b, "\n  [%s] %s", v.Code, v.Message)
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <contract.json>",
		Short: "Validate a previously exported contract document",
		Long: `Validate a contract document without re-running the analysis.

Checks automaton structure, dependency resolution, and contract-level
dependency acyclicity. All violations are reported together.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateContract(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runValidateContract(cmd *cobra.Command, rootOpts *RootOptions, path string) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading contract", err)
	}

	contract, err := decodeContract(data)
	if err != nil {
		return WrapExitError(ExitCommandError, "decoding contract", err)
	}

	formatter.VerboseLog("Validating contract %s (%d automatons)", contract.ID, len(contract.Automatons))

	violations := validate.Contract(contract)
	result := ValidationResult{
		Valid:      len(violations) == 0,
		Contract:   contract.ID,
		Automatons: len(contract.Automatons),
		Errors:     violations,
	}

	if err := formatter.Emit(result); err != nil {
		return err
	}
	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(violations)))
	}
	return nil
}

// decodeContract accepts either a bare contract or a full analysis
// document and returns the contract inside.
func decodeContract(data []byte) (*model.Contract, error) {
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err == nil && doc.RunID != "" {
		return &doc.Contract, nil
	}

	var contract model.Contract
	if err := json.Unmarshal(data, &contract); err != nil {
		return nil, err
	}
	if contract.ID == "" {
		return nil, fmt.Errorf("document has no contract id")
	}
	return &contract, nil
}
