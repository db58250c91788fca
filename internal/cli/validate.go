package cli

import (
	"fmt"
	"io"

	"dispatchai-pro/internal/hos"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a fleet fixture",
		Long: `Validate a fleet fixture without starting the API.

Checks references between collections, HOS clock bounds and that every
daily log partitions its day.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd.OutOrStdout())
		},
	}
}

func runValidate(opts *RootOptions, w io.Writer) error {
	result := ValidationResult{Valid: true}

	f, err := loadFixture(opts)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
	} else {
		for _, lg := range f.DailyLogs {
			if err := hos.ValidateLog(lg); err != nil {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("log %s: %v", lg.ID, err))
			}
		}
	}

	if opts.Format == "json" {
		if err := writeJSON(w, result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintln(w, "✓ Fixture valid")
	} else {
		for _, e := range result.Errors {
			fmt.Fprintf(w, "✗ %s\n", e)
		}
	}

	if !result.Valid {
		return fmt.Errorf("fixture invalid: %d error(s)", len(result.Errors))
	}
	return nil
}
