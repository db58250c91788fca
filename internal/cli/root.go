package cli

import (
	"fmt"

	"dispatchai-pro/internal/seed"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Fixture string // path to a fleet YAML file; empty uses the embedded demo fleet
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for dispatchctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dispatchctl",
		Short: "Offline tools for the DispatchAI fleet data",
		Long:  "Rank drivers for a load, render duty grids and validate fleet fixtures without running the API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Fixture, "fixture", "", "fleet fixture YAML (default: embedded demo fleet)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewRankCommand(opts))
	cmd.AddCommand(NewGridCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadFixture reads the fixture named by --fixture
func loadFixture(opts *RootOptions) (*seed.Fixture, error) {
	if opts.Fixture == "" {
		return seed.Default()
	}
	return seed.LoadFile(opts.Fixture)
}
