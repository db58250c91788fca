package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/dispatch"
	"dispatchai-pro/internal/models"

	"github.com/spf13/cobra"
)

// NewRankCommand creates the rank command.
func NewRankCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "rank <load-id>",
		Short:        "Rank available drivers for a load",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(rootOpts, args[0], cmd.OutOrStdout())
		},
	}
}

func runRank(opts *RootOptions, loadID string, w io.Writer) error {
	f, err := loadFixture(opts)
	if err != nil {
		return err
	}

	var load *models.Load
	for i := range f.Loads {
		if f.Loads[i].ID == loadID {
			load = &f.Loads[i]
			break
		}
	}
	if load == nil {
		return apperr.NotFound("load", loadID)
	}

	candidates := dispatch.RankEligibleDrivers(*load, f.Drivers)
	if opts.Format == "json" {
		if candidates == nil {
			candidates = []dispatch.Candidate{}
		}
		return writeJSON(w, candidates)
	}

	fmt.Fprintf(w, "Load %s: %s -> %s (%s)\n", load.ID, load.Origin, load.Destination, load.Status)
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No available drivers")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tDRIVER\tNAME\tLOCATION\tSCORE\tNOTE")
	for i, c := range candidates {
		note := ""
		if !c.Eligible {
			note = c.Reason
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", i+1, c.Driver.ID, c.Driver.Name, c.Driver.CurrentLocation, c.Score, note)
	}
	return tw.Flush()
}
