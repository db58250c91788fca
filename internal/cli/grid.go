package cli

import (
	"fmt"
	"io"
	"strings"

	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/hos"
	"dispatchai-pro/internal/models"

	"github.com/spf13/cobra"
)

// chartColumns is the width of the text chart; one column per 15 minutes
const chartColumns = 96

// NewGridCommand creates the grid command.
func NewGridCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "grid <log-id>",
		Short:        "Render the duty-status grid of a daily log",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrid(rootOpts, args[0], cmd.OutOrStdout())
		},
	}
}

func runGrid(opts *RootOptions, logID string, w io.Writer) error {
	f, err := loadFixture(opts)
	if err != nil {
		return err
	}

	var lg *models.DailyLog
	for i := range f.DailyLogs {
		if f.DailyLogs[i].ID == logID {
			lg = &f.DailyLogs[i]
			break
		}
	}
	if lg == nil {
		return apperr.NotFound("daily log", logID)
	}

	grid, err := hos.RenderDutyGrid(*lg)
	if err != nil {
		return err
	}
	if opts.Format == "json" {
		return writeJSON(w, grid)
	}

	fmt.Fprintf(w, "%s  driver %s  %s\n", grid.LogID, grid.DriverID, grid.Date)
	for _, lane := range grid.Lanes {
		fmt.Fprintf(w, "%-3s |%s|\n", lane.Status, chartRow(lane))
	}
	return nil
}

// chartRow draws a lane as a fixed-width bar chart. Every bar fills at
// least one column so short events stay visible.
func chartRow(lane hos.DutyLane) string {
	row := []byte(strings.Repeat(" ", chartColumns))
	for _, bar := range lane.Bars {
		start := int(bar.Offset * chartColumns)
		end := int((bar.Offset + bar.Width) * chartColumns)
		if end <= start {
			end = start + 1
		}
		for i := start; i < end && i < chartColumns; i++ {
			row[i] = '#'
		}
	}
	return string(row)
}
