package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/cmd/habitgrid/opts"
	"github.com/habitgrid/habitgrid/pkg/habit"
	"github.com/habitgrid/habitgrid/pkg/stats"
)

// NewStatsCmd creates the stats command
func NewStatsCmd(o *opts.RootOpts) *cobra.Command {
	var mf monthFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show monthly totals, streaks and the best habit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			year, month, err := mf.index()
			if err != nil {
				return err
			}

			habits, err := o.Gateway.Habits(ctx)
			if err != nil {
				return errors.Errorf("loading habits: %w", err)
			}
			logs, err := o.Gateway.Logs(ctx)
			if err != nil {
				return errors.Errorf("loading logs: %w", err)
			}

			s := stats.Compute(habits, logs, year, month, o.Settings.MonthlyGoal)
			streaks := stats.Streaks(habits, logs, year, month)

			out := cmd.OutOrStdout()
			o.UserLogger.Header(fmt.Sprintf("stats for %s", habit.MonthLabel(year, month)))
			fmt.Fprintf(out, "total xp:        %d\n", s.TotalXP)
			fmt.Fprintf(out, "checked cells:   %d\n", s.CheckedCells)
			fmt.Fprintf(out, "completion rate: %d%% (goal %d xp)\n", s.CompletionRate, o.Settings.MonthlyGoal)
			fmt.Fprintf(out, "best habit:      %s\n", s.BestHabit)

			fmt.Fprintln(out)
			for _, st := range streaks {
				fmt.Fprintf(out, "%-28s current %-3d best %d\n", st.Name, st.Current, st.Max)
			}
			return nil
		},
	}

	mf.add(cmd)
	return cmd
}
