package commands

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/cmd/habitgrid/opts"
	"github.com/habitgrid/habitgrid/pkg/codec"
	"github.com/habitgrid/habitgrid/pkg/habit"
	"github.com/habitgrid/habitgrid/pkg/log"
)

// NewImportCmd creates the import command
func NewImportCmd(o *opts.RootOpts) *cobra.Command {
	var mf monthFlags
	var inPath string

	cmd := &cobra.Command{
		Use:   "import <csv|json>",
		Short: "Import habits and checked days from a file",
		Long: `Import replaces the target month's logs with the file's contents.
CSV carries one month's grid; JSON restores a full export, including
the storage snapshot when one is present. Validation failures abort
before anything is written.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"csv", "json"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "import").Logger().WithContext(ctx)

			year, month, err := mf.index()
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if inPath != "" {
				f, err := os.Open(inPath)
				if err != nil {
					return errors.Errorf("opening input file: %w", err)
				}
				defer f.Close()
				r = f
			}

			habits, err := o.Gateway.Habits(ctx)
			if err != nil {
				return errors.Errorf("loading habits: %w", err)
			}
			logs, err := o.Gateway.Logs(ctx)
			if err != nil {
				return errors.Errorf("loading logs: %w", err)
			}

			var nextHabits []habit.Habit
			var nextLogs habit.LogMap
			switch args[0] {
			case "csv":
				nextHabits, nextLogs, err = codec.ImportCSV(r, habits, logs, year, month)
				if err != nil {
					return errors.Errorf("importing csv: %w", err)
				}
			case "json":
				result, err := codec.ImportJSON(ctx, r, o.Gateway, year, month)
				if err != nil {
					return errors.Errorf("importing json: %w", err)
				}
				nextHabits, nextLogs = result.Habits, result.Logs
				year, month = result.Year, result.Month
			default:
				return errors.Errorf("unknown import format: %s", args[0])
			}

			if err := o.Gateway.SetHabits(ctx, nextHabits); err != nil {
				return errors.Errorf("storing habits: %w", err)
			}
			if err := o.Gateway.SetLogs(ctx, nextLogs); err != nil {
				return errors.Errorf("storing logs: %w", err)
			}

			reportRows(ctx, o, nextHabits, nextLogs, year, month, habits)
			o.UserLogger.Successf("imported %s for %s", args[0], habit.MonthLabel(year, month))
			return nil
		},
	}

	mf.add(cmd)
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "input file (defaults to stdin)")

	return cmd
}

// reportRows prints one console row per imported habit.
func reportRows(ctx context.Context, o *opts.RootOpts, habits []habit.Habit, logs habit.LogMap, year, month int, previous []habit.Habit) {
	days := habit.DaysInMonth(year, month)
	o.UserLogger.StartSyncOperation(ctx, log.SyncOperation{
		Resource:  "local grid",
		Direction: "import",
		Month:     habit.MonthLabel(year, month),
	})
	for _, h := range habits {
		checked := 0
		for day := 1; day <= days; day++ {
			if logs[habit.NewLogKey(year, month, day, h.ID)] {
				checked++
			}
		}
		kind := "health"
		if h.IsVice() {
			kind = "vice"
		}
		status := "updated"
		isNew := habit.FindByName(previous, h.Name) == nil
		if isNew {
			status = "NEW"
		}
		o.UserLogger.LogRow(ctx, log.RowOperation{
			Habit:   habit.DisplayName(h.Name),
			Kind:    kind,
			Checked: checked,
			Days:    days,
			Status:  status,
			IsNew:   isNew,
		})
	}
	o.UserLogger.EndSyncOperation(ctx)
}
