package commands

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/cmd/habitgrid/opts"
	"github.com/habitgrid/habitgrid/pkg/habit"
)

// NewCheckCmd creates the check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	return newMarkCmd(o, "check", "Mark a habit done for a day", true)
}

// NewUncheckCmd creates the uncheck command
func NewUncheckCmd(o *opts.RootOpts) *cobra.Command {
	return newMarkCmd(o, "uncheck", "Clear a habit's mark for a day", false)
}

func newMarkCmd(o *opts.RootOpts, use, short string, checked bool) *cobra.Command {
	var mf monthFlags
	var day int

	cmd := &cobra.Command{
		Use:   use + " <habit>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", use).Logger().WithContext(ctx)

			year, month, err := mf.index()
			if err != nil {
				return err
			}
			if day < 1 || day > habit.DaysInMonth(year, month) {
				return errors.Errorf("day %d is outside %s", day, habit.MonthLabel(year, month))
			}

			habits, err := o.Gateway.Habits(ctx)
			if err != nil {
				return errors.Errorf("loading habits: %w", err)
			}
			h := habit.FindByName(habits, args[0])
			if h == nil {
				return errors.Errorf("no such habit: %s", args[0])
			}

			logs, err := o.Gateway.Logs(ctx)
			if err != nil {
				return errors.Errorf("loading logs: %w", err)
			}

			key := habit.NewLogKey(year, month, day, h.ID)
			if checked {
				logs[key] = true
			} else {
				delete(logs, key)
			}
			if err := o.Gateway.SetLogs(ctx, logs); err != nil {
				return errors.Errorf("storing logs: %w", err)
			}

			verb := "checked"
			if !checked {
				verb = "unchecked"
			}
			o.UserLogger.Successf("%s %s on %s-%02d", verb, habit.DisplayName(h.Name), habit.MonthLabel(year, month), day)
			return nil
		},
	}

	mf.add(cmd)
	cmd.Flags().IntVar(&day, "day", time.Now().Day(), "day of month")

	return cmd
}
