package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/cmd/habitgrid/opts"
	"github.com/habitgrid/habitgrid/pkg/habit"
)

// NewHabitCmd creates the habit management command
func NewHabitCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage the habit template",
	}

	cmd.AddCommand(newHabitAddCmd(o), newHabitRemoveCmd(o), newHabitListCmd(o))

	return cmd
}

func newHabitAddCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a habit (prefix the name with ~ for a vice)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "habit add").Logger().WithContext(ctx)

			habits, err := o.Gateway.Habits(ctx)
			if err != nil {
				return errors.Errorf("loading habits: %w", err)
			}

			name := args[0]
			if habit.FindByName(habits, name) != nil {
				return errors.Errorf("habit already exists: %s", habit.DisplayName(name))
			}

			h := habit.New(name)
			habits = append(habits, h)
			if err := o.Gateway.SetHabits(ctx, habits); err != nil {
				return errors.Errorf("storing habits: %w", err)
			}

			kind := "health"
			if h.IsVice() {
				kind = "vice"
			}
			o.UserLogger.Successf("added %s (%s, %+d xp)", habit.DisplayName(h.Name), kind, h.XP)
			return nil
		},
	}
}

func newHabitRemoveCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a habit and its logged days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "habit remove").Logger().WithContext(ctx)

			habits, err := o.Gateway.Habits(ctx)
			if err != nil {
				return errors.Errorf("loading habits: %w", err)
			}

			h := habit.FindByName(habits, args[0])
			if h == nil {
				return errors.Errorf("no such habit: %s", args[0])
			}

			if err := o.Gateway.DeleteHabit(ctx, h.ID); err != nil {
				return errors.Errorf("deleting habit: %w", err)
			}

			o.UserLogger.Successf("removed %s", habit.DisplayName(h.Name))
			return nil
		},
	}
}

func newHabitListCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List habits in the template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			habits, err := o.Gateway.Habits(ctx)
			if err != nil {
				return errors.Errorf("loading habits: %w", err)
			}

			for _, h := range habits {
				kind := "health"
				if h.IsVice() {
					kind = "vice"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %-8s %+d xp\n", habit.DisplayName(h.Name), kind, h.XP)
			}
			return nil
		},
	}
}
