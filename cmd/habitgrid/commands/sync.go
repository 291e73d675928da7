package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/cmd/habitgrid/opts"
	"github.com/habitgrid/habitgrid/pkg/codec"
	"github.com/habitgrid/habitgrid/pkg/habit"
	"github.com/habitgrid/habitgrid/pkg/sync"
)

// NewPushCmd creates the push command
func NewPushCmd(o *opts.RootOpts) *cobra.Command {
	var mf monthFlags

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Overwrite the spreadsheet with the local grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "push").Logger().WithContext(ctx)

			year, month, err := mf.index()
			if err != nil {
				return err
			}
			resource, err := requireResource(o)
			if err != nil {
				return err
			}
			if err := connect(ctx, o); err != nil {
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

			if err := o.Session.Push(ctx, resource, habits, logs, year, month); err != nil {
				return errors.Errorf("pushing grid: %w", err)
			}

			o.UserLogger.Successf("pushed %s to the spreadsheet", habit.MonthLabel(year, month))
			return nil
		},
	}

	mf.add(cmd)
	return cmd
}

// NewPullCmd creates the pull command
func NewPullCmd(o *opts.RootOpts) *cobra.Command {
	var mf monthFlags

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Replace the local grid with the spreadsheet's contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "pull").Logger().WithContext(ctx)

			year, month, err := mf.index()
			if err != nil {
				return err
			}
			resource, err := requireResource(o)
			if err != nil {
				return err
			}
			if err := connect(ctx, o); err != nil {
				return err
			}

			habits, err := o.Gateway.Habits(ctx)
			if err != nil {
				return errors.Errorf("loading habits: %w", err)
			}

			result, err := o.Session.Pull(ctx, resource, habits, year, month)
			if err != nil {
				return errors.Errorf("pulling grid: %w", err)
			}

			return applyPull(cmd, o, result, year, month, "pulled")
		},
	}

	mf.add(cmd)
	return cmd
}

// NewMergeCmd creates the merge command
func NewMergeCmd(o *opts.RootOpts) *cobra.Command {
	var mf monthFlags

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge remote and local grids, keeping every checked day",
		Long: `Merge pulls the spreadsheet and unions it with the local grid for the
target month. Remote habits win on structure; a day checked on either
side stays checked. Local habits missing from the sheet are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "merge").Logger().WithContext(ctx)

			year, month, err := mf.index()
			if err != nil {
				return err
			}
			resource, err := requireResource(o)
			if err != nil {
				return err
			}
			if err := connect(ctx, o); err != nil {
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

			result, err := o.Session.SmartMerge(ctx, resource, habits, logs, year, month)
			if err != nil {
				return errors.Errorf("merging grids: %w", err)
			}

			return applyPull(cmd, o, result, year, month, "merged")
		},
	}

	mf.add(cmd)
	return cmd
}

// NewStatusCmd creates the status command
func NewStatusCmd(o *opts.RootOpts) *cobra.Command {
	var mf monthFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show drift between the local grid and the spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "status").Logger().WithContext(ctx)

			year, month, err := mf.index()
			if err != nil {
				return err
			}
			resource, err := requireResource(o)
			if err != nil {
				return err
			}
			if err := connect(ctx, o); err != nil {
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

			remote, err := o.Session.Pull(ctx, resource, habits, year, month)
			if err != nil {
				if errors.Is(err, sync.ErrNoRemoteData) {
					o.UserLogger.Warning("the spreadsheet is empty, push to populate it")
					return nil
				}
				return errors.Errorf("fetching remote grid: %w", err)
			}

			local := codec.RenderGrid(habits, logs, year, month, "TRUE", "FALSE")
			pulled := codec.RenderGrid(remote.Habits, remote.Logs, year, month, "TRUE", "FALSE")

			report := sync.Drift(local, pulled)
			if report == "" {
				o.UserLogger.Success("local grid and spreadsheet match")
				return nil
			}

			o.UserLogger.Warningf("grids differ for %s", habit.MonthLabel(year, month))
			fmt.Fprint(cmd.OutOrStdout(), report)
			return nil
		},
	}

	mf.add(cmd)
	return cmd
}

func applyPull(cmd *cobra.Command, o *opts.RootOpts, result *sync.PullResult, year, month int, verb string) error {
	ctx := cmd.Context()

	if err := o.Gateway.SetHabits(ctx, result.Habits); err != nil {
		return errors.Errorf("storing habits: %w", err)
	}
	if err := o.Gateway.SetLogs(ctx, result.Logs); err != nil {
		return errors.Errorf("storing logs: %w", err)
	}

	title := result.Title
	if title == "" {
		title = "the spreadsheet"
	}
	o.UserLogger.Successf("%s %s from %s", verb, habit.MonthLabel(year, month), title)
	return nil
}
