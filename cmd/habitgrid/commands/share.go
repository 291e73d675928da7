package commands

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/cmd/habitgrid/opts"
	"github.com/habitgrid/habitgrid/pkg/habit"
	"github.com/habitgrid/habitgrid/pkg/share"
	"github.com/habitgrid/habitgrid/pkg/stats"
)

// NewShareCmd creates the share command
func NewShareCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode the tracker into a share token, or inspect one",
	}

	cmd.AddCommand(newShareEncodeCmd(o), newShareDecodeCmd(o))

	return cmd
}

func newShareEncodeCmd(o *opts.RootOpts) *cobra.Command {
	var mf monthFlags

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Produce a read-only share token for the tracker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "share encode").Logger().WithContext(ctx)

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

			token, err := share.Encode(share.Snapshot{
				Logs:     logs,
				Template: habits,
				Goal:     o.Settings.MonthlyGoal,
			})
			if err != nil {
				return errors.Errorf("encoding share token: %w", err)
			}

			s := stats.Compute(habits, logs, year, month, o.Settings.MonthlyGoal)

			fmt.Fprintln(cmd.OutOrStdout(), token)
			o.UserLogger.Info(share.Quote(s.CompletionRate))
			return nil
		},
	}

	mf.add(cmd)
	return cmd
}

func newShareDecodeCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <token>",
		Short: "Inspect a share token without touching local state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, ok := share.Decode(args[0])
			if !ok {
				return errors.New("share token is corrupt or truncated")
			}

			derived := share.DeriveStats(snap)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "total xp:     %d\n", derived.TotalXP)
			fmt.Fprintf(out, "checked days: %d\n", derived.LogCount)
			fmt.Fprintf(out, "goal:         %d xp\n", snap.Goal)
			fmt.Fprintln(out)

			names := make(map[string]string, len(snap.Template))
			for _, h := range snap.Template {
				names[h.ID] = habit.DisplayName(h.Name)
			}

			ids := make([]string, 0, len(derived.Freq))
			for id := range derived.Freq {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			for _, id := range ids {
				name := names[id]
				if name == "" {
					name = id
				}
				fmt.Fprintf(out, "%-28s %+d times, %+d xp\n", name, derived.Freq[id], derived.Impact[id])
			}
			return nil
		},
	}
}
