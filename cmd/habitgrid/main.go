package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/habitgrid/habitgrid/cmd/habitgrid/commands"
	"github.com/habitgrid/habitgrid/cmd/habitgrid/opts"
)

func main() {
	root := &cobra.Command{
		Use:           "habitgrid",
		Short:         "Track habits, score them, and sync the grid to a spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addRootFlags(root)

	cobra.OnInitialize(setupLogging)

	// Commands share one dependency set, populated after flag parsing so
	// the database opens at the path the flags selected.
	o := &opts.RootOpts{}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		built, err := newRootOpts(cmd.Context())
		if err != nil {
			return err
		}
		*o = *built
		return nil
	}

	root.AddCommand(
		commands.NewHabitCmd(o),
		commands.NewCheckCmd(o),
		commands.NewUncheckCmd(o),
		commands.NewStatsCmd(o),
		commands.NewExportCmd(o),
		commands.NewImportCmd(o),
		commands.NewPushCmd(o),
		commands.NewPullCmd(o),
		commands.NewMergeCmd(o),
		commands.NewStatusCmd(o),
		commands.NewShareCmd(o),
		commands.NewSignOutCmd(o),
	)

	ctx := context.Background()
	if err := root.ExecuteContext(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
