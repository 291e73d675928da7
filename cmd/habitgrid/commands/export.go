package commands

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/cmd/habitgrid/opts"
	"github.com/habitgrid/habitgrid/pkg/codec"
)

// NewExportCmd creates the export command
func NewExportCmd(o *opts.RootOpts) *cobra.Command {
	var mf monthFlags
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <csv|json>",
		Short: "Export the tracker to a file",
		Long: `Export writes the current month's grid as CSV, or the full tracker
state (habits, logs and every storage slot) as JSON.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"csv", "json"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "export").Logger().WithContext(ctx)

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

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return errors.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			switch args[0] {
			case "csv":
				err = codec.ExportCSV(w, habits, logs, year, month)
			case "json":
				err = codec.ExportJSON(ctx, w, o.Gateway, habits, logs, year, month)
			default:
				return errors.Errorf("unknown export format: %s", args[0])
			}
			if err != nil {
				return errors.Errorf("exporting: %w", err)
			}

			if outPath != "" {
				o.UserLogger.Successf("exported %s to %s", args[0], outPath)
			}
			return nil
		},
	}

	mf.add(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (defaults to stdout)")

	return cmd
}
