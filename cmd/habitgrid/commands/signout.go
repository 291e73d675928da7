package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/cmd/habitgrid/opts"
)

// NewSignOutCmd creates the signout command
func NewSignOutCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Revoke the remote session and clear the cached token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "signout").Logger().WithContext(ctx)

			// Restore the cached token first so it gets revoked, not just
			// dropped. Without credentials the local copy is still cleared.
			if o.Settings.APIKey != "" && o.Settings.ClientID != "" {
				if err := o.Session.Connect(ctx, o.Settings.APIKey, o.Settings.ClientID); err != nil {
					return errors.Errorf("connecting: %w", err)
				}
			}
			if err := o.Session.SignOut(ctx); err != nil {
				return errors.Errorf("signing out: %w", err)
			}

			o.UserLogger.Success("signed out")
			return nil
		},
	}
}
