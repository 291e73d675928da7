package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/cmd/habitgrid/opts"
)

// monthFlags binds --year and --month (1-12) to a command, defaulting to
// the current month.
type monthFlags struct {
	year  int
	month int
}

func (m *monthFlags) add(cmd *cobra.Command) {
	now := time.Now()
	cmd.Flags().IntVar(&m.year, "year", now.Year(), "calendar year")
	cmd.Flags().IntVar(&m.month, "month", int(now.Month()), "calendar month (1-12)")
}

// index returns the zero-based month used by log keys.
func (m *monthFlags) index() (int, int, error) {
	if m.month < 1 || m.month > 12 {
		return 0, 0, errors.Errorf("month must be 1-12, got %d", m.month)
	}
	return m.year, m.month - 1, nil
}

// connect brings the session up and authenticates it, prompting for
// consent only when no cached token survives.
func connect(ctx context.Context, o *opts.RootOpts) error {
	if err := o.Session.Connect(ctx, o.Settings.APIKey, o.Settings.ClientID); err != nil {
		return errors.Errorf("connecting: %w", err)
	}
	if !o.Session.IsAuthenticated() {
		if err := o.Session.RequestToken(ctx); err != nil {
			return errors.Errorf("requesting token: %w", err)
		}
	}
	return nil
}

func requireResource(o *opts.RootOpts) (string, error) {
	if o.Settings.ResourceID == "" {
		return "", errors.New("no spreadsheet configured, set resource_id in the settings file")
	}
	return o.Settings.ResourceID, nil
}
