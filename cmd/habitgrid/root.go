package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2"

	"github.com/habitgrid/habitgrid/cmd/habitgrid/opts"
	"github.com/habitgrid/habitgrid/pkg/config"
	"github.com/habitgrid/habitgrid/pkg/log"
	"github.com/habitgrid/habitgrid/pkg/store"
	"github.com/habitgrid/habitgrid/pkg/sync"
)

var (
	// Flags
	dbPath     string
	configFile string
	debug      bool
)

// newRootOpts creates a new rootOpts with initialized dependencies
func newRootOpts(ctx context.Context) (*opts.RootOpts, error) {
	// Create user logger
	userLogger := log.New(os.Stdout, zerolog.InfoLevel)

	path := dbPath
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, errors.Errorf("resolving database path: %w", err)
		}
	}

	kv, err := store.OpenSQLite(ctx, path)
	if err != nil {
		return nil, errors.Errorf("opening database: %w", err)
	}
	gw := store.NewGateway(kv)

	if _, err := gw.SeedDefaultHabits(ctx); err != nil {
		return nil, errors.Errorf("seeding default habits: %w", err)
	}

	// Layer an optional settings file over the stored settings
	if configFile != "" {
		cfg, err := config.Load(ctx, configFile)
		if err != nil {
			return nil, errors.Errorf("loading settings file: %w", err)
		}
		if err := cfg.Apply(ctx, gw); err != nil {
			return nil, errors.Errorf("applying settings file: %w", err)
		}
	}

	settings, err := gw.Settings(ctx)
	if err != nil {
		return nil, errors.Errorf("loading settings: %w", err)
	}

	auth := &sync.DeviceAuthenticator{
		Config: &oauth2.Config{
			ClientID: settings.ClientID,
			Endpoint: oauth2.Endpoint{
				AuthURL:       "https://accounts.google.com/o/oauth2/auth",
				TokenURL:      "https://oauth2.googleapis.com/token",
				DeviceAuthURL: "https://oauth2.googleapis.com/device/code",
			},
			Scopes: []string{"https://www.googleapis.com/auth/spreadsheets"},
		},
		Prompt:    os.Stderr,
		RevokeURL: "https://oauth2.googleapis.com/revoke",
	}

	return &opts.RootOpts{
		Gateway:    gw,
		Settings:   settings,
		Session:    sync.New(gw, auth),
		UserLogger: userLogger,
	}, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file path (defaults to ~/.habitgrid.db)")
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "settings file path (yaml or hcl)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
