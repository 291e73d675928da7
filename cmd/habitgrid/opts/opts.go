package opts

import (
	"github.com/habitgrid/habitgrid/pkg/habit"
	"github.com/habitgrid/habitgrid/pkg/log"
	"github.com/habitgrid/habitgrid/pkg/store"
	"github.com/habitgrid/habitgrid/pkg/sync"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Gateway    *store.Gateway
	Settings   habit.Settings
	Session    *sync.Session
	UserLogger *log.Logger
}
