package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/habitgrid/habitgrid/pkg/codec"
	"github.com/habitgrid/habitgrid/pkg/habit"
)

// Remote grid layout: the month grid is written at the origin cell and
// read back from a generously bounded fixed range.
const (
	gridOrigin     = "A1"
	gridClearRange = "A1:ZZ1000"
	gridReadRange  = "A1:ZZ100"

	cellTrue  = "TRUE"
	cellFalse = "FALSE"
)

// PullResult is the state reconstructed from the remote grid.
type PullResult struct {
	Habits []habit.Habit
	Logs   habit.LogMap
	Title  string
}

// Push writes the month grid to the remote resource: a header row of day
// numbers, then one row per habit with TRUE/FALSE cells. The target range
// is cleared first on a best-effort basis: a clear failure is logged and
// the write proceeds. Two clients pushing concurrently will lose one
// update; this is the documented at-most-one-writer design.
func (s *Session) Push(ctx context.Context, resourceID string, habits []habit.Habit, logs habit.LogMap, year, month int) error {
	client, err := s.ready()
	if err != nil {
		return err
	}

	rows := codec.RenderGrid(habits, logs, year, month, cellTrue, cellFalse)

	if err := client.Clear(ctx, resourceID, gridClearRange); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("clearing remote grid failed, writing anyway")
	}

	if err := client.Update(ctx, resourceID, gridOrigin, rows); err != nil {
		return errors.Errorf("pushing grid: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("resource", resourceID).
		Int("habits", len(habits)).
		Str("month", habit.MonthLabel(year, month)).
		Msg("pushed month grid")
	return nil
}

// Pull reads the remote grid back into habits and logs. The resource title
// and the cell range are fetched concurrently. Rows with an empty habit
// name are skipped; known names keep their local ids, unknown ones mint
// fresh habits with the sigil deciding polarity. The fetched title is
// cached in the gateway.
func (s *Session) Pull(ctx context.Context, resourceID string, currentHabits []habit.Habit, year, month int) (*PullResult, error) {
	client, err := s.ready()
	if err != nil {
		return nil, err
	}

	var title string
	var rows [][]string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		title, err = client.Title(gctx, resourceID)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = client.Values(gctx, resourceID, gridReadRange)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("pulling grid: %w", err)
	}

	if len(rows) == 0 {
		return nil, ErrNoRemoteData
	}

	days := len(rows[0]) - 1
	now := time.Now().UnixMilli()

	result := &PullResult{Logs: habit.LogMap{}, Title: title}
	for i, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		name := row[0]

		var h habit.Habit
		if existing := habit.FindByName(currentHabits, name); existing != nil {
			h = *existing
		} else {
			h = habit.Habit{
				ID:   fmt.Sprintf("%d%d", now, i),
				Name: name,
				Kind: habit.KindHealth,
				XP:   habit.DefaultXP,
			}
			if habit.IsViceName(name) {
				h.Kind = habit.KindVice
				h.XP = -habit.DefaultXP
			}
		}
		result.Habits = append(result.Habits, h)

		for d := 1; d <= days; d++ {
			checked := d < len(row) && row[d] == cellTrue
			result.Logs[habit.NewLogKey(year, month, d, h.ID)] = checked
		}
	}

	if err := s.gw.SetSheetName(ctx, title); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("caching resource name failed")
	}

	return result, nil
}

// SmartMerge pulls the remote grid and reconciles it with local state:
// the remote habit list and log map are the base, local habits whose name
// has no remote match are appended, and for the target month every local
// true entry is forced true in the result. This is a one-directional
// union of positives: a local un-check never clears a remote true, since
// no per-entry timestamps exist to arbitrate.
func (s *Session) SmartMerge(ctx context.Context, resourceID string, localHabits []habit.Habit, localLogs habit.LogMap, year, month int) (*PullResult, error) {
	pulled, err := s.Pull(ctx, resourceID, localHabits, year, month)
	if err != nil {
		return nil, err
	}

	merged := &PullResult{
		Habits: pulled.Habits,
		Logs:   habit.LogMap{},
		Title:  pulled.Title,
	}
	for key, value := range pulled.Logs {
		merged.Logs[key] = value
	}

	for _, h := range localHabits {
		if habit.FindByName(merged.Habits, h.Name) == nil {
			merged.Habits = append(merged.Habits, h)
		}
	}

	prefix := habit.MonthPrefix(year, month)
	for key, value := range localLogs {
		if value && strings.HasPrefix(key, prefix) {
			merged.Logs[key] = true
		}
	}

	return merged, nil
}

// FetchResourceName reads only the remote resource's display name.
func (s *Session) FetchResourceName(ctx context.Context, resourceID string) (string, error) {
	client, err := s.ready()
	if err != nil {
		return "", err
	}
	title, err := client.Title(ctx, resourceID)
	if err != nil {
		return "", errors.Errorf("fetching resource name: %w", err)
	}
	return title, nil
}
