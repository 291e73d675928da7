package store

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/pkg/habit"
)

// Slot names. These are the durable storage contract; the JSON export's
// storageSnapshot carries them verbatim, so renaming breaks old backups.
const (
	SlotHabits      = "habit_template"
	SlotLogs        = "habit_logs"
	SlotAPIKey      = "g_api_key"
	SlotClientID    = "g_client_id"
	SlotResourceID  = "g_sheet_id"
	SlotCloudSync   = "cloud_sync_enabled"
	SlotMonthlyGoal = "monthly_goal"
	SlotAccessToken = "g_access_token"
	SlotTokenExpiry = "g_token_expiry"
	SlotSheetName   = "g_sheet_name"
)

// Gateway exposes typed accessors over the raw KV slots. Habit list and
// log map round-trip through JSON; booleans and integers are stored as
// their string representation.
type Gateway struct {
	kv KV
}

func NewGateway(kv KV) *Gateway {
	return &Gateway{kv: kv}
}

func (g *Gateway) Close() error { return g.kv.Close() }

// Habits loads the habit template. A missing slot is an empty list.
func (g *Gateway) Habits(ctx context.Context) ([]habit.Habit, error) {
	raw, ok, err := g.kv.Get(ctx, SlotHabits)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []habit.Habit{}, nil
	}
	var habits []habit.Habit
	if err := json.Unmarshal([]byte(raw), &habits); err != nil {
		return nil, errors.Errorf("decoding habit template: %w", err)
	}
	return habits, nil
}

func (g *Gateway) SetHabits(ctx context.Context, habits []habit.Habit) error {
	raw, err := json.Marshal(habits)
	if err != nil {
		return errors.Errorf("encoding habit template: %w", err)
	}
	return g.kv.Set(ctx, SlotHabits, string(raw))
}

// SeedDefaultHabits writes the starter template if no habits exist yet and
// returns the resulting list.
func (g *Gateway) SeedDefaultHabits(ctx context.Context) ([]habit.Habit, error) {
	habits, err := g.Habits(ctx)
	if err != nil {
		return nil, err
	}
	if len(habits) > 0 {
		return habits, nil
	}
	habits = habit.DefaultHabits()
	if err := g.SetHabits(ctx, habits); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Int("habits", len(habits)).Msg("seeded default habit template")
	return habits, nil
}

// Logs loads the full sparse log map. A missing slot is an empty map.
func (g *Gateway) Logs(ctx context.Context) (habit.LogMap, error) {
	raw, ok, err := g.kv.Get(ctx, SlotLogs)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return habit.LogMap{}, nil
	}
	var logs habit.LogMap
	if err := json.Unmarshal([]byte(raw), &logs); err != nil {
		return nil, errors.Errorf("decoding habit logs: %w", err)
	}
	return logs, nil
}

func (g *Gateway) SetLogs(ctx context.Context, logs habit.LogMap) error {
	raw, err := json.Marshal(logs)
	if err != nil {
		return errors.Errorf("encoding habit logs: %w", err)
	}
	return g.kv.Set(ctx, SlotLogs, string(raw))
}

// DeleteHabit removes a habit from the template and sweeps every log entry
// referencing it.
func (g *Gateway) DeleteHabit(ctx context.Context, id string) error {
	habits, err := g.Habits(ctx)
	if err != nil {
		return err
	}
	kept := habits[:0]
	for _, h := range habits {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	if err := g.SetHabits(ctx, kept); err != nil {
		return err
	}

	logs, err := g.Logs(ctx)
	if err != nil {
		return err
	}
	for key := range logs {
		if habit.KeyHabitID(key) == id {
			delete(logs, key)
		}
	}
	return g.SetLogs(ctx, logs)
}

// Settings loads the settings slots. A zero monthly goal is lazily
// initialized to 15 XP per day of the current month and written back.
func (g *Gateway) Settings(ctx context.Context) (habit.Settings, error) {
	return g.settingsAt(ctx, time.Now())
}

func (g *Gateway) settingsAt(ctx context.Context, now time.Time) (habit.Settings, error) {
	var s habit.Settings
	var err error
	if s.APIKey, err = g.getString(ctx, SlotAPIKey); err != nil {
		return s, err
	}
	if s.ClientID, err = g.getString(ctx, SlotClientID); err != nil {
		return s, err
	}
	if s.ResourceID, err = g.getString(ctx, SlotResourceID); err != nil {
		return s, err
	}
	raw, _, err := g.kv.Get(ctx, SlotCloudSync)
	if err != nil {
		return s, err
	}
	s.SyncEnabled = raw == "true"

	raw, _, err = g.kv.Get(ctx, SlotMonthlyGoal)
	if err != nil {
		return s, err
	}
	s.MonthlyGoal, _ = strconv.Atoi(raw)

	if s.MonthlyGoal == 0 {
		days := habit.DaysInMonth(now.Year(), int(now.Month())-1)
		s.MonthlyGoal = habit.DefaultXP * days
		if err := g.kv.Set(ctx, SlotMonthlyGoal, strconv.Itoa(s.MonthlyGoal)); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (g *Gateway) SetSettings(ctx context.Context, s habit.Settings) error {
	pairs := map[string]string{
		SlotAPIKey:      s.APIKey,
		SlotClientID:    s.ClientID,
		SlotResourceID:  s.ResourceID,
		SlotCloudSync:   strconv.FormatBool(s.SyncEnabled),
		SlotMonthlyGoal: strconv.Itoa(s.MonthlyGoal),
	}
	for key, value := range pairs {
		if err := g.kv.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Token returns the cached bearer token and its absolute expiry. A zero
// time means no token is cached.
func (g *Gateway) Token(ctx context.Context) (string, time.Time, error) {
	token, err := g.getString(ctx, SlotAccessToken)
	if err != nil {
		return "", time.Time{}, err
	}
	raw, _, err := g.kv.Get(ctx, SlotTokenExpiry)
	if err != nil {
		return "", time.Time{}, err
	}
	ms, _ := strconv.ParseInt(raw, 10, 64)
	if token == "" || ms == 0 {
		return token, time.Time{}, nil
	}
	return token, time.UnixMilli(ms), nil
}

func (g *Gateway) SetToken(ctx context.Context, token string, expiry time.Time) error {
	if err := g.kv.Set(ctx, SlotAccessToken, token); err != nil {
		return err
	}
	return g.kv.Set(ctx, SlotTokenExpiry, strconv.FormatInt(expiry.UnixMilli(), 10))
}

func (g *Gateway) ClearToken(ctx context.Context) error {
	if err := g.kv.Delete(ctx, SlotAccessToken); err != nil {
		return err
	}
	return g.kv.Delete(ctx, SlotTokenExpiry)
}

func (g *Gateway) SheetName(ctx context.Context) (string, error) {
	return g.getString(ctx, SlotSheetName)
}

func (g *Gateway) SetSheetName(ctx context.Context, name string) error {
	return g.kv.Set(ctx, SlotSheetName, name)
}

// Snapshot dumps every slot for the full-fidelity JSON export.
func (g *Gateway) Snapshot(ctx context.Context) (map[string]string, error) {
	return g.kv.All(ctx)
}

// Restore writes a raw snapshot back, overwriting slot by slot. This is the
// "import the whole machine state" escape hatch; it is not a merge.
func (g *Gateway) Restore(ctx context.Context, snapshot map[string]string) error {
	for key, value := range snapshot {
		if strings.TrimSpace(key) == "" {
			continue
		}
		if err := g.kv.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gateway) getString(ctx context.Context, key string) (string, error) {
	v, _, err := g.kv.Get(ctx, key)
	return v, err
}
