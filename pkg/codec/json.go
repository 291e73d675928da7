package codec

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/pkg/habit"
	"github.com/habitgrid/habitgrid/pkg/store"
)

// MonthDescriptor locates the exported month. MonthIndex is 0-based; Label
// is the human 1-based "YYYY-MM" form.
type MonthDescriptor struct {
	Label      string `json:"label"`
	Year       int    `json:"year"`
	MonthIndex int    `json:"monthIndex"`
	Key        string `json:"key"`
}

// Envelope is the JSON export format. StorageSnapshot carries every
// durable slot verbatim for full-fidelity backup and restore.
type Envelope struct {
	ExportedAt      string            `json:"exportedAt"`
	Month           MonthDescriptor   `json:"month"`
	Habits          []habit.Habit     `json:"habits"`
	Logs            habit.LogMap      `json:"logs"`
	StorageSnapshot map[string]string `json:"storageSnapshot"`
}

// ImportResult is what a JSON import hands back to the caller. Year and
// Month reflect the envelope's month descriptor when present, so the
// caller can redirect its displayed month.
type ImportResult struct {
	Habits []habit.Habit
	Logs   habit.LogMap
	Year   int
	Month  int
}

// ExportJSON writes the full tracker state, including a raw dump of every
// durable storage slot.
func ExportJSON(ctx context.Context, w io.Writer, gw *store.Gateway, habits []habit.Habit, logs habit.LogMap, year, month int) error {
	snapshot, err := gw.Snapshot(ctx)
	if err != nil {
		return errors.Errorf("dumping storage snapshot: %w", err)
	}
	if habits == nil {
		habits = []habit.Habit{}
	}
	if logs == nil {
		logs = habit.LogMap{}
	}

	env := Envelope{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Month: MonthDescriptor{
			Label:      habit.MonthLabel(year, month),
			Year:       year,
			MonthIndex: month,
			Key:        habit.MonthKey(year, month),
		},
		Habits:          habits,
		Logs:            logs,
		StorageSnapshot: snapshot,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return errors.Errorf("encoding export envelope: %w", err)
	}
	return nil
}

// rawEnvelope tolerates partially-typed fields so that habit entries with
// a missing or non-numeric xp can still be normalized.
type rawEnvelope struct {
	Month  *MonthDescriptor           `json:"month"`
	Habits []rawHabit                 `json:"habits"`
	Logs   map[string]json.RawMessage `json:"logs"`

	StorageSnapshot map[string]string `json:"storageSnapshot"`
}

type rawHabit struct {
	ID   string           `json:"id"`
	Name string           `json:"name"`
	Kind habit.Kind       `json:"type"`
	XP   *json.RawMessage `json:"xp"`
}

// ImportJSON restores state from an export envelope. Kind is normalized
// from the explicit field or the name sigil, with the XP sign forced to
// match. When a storage snapshot is present every slot is written back
// raw, a full overwrite rather than a merge.
func ImportJSON(ctx context.Context, r io.Reader, gw *store.Gateway, currentYear, currentMonth int) (*ImportResult, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Errorf("reading import payload: %w", err)
	}

	var env rawEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, errors.Errorf("%w: parsing json: %v", ErrValidation, err)
	}
	if env.Habits == nil || env.Logs == nil {
		return nil, errors.Errorf("%w: json file is missing required fields", ErrValidation)
	}

	result := &ImportResult{Year: currentYear, Month: currentMonth}
	if env.Month != nil {
		result.Year = env.Month.Year
		if env.Month.MonthIndex >= 0 && env.Month.MonthIndex <= 11 {
			result.Month = env.Month.MonthIndex
		}
	}

	now := time.Now().UnixMilli()
	for i, raw := range env.Habits {
		if raw.Name == "" {
			continue
		}
		h := habit.Habit{
			ID:   raw.ID,
			Name: raw.Name,
			Kind: raw.Kind,
			XP:   decodeXP(raw.XP),
		}
		if h.ID == "" {
			h.ID = fmt.Sprintf("import-%d-%d", now, i)
		}
		result.Habits = append(result.Habits, habit.NormalizeKind(h))
	}

	result.Logs = habit.LogMap{}
	for key, raw := range env.Logs {
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		result.Logs[key] = v
	}

	if len(env.StorageSnapshot) > 0 {
		if err := gw.Restore(ctx, env.StorageSnapshot); err != nil {
			return nil, errors.Errorf("restoring storage snapshot: %w", err)
		}
	}

	return result, nil
}

func decodeXP(raw *json.RawMessage) int {
	if raw == nil {
		return habit.DefaultXP
	}
	var xp float64
	if err := json.Unmarshal(*raw, &xp); err != nil {
		return habit.DefaultXP
	}
	return int(xp)
}
