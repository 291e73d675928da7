package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/pkg/habit"
)

// ErrValidation marks malformed or empty import data. Import operations
// wrap it and apply no partial state change.
var ErrValidation = errors.New("invalid import data")

const (
	cellChecked   = "Checked"
	cellUnchecked = ""
)

// ExportCSV writes one month as CSV. Every field is quote-wrapped with
// internal quotes doubled; data cells are "Checked" or empty.
func ExportCSV(w io.Writer, habits []habit.Habit, logs habit.LogMap, year, month int) error {
	rows := RenderGrid(habits, logs, year, month, cellChecked, cellUnchecked)

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, field := range row {
			cells[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, ",")); err != nil {
			return errors.Errorf("writing csv row: %w", err)
		}
	}
	return nil
}

// ImportCSV parses an exported (or hand-edited) month grid. Habits are
// resolved by exact name against currentHabits, keeping their ids; unknown
// names mint fresh habits. The name's vice sigil is authoritative over any
// previous kind or XP sign. The target month's log entries are replaced
// wholesale; keys outside the month are untouched.
func ImportCSV(r io.Reader, currentHabits []habit.Habit, currentLogs habit.LogMap, year, month int) ([]habit.Habit, habit.LogMap, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.Errorf("%w: parsing csv: %v", ErrValidation, err)
	}
	if len(records) == 0 {
		return nil, nil, errors.Errorf("%w: csv file is empty", ErrValidation)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, nil, errors.Errorf("%w: csv needs at least one day column", ErrValidation)
	}
	days := len(header) - 1

	byName := make(map[string]habit.Habit, len(currentHabits))
	for _, h := range currentHabits {
		byName[h.Name] = h
	}

	now := time.Now().UnixMilli()
	var imported []habit.Habit
	monthUpdates := habit.LogMap{}

	for i, row := range records[1:] {
		name := ""
		if len(row) > 0 {
			name = strings.TrimSpace(row[0])
		}
		if name == "" {
			continue
		}

		h, ok := byName[name]
		if !ok {
			h = habit.Habit{
				ID:   fmt.Sprintf("import-%d-%d", now, i),
				Name: name,
				Kind: habit.KindHealth,
				XP:   habit.DefaultXP,
			}
		}
		// The imported name decides polarity, flipping a stale kind and
		// XP sign while preserving the magnitude.
		h.Name = name
		h = habit.ForceKind(h, habit.IsViceName(name))

		byName[name] = h
		imported = append(imported, h)

		for d := 1; d <= days; d++ {
			cell := ""
			if d < len(row) {
				cell = row[d]
			}
			monthUpdates[habit.NewLogKey(year, month, d, h.ID)] = IsCheckedCell(cell)
		}
	}

	if len(imported) == 0 {
		return nil, nil, errors.Errorf("%w: no habit rows detected in csv", ErrValidation)
	}

	merged := habit.LogMap{}
	prefix := habit.MonthPrefix(year, month)
	for key, value := range currentLogs {
		if !strings.HasPrefix(key, prefix) {
			merged[key] = value
		}
	}
	for key, value := range monthUpdates {
		merged[key] = value
	}

	return imported, merged, nil
}

func normalizeCell(cell string) string {
	return strings.ToLower(strings.TrimSpace(cell))
}
