package codec

import (
	"strconv"

	"github.com/habitgrid/habitgrid/pkg/habit"
)

// RenderGrid lays one month out as rows: a header of "Habit Name" plus day
// numbers, then one row per habit with checked/unchecked per day. CSV
// export and the remote grid share this layout and differ only in cell
// literals ("Checked"/"" vs "TRUE"/"FALSE").
func RenderGrid(habits []habit.Habit, logs habit.LogMap, year, month int, checked, unchecked string) [][]string {
	days := habit.DaysInMonth(year, month)

	header := make([]string, 0, days+1)
	header = append(header, "Habit Name")
	for d := 1; d <= days; d++ {
		header = append(header, strconv.Itoa(d))
	}

	rows := make([][]string, 0, len(habits)+1)
	rows = append(rows, header)
	for _, h := range habits {
		row := make([]string, 0, days+1)
		row = append(row, h.Name)
		for d := 1; d <= days; d++ {
			if logs[habit.NewLogKey(year, month, d, h.ID)] {
				row = append(row, checked)
			} else {
				row = append(row, unchecked)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// IsCheckedCell reports whether an imported cell counts as completed. A
// broad synonym set is accepted, case-insensitively.
func IsCheckedCell(cell string) bool {
	switch normalizeCell(cell) {
	case "true", "1", "yes", "y", "checked", "✓":
		return true
	default:
		return false
	}
}
