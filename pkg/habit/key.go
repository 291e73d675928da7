package habit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// LogKey identifies one (day, habit) cell of a month. Month is 0-based,
// matching the wire format "year-month-day-habitID" used in log maps,
// JSON exports and share tokens.
type LogKey struct {
	Year    int
	Month   int
	Day     int
	HabitID string
}

// DaysInMonth returns the day count of a 0-based month.
func DaysInMonth(year, month int) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthKey is the "year-month" prefix shared by all log keys of a month.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%d-%d", year, month)
}

// MonthLabel is the human 1-based "YYYY-MM" form used in filenames and the
// JSON export envelope.
func MonthLabel(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month+1)
}

func (k LogKey) String() string {
	return fmt.Sprintf("%s-%d-%s", MonthKey(k.Year, k.Month), k.Day, k.HabitID)
}

// NewLogKey builds the key for one cell. No range validation is performed
// on day; out-of-range days are simply never visited by month iteration.
func NewLogKey(year, month, day int, habitID string) string {
	return LogKey{Year: year, Month: month, Day: day, HabitID: habitID}.String()
}

// ParseLogKey splits a composite key back into its parts. The habit id is
// everything after the third delimiter, so ids that themselves contain the
// delimiter (e.g. "import-1700000000000-2") round-trip intact.
func ParseLogKey(key string) (LogKey, error) {
	parts := strings.SplitN(key, "-", 4)
	if len(parts) != 4 {
		return LogKey{}, errors.Errorf("malformed log key: %q", key)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return LogKey{}, errors.Errorf("parsing year in log key %q: %w", key, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return LogKey{}, errors.Errorf("parsing month in log key %q: %w", key, err)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return LogKey{}, errors.Errorf("parsing day in log key %q: %w", key, err)
	}
	return LogKey{Year: year, Month: month, Day: day, HabitID: parts[3]}, nil
}

// KeyHabitID extracts only the trailing habit-id component. Used where the
// full structured parse is not needed (share stat derivation).
func KeyHabitID(key string) string {
	parts := strings.SplitN(key, "-", 4)
	if len(parts) != 4 {
		return ""
	}
	return parts[3]
}

// MonthPrefix is the "year-month-" prefix that selects a month's keys.
func MonthPrefix(year, month int) string {
	return MonthKey(year, month) + "-"
}
