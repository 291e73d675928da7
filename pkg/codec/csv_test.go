package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/habitgrid/habitgrid/pkg/habit"
)

func sampleHabits() []habit.Habit {
	return []habit.Habit{
		{ID: "1", Name: "Exercise", Kind: habit.KindHealth, XP: 15},
		{ID: "2", Name: "~Smoking", Kind: habit.KindVice, XP: -15},
	}
}

func TestExportCSVFormat(t *testing.T) {
	logs := habit.LogMap{
		habit.NewLogKey(2026, 1, 1, "1"): true,
		habit.NewLogKey(2026, 1, 3, "2"): true,
	}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, sampleHabits(), logs, 2026, 1))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	// Header: habit-name column plus one column per day of February.
	header := strings.Split(lines[0], ",")
	require.Len(t, header, 29)
	assert.Equal(t, `"Habit Name"`, header[0])
	assert.Equal(t, `"1"`, header[1])
	assert.Equal(t, `"28"`, header[28])

	row := strings.Split(lines[1], ",")
	assert.Equal(t, `"Exercise"`, row[0])
	assert.Equal(t, `"Checked"`, row[1])
	assert.Equal(t, `""`, row[2])

	row = strings.Split(lines[2], ",")
	assert.Equal(t, `"~Smoking"`, row[0])
	assert.Equal(t, `"Checked"`, row[3])
}

func TestExportCSVQuoting(t *testing.T) {
	habits := []habit.Habit{{ID: "1", Name: `Say "no", daily`, Kind: habit.KindHealth, XP: 15}}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, habits, habit.LogMap{}, 2026, 0))

	assert.Contains(t, buf.String(), `"Say ""no"", daily"`)
}

func TestCSVRoundTrip(t *testing.T) {
	habits := sampleHabits()
	logs := habit.LogMap{
		habit.NewLogKey(2026, 1, 1, "1"):  true,
		habit.NewLogKey(2026, 1, 14, "1"): true,
		habit.NewLogKey(2026, 1, 3, "2"):  true,
		// A key outside the imported month must survive untouched.
		habit.NewLogKey(2026, 0, 5, "1"): true,
	}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, habits, logs, 2026, 1))

	gotHabits, gotLogs, err := ImportCSV(&buf, habits, logs, 2026, 1)
	require.NoError(t, err)

	assert.Equal(t, habits, gotHabits)
	for key, v := range logs {
		assert.Equal(t, v, gotLogs[key], "key %s", key)
	}
	assert.True(t, gotLogs[habit.NewLogKey(2026, 0, 5, "1")])
}

func TestImportCSVReplacesMonthWholesale(t *testing.T) {
	current := sampleHabits()
	currentLogs := habit.LogMap{
		habit.NewLogKey(2026, 1, 20, "1"): true, // will be dropped
		habit.NewLogKey(2025, 11, 2, "1"): true, // other month, kept
	}

	input := "\"Habit Name\",\"1\",\"2\"\n\"Exercise\",\"yes\",\"\"\n"
	gotHabits, gotLogs, err := ImportCSV(strings.NewReader(input), current, currentLogs, 2026, 1)
	require.NoError(t, err)

	require.Len(t, gotHabits, 1)
	assert.Equal(t, "1", gotHabits[0].ID)

	assert.True(t, gotLogs[habit.NewLogKey(2026, 1, 1, "1")])
	assert.False(t, gotLogs[habit.NewLogKey(2026, 1, 20, "1")])
	assert.True(t, gotLogs[habit.NewLogKey(2025, 11, 2, "1")])
}

func TestImportCSVCheckedSynonyms(t *testing.T) {
	input := "\"Habit Name\",\"1\",\"2\",\"3\",\"4\",\"5\",\"6\",\"7\"\n" +
		"\"Read\",\"true\",\"1\",\"YES\",\" y \",\"Checked\",\"✓\",\"nope\"\n"

	gotHabits, gotLogs, err := ImportCSV(strings.NewReader(input), nil, habit.LogMap{}, 2026, 0)
	require.NoError(t, err)
	require.Len(t, gotHabits, 1)

	id := gotHabits[0].ID
	for d := 1; d <= 6; d++ {
		assert.True(t, gotLogs[habit.NewLogKey(2026, 0, d, id)], "day %d", d)
	}
	assert.False(t, gotLogs[habit.NewLogKey(2026, 0, 7, id)])
}

func TestImportCSVSigilAuthoritative(t *testing.T) {
	// A habit that used to be healthy arrives with the vice sigil: kind
	// flips and the XP sign follows, magnitude kept.
	current := []habit.Habit{{ID: "9", Name: "~Soda", Kind: habit.KindHealth, XP: 20}}
	input := "\"Habit Name\",\"1\"\n\"~Soda\",\"\"\n\"Gym\",\"1\"\n"

	gotHabits, gotLogs, err := ImportCSV(strings.NewReader(input), current, habit.LogMap{}, 2026, 0)
	require.NoError(t, err)
	require.Len(t, gotHabits, 2)

	assert.Equal(t, "9", gotHabits[0].ID)
	assert.Equal(t, habit.KindVice, gotHabits[0].Kind)
	assert.Equal(t, -20, gotHabits[0].XP)

	// Unknown names mint fresh habits with defaults.
	minted := gotHabits[1]
	assert.NotEmpty(t, minted.ID)
	assert.Equal(t, habit.KindHealth, minted.Kind)
	assert.Equal(t, habit.DefaultXP, minted.XP)
	assert.True(t, gotLogs[habit.NewLogKey(2026, 0, 1, minted.ID)])
}

func TestImportCSVEmbeddedDelimiters(t *testing.T) {
	input := "\"Habit Name\",\"1\"\n\"Walk, then\nstretch\",\"1\"\n"

	gotHabits, _, err := ImportCSV(strings.NewReader(input), nil, habit.LogMap{}, 2026, 0)
	require.NoError(t, err)
	require.Len(t, gotHabits, 1)
	assert.Equal(t, "Walk, then\nstretch", gotHabits[0].Name)
}

func TestImportCSVValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty_file", input: ""},
		{name: "header_only_no_rows", input: "\"Habit Name\",\"1\",\"2\"\n"},
		{name: "no_day_columns", input: "\"Habit Name\"\n\"Exercise\"\n"},
		{name: "only_blank_names", input: "\"Habit Name\",\"1\"\n\"\",\"1\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ImportCSV(strings.NewReader(tt.input), nil, habit.LogMap{}, 2026, 0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}
