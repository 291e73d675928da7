package habit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		want  int
	}{
		{name: "january", year: 2026, month: 0, want: 31},
		{name: "february_common", year: 2026, month: 1, want: 28},
		{name: "february_leap", year: 2024, month: 1, want: 29},
		{name: "april", year: 2026, month: 3, want: 30},
		{name: "december", year: 2026, month: 11, want: 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysInMonth(tt.year, tt.month))
		})
	}
}

func TestLogKeyRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		key     LogKey
		encoded string
	}{
		{
			name:    "plain_id",
			key:     LogKey{Year: 2026, Month: 0, Day: 1, HabitID: "1"},
			encoded: "2026-0-1-1",
		},
		{
			name:    "id_with_delimiters",
			key:     LogKey{Year: 2026, Month: 11, Day: 31, HabitID: "import-1700000000000-2"},
			encoded: "2026-11-31-import-1700000000000-2",
		},
		{
			name:    "uuid_id",
			key:     LogKey{Year: 2025, Month: 5, Day: 15, HabitID: "a81bc81b-dead-4e5d-abff-90865d1e13b1"},
			encoded: "2025-5-15-a81bc81b-dead-4e5d-abff-90865d1e13b1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.encoded, tt.key.String())

			parsed, err := ParseLogKey(tt.encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.key, parsed)
			assert.Equal(t, tt.key.HabitID, KeyHabitID(tt.encoded))
		})
	}
}

func TestParseLogKeyMalformed(t *testing.T) {
	for _, key := range []string{"", "2026", "2026-0", "2026-0-1", "x-0-1-id", "2026-x-1-id"} {
		_, err := ParseLogKey(key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestNewHabit(t *testing.T) {
	h := New("Exercise")
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, KindHealth, h.Kind)
	assert.Equal(t, DefaultXP, h.XP)

	v := New("~Smoking")
	assert.Equal(t, KindVice, v.Kind)
	assert.Equal(t, -DefaultXP, v.XP)
	assert.NotEqual(t, h.ID, v.ID)
}

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		name     string
		in       Habit
		wantKind Kind
		wantXP   int
	}{
		{
			name:     "health_stays",
			in:       Habit{Name: "Run", Kind: KindHealth, XP: 20},
			wantKind: KindHealth,
			wantXP:   20,
		},
		{
			name:     "sigil_overrides_kind",
			in:       Habit{Name: "~Soda", Kind: KindHealth, XP: 10},
			wantKind: KindVice,
			wantXP:   -10,
		},
		{
			name:     "vice_kind_without_sigil",
			in:       Habit{Name: "Doomscrolling", Kind: KindVice, XP: 15},
			wantKind: KindVice,
			wantXP:   -15,
		},
		{
			name:     "zero_xp_defaults",
			in:       Habit{Name: "Read", Kind: KindHealth},
			wantKind: KindHealth,
			wantXP:   DefaultXP,
		},
		{
			name:     "vice_magnitude_preserved",
			in:       Habit{Name: "~Smoking", Kind: KindVice, XP: -30},
			wantKind: KindVice,
			wantXP:   -30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeKind(tt.in)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantXP, got.XP)
		})
	}
}

func TestSigilHelpers(t *testing.T) {
	assert.True(t, IsViceName("~Smoking"))
	assert.False(t, IsViceName("Smoking"))
	assert.Equal(t, "Smoking", DisplayName("~Smoking"))
	assert.Equal(t, "smoking", NormalizeName(" ~Smoking "))

	v := Habit{Name: "Smoking", Kind: KindVice, XP: -15}
	assert.Equal(t, "~Smoking", v.SigilName())
	h := Habit{Name: "~Oops", Kind: KindHealth, XP: 15}
	assert.Equal(t, "Oops", h.SigilName())
}
