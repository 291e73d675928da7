package share

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitgrid/habitgrid/pkg/habit"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Logs: habit.LogMap{
			"2026-0-1-1": true,
			"2026-0-2-1": true,
			"2026-0-1-2": true,
			"2026-0-3-2": false,
		},
		Template: []habit.Habit{
			{ID: "1", Name: "Exercise", Kind: habit.KindHealth, XP: 15},
			{ID: "2", Name: "~Smoking", Kind: habit.KindVice, XP: -15},
		},
		Goal: 465,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	snap := sampleSnapshot()

	token, err := Encode(snap)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// URL-safe: no padding, no '+', no '/'.
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")

	got, ok := Decode(token)
	require.True(t, ok)
	assert.Equal(t, snap.Goal, got.Goal)
	assert.Equal(t, snap.Template, got.Template)
	assert.Equal(t, snap.Logs, got.Logs)
}

func TestDecodeCorruptTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not_base64", token: "!!not base64!!"},
		{name: "base64_not_deflate", token: "aGVsbG8gd29ybGQ"},
		{name: "truncated", token: mustEncode(t)[:8]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				snap, ok := Decode(tt.token)
				assert.False(t, ok)
				assert.Nil(t, snap)
			})
		})
	}
}

func mustEncode(t *testing.T) string {
	t.Helper()
	token, err := Encode(sampleSnapshot())
	require.NoError(t, err)
	return token
}

func TestDeriveStats(t *testing.T) {
	snap := sampleSnapshot()
	got := DeriveStats(&snap)

	// Two healthy completions (+15 each) and one indulged vice (-15).
	assert.Equal(t, 15, got.TotalXP)
	assert.Equal(t, 3, got.LogCount)
	assert.Equal(t, 2, got.Freq["1"])
	assert.Equal(t, -1, got.Freq["2"])
	assert.Equal(t, 30, got.Impact["1"])
	assert.Equal(t, -15, got.Impact["2"])
}

func TestDeriveStatsSkipsUnknownHabits(t *testing.T) {
	snap := Snapshot{
		Logs: habit.LogMap{
			"2026-0-1-ghost": true,
			"malformed":      true,
		},
		Template: []habit.Habit{{ID: "1", Name: "Run", Kind: habit.KindHealth, XP: 15}},
	}

	got := DeriveStats(&snap)
	assert.Equal(t, 0, got.TotalXP)
	assert.Equal(t, 0, got.LogCount)
}

func TestDeriveStatsIDWithDelimiters(t *testing.T) {
	// Imported habit ids contain the key delimiter; the trailing-component
	// extraction must still resolve them.
	id := "import-1700000000000-0"
	snap := Snapshot{
		Logs:     habit.LogMap{habit.NewLogKey(2026, 0, 1, id): true},
		Template: []habit.Habit{{ID: id, Name: "Stretch", Kind: habit.KindHealth, XP: 10}},
	}

	got := DeriveStats(&snap)
	assert.Equal(t, 10, got.TotalXP)
	assert.Equal(t, 1, got.Freq[id])
}

func TestDeriveStatsSigilAgreesWithKind(t *testing.T) {
	// The sigil drives the sign here while Kind is canonical elsewhere;
	// for normalized habits the two signals must produce the same sign.
	habits := []habit.Habit{
		habit.NormalizeKind(habit.Habit{Name: "~Soda", XP: 15}),
		habit.NormalizeKind(habit.Habit{Name: "Gym", XP: 15}),
	}
	habits[0].ID = "v"
	habits[1].ID = "h"

	snap := Snapshot{
		Logs: habit.LogMap{
			habit.NewLogKey(2026, 0, 1, "v"): true,
			habit.NewLogKey(2026, 0, 1, "h"): true,
		},
		Template: habits,
	}

	got := DeriveStats(&snap)
	assert.Negative(t, got.Impact["v"])
	assert.Positive(t, got.Impact["h"])
	// Kind-derived sign matches the sigil-derived one.
	assert.Equal(t, habits[0].XP, got.Impact["v"])
	assert.Equal(t, habits[1].XP, got.Impact["h"])
}

func TestQuoteBands(t *testing.T) {
	for _, p := range []int{0, 39, 40, 79, 80, 100} {
		q := Quote(p)
		assert.NotEmpty(t, q)
	}
}
