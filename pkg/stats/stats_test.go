package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitgrid/habitgrid/pkg/habit"
)

func testHabits() []habit.Habit {
	return []habit.Habit{
		{ID: "1", Name: "Exercise", Kind: habit.KindHealth, XP: 15},
		{ID: "2", Name: "~Smoking", Kind: habit.KindVice, XP: -15},
	}
}

func TestComputeMixedKinds(t *testing.T) {
	// January 2026, day 1: one health completion and one vice indulgence
	// cancel out.
	habits := testHabits()
	logs := habit.LogMap{
		"2026-0-1-1": true,
		"2026-0-1-2": true,
	}

	s := Compute(habits, logs, 2026, 0, 30)

	assert.Equal(t, 0, s.TotalXP)
	assert.Equal(t, 0, s.CompletionRate)
	assert.Equal(t, 31, s.Days)
	require.Len(t, s.DailyXP, 31)
	assert.Equal(t, 0, s.DailyXP[0])
	assert.Equal(t, 1, s.Counts["1"])
	assert.Equal(t, 1, s.Counts["2"])
	assert.Equal(t, 1, s.CheckedCells)
	// Tie at count 1 each: first habit in input order wins.
	assert.Equal(t, "Exercise", s.BestHabit)
}

func TestComputeDoesNotMutateInputs(t *testing.T) {
	habits := testHabits()
	logs := habit.LogMap{"2026-0-1-1": true, "2026-0-2-1": true}

	_ = Compute(habits, logs, 2026, 0, 465)

	assert.Equal(t, testHabits(), habits)
	assert.Equal(t, habit.LogMap{"2026-0-1-1": true, "2026-0-2-1": true}, logs)
}

func TestComputeTotalXPMatchesLogSum(t *testing.T) {
	habits := []habit.Habit{
		{ID: "a", Name: "Read", Kind: habit.KindHealth, XP: 10},
		{ID: "b", Name: "~Soda", Kind: habit.KindVice, XP: -5},
		{ID: "c", Name: "Run", Kind: habit.KindHealth, XP: 20},
	}
	logs := habit.LogMap{}
	want := 0
	for d := 1; d <= 10; d++ {
		for _, h := range habits {
			if (d+len(h.ID))%3 == 0 {
				logs[habit.NewLogKey(2026, 3, d, h.ID)] = true
				want += h.XP
			}
		}
	}

	s := Compute(habits, logs, 2026, 3, 100)
	assert.Equal(t, want, s.TotalXP)
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name    string
		totalXP int
		goal    int
		want    int
	}{
		{name: "zero_goal", totalXP: 100, goal: 0, want: 0},
		{name: "negative_goal", totalXP: 100, goal: -5, want: 0},
		{name: "half", totalXP: 15, goal: 30, want: 50},
		{name: "rounded", totalXP: 10, goal: 30, want: 33},
		{name: "clamped_high", totalXP: 900, goal: 30, want: 100},
		{name: "negative_total_clamped", totalXP: -45, goal: 30, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			habits := []habit.Habit{{ID: "1", Name: "H", Kind: habit.KindHealth, XP: tt.totalXP}}
			logs := habit.LogMap{}
			if tt.totalXP != 0 {
				logs[habit.NewLogKey(2026, 0, 1, "1")] = true
			}
			s := Compute(habits, logs, 2026, 0, tt.goal)
			assert.Equal(t, tt.want, s.CompletionRate)
		})
	}
}

func TestCompletionRateMonotonic(t *testing.T) {
	prev := -1
	for xp := 0; xp <= 60; xp += 5 {
		habits := []habit.Habit{{ID: "1", Name: "H", Kind: habit.KindHealth, XP: xp}}
		logs := habit.LogMap{habit.NewLogKey(2026, 0, 1, "1"): true}
		rate := Compute(habits, logs, 2026, 0, 50).CompletionRate
		assert.GreaterOrEqual(t, rate, prev)
		assert.GreaterOrEqual(t, rate, 0)
		assert.LessOrEqual(t, rate, 100)
		prev = rate
	}
}

func TestComputeEmptyHabits(t *testing.T) {
	s := Compute(nil, habit.LogMap{"2026-0-1-1": true}, 2026, 0, 100)

	assert.Equal(t, 0, s.TotalXP)
	assert.Equal(t, 0, s.CompletionRate)
	assert.Equal(t, FallbackBestHabit, s.BestHabit)
	assert.Empty(t, s.Counts)
}

func TestComputeNoCompletions(t *testing.T) {
	s := Compute(testHabits(), habit.LogMap{}, 2026, 0, 30)
	assert.Equal(t, FallbackBestHabit, s.BestHabit)
}

func TestStreaksAt(t *testing.T) {
	h := []habit.Habit{{ID: "1", Name: "Exercise", Kind: habit.KindHealth, XP: 15}}

	// Checked on days 1,2,3,5,6; queried on day 6 of the same month.
	logs := habit.LogMap{}
	for _, d := range []int{1, 2, 3, 5, 6} {
		logs[habit.NewLogKey(2026, 1, d, "1")] = true
	}
	now := time.Date(2026, time.February, 6, 12, 0, 0, 0, time.UTC)

	got := StreaksAt(h, logs, 2026, 1, now)
	require.Len(t, got, 1)
	assert.Equal(t, "Exercise", got[0].Name)
	assert.Equal(t, 3, got[0].Max)
	assert.Equal(t, 2, got[0].Current)
}

func TestStreaksPastMonthAnchorsAtMonthEnd(t *testing.T) {
	h := []habit.Habit{{ID: "1", Name: "Exercise", Kind: habit.KindHealth, XP: 15}}
	logs := habit.LogMap{
		habit.NewLogKey(2025, 10, 29, "1"): true,
		habit.NewLogKey(2025, 10, 30, "1"): true,
	}
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	got := StreaksAt(h, logs, 2025, 10, now)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Current)
	assert.Equal(t, 2, got[0].Max)
}

func TestStreaksMissingToday(t *testing.T) {
	h := []habit.Habit{{ID: "1", Name: "~Smoking", Kind: habit.KindVice, XP: -15}}
	logs := habit.LogMap{habit.NewLogKey(2026, 0, 3, "1"): true}
	now := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

	got := StreaksAt(h, logs, 2026, 0, now)
	require.Len(t, got, 1)
	assert.Equal(t, "Smoking", got[0].Name)
	assert.Equal(t, 0, got[0].Current)
	assert.Equal(t, 1, got[0].Max)
}
