package stats

import (
	"math"
	"time"

	"github.com/habitgrid/habitgrid/pkg/habit"
)

// FallbackBestHabit is reported when no habit has any completion yet.
const FallbackBestHabit = "Keep going!"

// Stats is the derived monthly view. It is never persisted; recompute it
// from the habit list, the log map and the goal whenever needed.
type Stats struct {
	TotalXP        int
	DailyXP        []int
	Counts         map[string]int
	CheckedCells   int
	CompletionRate int
	BestHabit      string
	Days           int
}

// Streak is one habit's consecutive-day runs within a single month.
type Streak struct {
	Name    string
	Current int
	Max     int
}

// Compute aggregates one month of logs. Pure: inputs are never mutated.
// Month is 0-based. CompletionRate is round(totalXP/goal*100) clamped to
// [0, 100], and 0 whenever goal <= 0.
func Compute(habits []habit.Habit, logs habit.LogMap, year, month, goal int) Stats {
	days := habit.DaysInMonth(year, month)

	s := Stats{
		DailyXP: make([]int, days),
		Counts:  make(map[string]int, len(habits)),
		Days:    days,
	}
	for _, h := range habits {
		s.Counts[h.ID] = 0
	}

	for d := 1; d <= days; d++ {
		for _, h := range habits {
			if !logs[habit.NewLogKey(year, month, d, h.ID)] {
				continue
			}
			s.TotalXP += h.XP
			s.DailyXP[d-1] += h.XP
			s.Counts[h.ID]++
			if h.XP > 0 {
				s.CheckedCells++
			}
		}
	}

	if goal > 0 {
		rate := int(math.Round(float64(s.TotalXP) / float64(goal) * 100))
		s.CompletionRate = min(max(rate, 0), 100)
	}

	// First habit in input order attaining the maximum count wins ties.
	s.BestHabit = FallbackBestHabit
	maxCount := -1
	for _, h := range habits {
		if s.Counts[h.ID] > maxCount {
			maxCount = s.Counts[h.ID]
			s.BestHabit = habit.DisplayName(h.Name)
		}
	}
	if maxCount <= 0 {
		s.BestHabit = FallbackBestHabit
	}

	return s
}

// Streaks computes per-habit runs against the wall clock.
func Streaks(habits []habit.Habit, logs habit.LogMap, year, month int) []Streak {
	return StreaksAt(habits, logs, year, month, time.Now())
}

// StreaksAt computes, for each habit, the longest run of consecutive
// completed days in the month, and the current run counting backward from
// "today" when the queried month is now's month, or from the last day of
// the month otherwise. Runs never cross month boundaries.
func StreaksAt(habits []habit.Habit, logs habit.LogMap, year, month int, now time.Time) []Streak {
	days := habit.DaysInMonth(year, month)

	anchor := days
	if now.Year() == year && int(now.Month())-1 == month {
		anchor = now.Day()
	}
	if anchor > days {
		anchor = days
	}

	out := make([]Streak, 0, len(habits))
	for _, h := range habits {
		st := Streak{Name: habit.DisplayName(h.Name)}

		rolling := 0
		for d := 1; d <= days; d++ {
			if logs[habit.NewLogKey(year, month, d, h.ID)] {
				rolling++
				if rolling > st.Max {
					st.Max = rolling
				}
			} else {
				rolling = 0
			}
		}

		for d := anchor; d >= 1; d-- {
			if !logs[habit.NewLogKey(year, month, d, h.ID)] {
				break
			}
			st.Current++
		}

		out = append(out, st)
	}
	return out
}
