package sessionlog

import (
	"math"
	"time"

	"github.com/benjamonnguyen/pomomo-focus"
)

// ComputeStatistics derives aggregates from records as of now.
func ComputeStatistics(records []pomomo.SessionRecord, now time.Time) pomomo.Statistics {
	var stats pomomo.Statistics
	var workMinutes, breakMinutes int
	dates := make(map[string]struct{})
	for _, r := range records {
		switch r.Kind {
		case pomomo.WorkPhase:
			stats.TotalWorkSessions++
			workMinutes += r.DurationMinutes
		case pomomo.BreakPhase:
			stats.TotalBreakSessions++
			breakMinutes += r.DurationMinutes
		}
		dates[recordDate(r)] = struct{}{}
	}
	stats.TotalWorkHours = hours(workMinutes)
	stats.TotalBreakHours = hours(breakMinutes)
	stats.StreakDays = Streak(dates, now)
	return stats
}

// Streak counts consecutive days present in dates, walking backward from
// today, or from yesterday when today has no record. A gap before either
// yields 0.
func Streak(dates map[string]struct{}, now time.Time) int {
	local := now.Local()
	// noon keeps AddDate away from DST edges
	cursor := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, time.Local)

	if _, ok := dates[pomomo.CalendarDate(cursor)]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
		if _, ok := dates[pomomo.CalendarDate(cursor)]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := dates[pomomo.CalendarDate(cursor)]; !ok {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

func hours(minutes int) float64 {
	return math.Round(float64(minutes)/60*10) / 10
}

func recordDate(r pomomo.SessionRecord) string {
	if r.Date != "" {
		return r.Date
	}
	return pomomo.CalendarDate(r.Timestamp)
}
