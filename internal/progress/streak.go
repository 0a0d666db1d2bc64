package progress

import "time"

// NextStreak returns the streak after activity on today's calendar day.
// Activity twice on the same day leaves the streak unchanged; activity the
// day after the last one extends it; any gap restarts it at 1.
func NextStreak(prev Streak, today time.Time) Streak {
	day := today.Format(DayLayout)
	if prev.LastActivity == day {
		return prev
	}
	if prev.LastActivity == today.AddDate(0, 0, -1).Format(DayLayout) {
		return Streak{Current: prev.Current + 1, LastActivity: day}
	}
	return Streak{Current: 1, LastActivity: day}
}
