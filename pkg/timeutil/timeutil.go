// Package timeutil provides period-window calculations for leaderboard
// aggregation. Daily, weekly and monthly windows are computed in the
// configured timezone so that period boundaries match the players' local
// midnight. No external dependencies - uses only standard library.
package timeutil

import "time"

// StartOfDay returns the start of the day (00:00:00) in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the exclusive end of the day (next midnight) in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1)
}

// StartOfWeek returns the start of the ISO week (Monday 00:00:00) in loc.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(local.AddDate(0, 0, -(weekday-1)), loc)
}

// EndOfWeek returns the exclusive end of the ISO week (next Monday) in loc.
func EndOfWeek(t time.Time, loc *time.Location) time.Time {
	return StartOfWeek(t, loc).AddDate(0, 0, 7)
}

// StartOfMonth returns the start of the month in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

// EndOfMonth returns the exclusive end of the month (first day of the
// next month) in loc.
func EndOfMonth(t time.Time, loc *time.Location) time.Time {
	return StartOfMonth(t, loc).AddDate(0, 1, 0)
}

// Window is a half-open aggregation window [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DailyWindow returns the day window containing t.
func DailyWindow(t time.Time, loc *time.Location) Window {
	return Window{Start: StartOfDay(t, loc), End: EndOfDay(t, loc)}
}

// WeeklyWindow returns the ISO week window containing t.
func WeeklyWindow(t time.Time, loc *time.Location) Window {
	return Window{Start: StartOfWeek(t, loc), End: EndOfWeek(t, loc)}
}

// MonthlyWindow returns the month window containing t.
func MonthlyWindow(t time.Time, loc *time.Location) Window {
	return Window{Start: StartOfMonth(t, loc), End: EndOfMonth(t, loc)}
}

// AllTimeWindow returns the open-ended window for all-time aggregation.
// Start is the Unix epoch; End is the current moment.
func AllTimeWindow(t time.Time) Window {
	return Window{Start: time.Unix(0, 0).UTC(), End: t}
}

// PreviousDailyWindow returns the day window immediately before the one
// containing t. Used when distributing rewards for a just-closed period.
func PreviousDailyWindow(t time.Time, loc *time.Location) Window {
	return DailyWindow(StartOfDay(t, loc).Add(-time.Second), loc)
}

// PreviousWeeklyWindow returns the ISO week window before the one containing t.
func PreviousWeeklyWindow(t time.Time, loc *time.Location) Window {
	return WeeklyWindow(StartOfWeek(t, loc).Add(-time.Second), loc)
}

// PreviousMonthlyWindow returns the month window before the one containing t.
func PreviousMonthlyWindow(t time.Time, loc *time.Location) Window {
	return MonthlyWindow(StartOfMonth(t, loc).Add(-time.Second), loc)
}
