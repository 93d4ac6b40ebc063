package scheduler

import (
	"fmt"
	"time"

	"github.com/wordquest-app/wordquest-rankings/pkg/timeutil"
)

// IntervalSchedule schedules a job to run at a fixed interval.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a new IntervalSchedule.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{Interval: interval}
}

// Next returns the next scheduled time.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}

// DailySchedule runs a job shortly after local midnight, when the daily
// competition period has just closed.
type DailySchedule struct {
	// Offset delays the run past midnight so late writes from the
	// closing period settle first.
	Offset   time.Duration
	Location *time.Location
}

// NewDailySchedule creates a schedule firing daily at midnight plus offset.
func NewDailySchedule(offset time.Duration, loc *time.Location) *DailySchedule {
	if loc == nil {
		loc = time.UTC
	}
	return &DailySchedule{Offset: offset, Location: loc}
}

// Next returns the next scheduled time.
func (s *DailySchedule) Next(t time.Time) time.Time {
	next := timeutil.StartOfDay(t, s.Location).Add(s.Offset)
	if !next.After(t) {
		next = timeutil.EndOfDay(t, s.Location).Add(s.Offset)
	}
	return next
}

// String returns the string representation of the schedule.
func (s *DailySchedule) String() string {
	return fmt.Sprintf("@daily midnight+%s %s", s.Offset, s.Location)
}

// WeeklySchedule runs a job shortly after the ISO week rolls over
// (Monday midnight), when the weekly competition period has closed.
type WeeklySchedule struct {
	Offset   time.Duration
	Location *time.Location
}

// NewWeeklySchedule creates a schedule firing weekly at Monday midnight plus offset.
func NewWeeklySchedule(offset time.Duration, loc *time.Location) *WeeklySchedule {
	if loc == nil {
		loc = time.UTC
	}
	return &WeeklySchedule{Offset: offset, Location: loc}
}

// Next returns the next scheduled time.
func (s *WeeklySchedule) Next(t time.Time) time.Time {
	next := timeutil.StartOfWeek(t, s.Location).Add(s.Offset)
	if !next.After(t) {
		next = timeutil.EndOfWeek(t, s.Location).Add(s.Offset)
	}
	return next
}

// String returns the string representation of the schedule.
func (s *WeeklySchedule) String() string {
	return fmt.Sprintf("@weekly monday+%s %s", s.Offset, s.Location)
}

// MonthlySchedule runs a job shortly after the month rolls over, when
// the monthly competition period has closed.
type MonthlySchedule struct {
	Offset   time.Duration
	Location *time.Location
}

// NewMonthlySchedule creates a schedule firing on the first of each month plus offset.
func NewMonthlySchedule(offset time.Duration, loc *time.Location) *MonthlySchedule {
	if loc == nil {
		loc = time.UTC
	}
	return &MonthlySchedule{Offset: offset, Location: loc}
}

// Next returns the next scheduled time.
func (s *MonthlySchedule) Next(t time.Time) time.Time {
	next := timeutil.StartOfMonth(t, s.Location).Add(s.Offset)
	if !next.After(t) {
		next = timeutil.EndOfMonth(t, s.Location).Add(s.Offset)
	}
	return next
}

// String returns the string representation of the schedule.
func (s *MonthlySchedule) String() string {
	return fmt.Sprintf("@monthly 1st+%s %s", s.Offset, s.Location)
}
