package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var almaty = mustLoadLocation("Asia/Almaty")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestIntervalSchedule(t *testing.T) {
	s := NewIntervalSchedule(5 * time.Minute)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(5*time.Minute), s.Next(now))
	assert.Equal(t, "@every 5m0s", s.String())
}

func TestDailySchedule_FiresAfterMidnight(t *testing.T) {
	s := NewDailySchedule(5*time.Minute, almaty)

	// Mid-afternoon: next run is tomorrow 00:05 local.
	now := time.Date(2026, 9, 1, 15, 30, 0, 0, almaty)
	next := s.Next(now)
	assert.Equal(t, time.Date(2026, 9, 2, 0, 5, 0, 0, almaty), next)

	// Just after midnight but before the offset: fires today at 00:05.
	now = time.Date(2026, 9, 2, 0, 1, 0, 0, almaty)
	assert.Equal(t, time.Date(2026, 9, 2, 0, 5, 0, 0, almaty), s.Next(now))

	// Exactly at the scheduled moment: next run is the following day.
	now = time.Date(2026, 9, 2, 0, 5, 0, 0, almaty)
	assert.Equal(t, time.Date(2026, 9, 3, 0, 5, 0, 0, almaty), s.Next(now))
}

func TestDailySchedule_NilLocationDefaultsToUTC(t *testing.T) {
	s := NewDailySchedule(0, nil)
	require.NotNil(t, s.Location)
	assert.Equal(t, time.UTC, s.Location)
}

func TestWeeklySchedule_FiresMondayMidnight(t *testing.T) {
	s := NewWeeklySchedule(5*time.Minute, almaty)

	// 2026-09-01 is a Tuesday: next run is Monday 2026-09-07 00:05.
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, almaty)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 5, 0, 0, almaty), s.Next(now))

	// Monday before the offset has passed: fires the same Monday.
	now = time.Date(2026, 9, 7, 0, 2, 0, 0, almaty)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 5, 0, 0, almaty), s.Next(now))
}

func TestMonthlySchedule_FiresFirstOfMonth(t *testing.T) {
	s := NewMonthlySchedule(5*time.Minute, almaty)

	now := time.Date(2026, 9, 15, 12, 0, 0, 0, almaty)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 5, 0, 0, almaty), s.Next(now))

	// First of the month before the offset: fires today.
	now = time.Date(2026, 10, 1, 0, 0, 30, 0, almaty)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 5, 0, 0, almaty), s.Next(now))
}

func TestSchedule_NextAlwaysAdvances(t *testing.T) {
	schedules := []Schedule{
		NewIntervalSchedule(time.Minute),
		NewDailySchedule(5*time.Minute, almaty),
		NewWeeklySchedule(5*time.Minute, almaty),
		NewMonthlySchedule(5*time.Minute, almaty),
	}

	now := time.Date(2026, 9, 1, 0, 5, 0, 0, almaty)
	for _, s := range schedules {
		next := s.Next(now)
		assert.True(t, next.After(now), "schedule %s did not advance", s.String())
	}
}
