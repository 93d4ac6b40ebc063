package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var almaty = time.FixedZone("Asia/Almaty", 5*60*60)

func TestStartOfDay(t *testing.T) {
	// 2026-09-01 18:45 Almaty
	moment := time.Date(2026, 9, 1, 18, 45, 12, 0, almaty)
	start := StartOfDay(moment, almaty)

	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, almaty), start)
}

func TestStartOfDay_CrossesUTCBoundary(t *testing.T) {
	// 2026-08-31 21:00 UTC is already 2026-09-01 02:00 in Almaty.
	moment := time.Date(2026, 8, 31, 21, 0, 0, 0, time.UTC)
	start := StartOfDay(moment, almaty)

	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, almaty).Unix(), start.Unix())
}

func TestStartOfWeek_Monday(t *testing.T) {
	// 2026-09-01 is a Tuesday, ISO week starts Monday 2026-08-31.
	moment := time.Date(2026, 9, 1, 12, 0, 0, 0, almaty)
	start := StartOfWeek(moment, almaty)

	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, almaty), start)
	assert.Equal(t, time.Monday, start.Weekday())
}

func TestStartOfWeek_SundayBelongsToPreviousMonday(t *testing.T) {
	// 2026-09-06 is a Sunday: still part of the week started 2026-08-31.
	moment := time.Date(2026, 9, 6, 23, 59, 0, 0, almaty)
	start := StartOfWeek(moment, almaty)

	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, almaty), start)
}

func TestMonthlyWindow(t *testing.T) {
	moment := time.Date(2026, 2, 15, 9, 0, 0, 0, almaty)
	w := MonthlyWindow(moment, almaty)

	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, almaty), w.Start)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, almaty), w.End)
}

func TestWindow_Contains(t *testing.T) {
	w := DailyWindow(time.Date(2026, 9, 1, 10, 0, 0, 0, almaty), almaty)

	assert.True(t, w.Contains(w.Start), "start is inclusive")
	assert.False(t, w.Contains(w.End), "end is exclusive")
	assert.True(t, w.Contains(time.Date(2026, 9, 1, 23, 59, 59, 0, almaty)))
	assert.False(t, w.Contains(time.Date(2026, 9, 2, 0, 0, 0, 0, almaty)))
}

func TestPreviousWindows(t *testing.T) {
	moment := time.Date(2026, 9, 1, 0, 5, 0, 0, almaty)

	day := PreviousDailyWindow(moment, almaty)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, almaty), day.Start)
	require.Equal(t, day.End, DailyWindow(moment, almaty).Start, "windows must be contiguous")

	week := PreviousWeeklyWindow(moment, almaty)
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, almaty), week.Start)

	month := PreviousMonthlyWindow(moment, almaty)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, almaty), month.Start)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, almaty), month.End)
}

func TestAllTimeWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	w := AllTimeWindow(now)

	assert.Equal(t, int64(0), w.Start.Unix())
	assert.Equal(t, now, w.End)
}
