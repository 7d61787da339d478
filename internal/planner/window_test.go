package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/leave-planner-api/pkg/errors"
)

// 2025-01-06 is a Monday.
var monday = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return monday.AddDate(0, 0, offset)
}

func TestClassify(t *testing.T) {
	overrides := CalendarOverrides{
		"2025-01-07": DayTypeHoliday,
		"2025-01-11": DayTypeHoliday,
	}

	assert.Equal(t, DayTypeWeekday, Classify(day(0), overrides))
	assert.Equal(t, DayTypeHoliday, Classify(day(1), overrides))
	assert.Equal(t, DayTypeHoliday, Classify(day(5), overrides), "override wins over weekend")
	assert.Equal(t, DayTypeWeekend, Classify(day(6), overrides))
	assert.Equal(t, DayTypeWeekend, Classify(day(6), nil))
}

func TestParseDayType(t *testing.T) {
	dt, ok := ParseDayType(" HOLIDAY ")
	require.True(t, ok)
	assert.Equal(t, DayTypeHoliday, dt)

	_, ok = ParseDayType("exam")
	assert.False(t, ok)
}

func TestGenerateWindowsOrderAndShape(t *testing.T) {
	windows, err := GenerateWindows(monday, 14, 2, 4, nil)
	require.NoError(t, err)
	require.NotEmpty(t, windows)

	prevLen, prevStart := 0, time.Time{}
	for _, w := range windows {
		require.Equal(t, int(w.End.Sub(w.Start).Hours()/24)+1, len(w.Days))
		for i, d := range w.Days {
			assert.True(t, d.Date.Equal(w.Start.AddDate(0, 0, i)), "days must be contiguous")
		}
		assert.True(t, hasClassDay(w.Days), "all-off window emitted: %s", DateKey(w.Start))

		if w.TotalDays() == prevLen {
			assert.True(t, w.Start.After(prevStart), "offsets must ascend within a length")
		} else {
			assert.Greater(t, w.TotalDays(), prevLen, "lengths must ascend")
		}
		prevLen, prevStart = w.TotalDays(), w.Start
	}
}

func TestGenerateWindowsSkipsWeekendOnly(t *testing.T) {
	windows, err := GenerateWindows(monday, 7, 2, 2, nil)
	require.NoError(t, err)
	// Six 2-day windows fit; Sat-Sun is dropped.
	require.Len(t, windows, 5)
	for _, w := range windows {
		assert.NotEqual(t, "2025-01-11", DateKey(w.Start))
	}
}

func TestGenerateWindowsAllOffHorizon(t *testing.T) {
	overrides := CalendarOverrides{}
	for i := 0; i < 5; i++ {
		overrides[DateKey(day(i))] = DayTypeHoliday
	}

	windows, err := GenerateWindows(monday, 7, 7, 7, overrides)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestGenerateWindowsTruncatesClock(t *testing.T) {
	windows, err := GenerateWindows(monday.Add(15*time.Hour), 2, 2, 2, nil)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, monday, windows[0].Start)
}

func TestGenerateWindowsInvalidParameters(t *testing.T) {
	cases := []struct {
		name                       string
		searchDays, minLen, maxLen int
	}{
		{"zero min", 10, 0, 3},
		{"max below min", 10, 4, 3},
		{"horizon too short", 5, 2, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := GenerateWindows(monday, tc.searchDays, tc.minLen, tc.maxLen, nil)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrInvalidParameters.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestWindowCounts(t *testing.T) {
	windows, err := GenerateWindows(day(4), 3, 3, 3, nil)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	w := windows[0]
	assert.Equal(t, 3, w.TotalDays())
	assert.Equal(t, 1, w.LeaveDays())
	assert.Equal(t, 2, w.HolidayCount())
}
