package planner

import (
	"time"
)

// Day is one classified date inside a window.
type Day struct {
	Date time.Time
	Type DayType
}

// Window is a candidate leave period. Impacts, Safe and Score are filled by
// Simulate and Rank, each returning a new value rather than editing in place.
type Window struct {
	Start   time.Time
	End     time.Time
	Days    []Day
	Impacts map[string]SubjectImpact
	Safe    bool
	Score   float64
}

// TotalDays is the calendar length of the window.
func (w Window) TotalDays() int {
	return len(w.Days)
}

// LeaveDays counts days that require an actual absence.
func (w Window) LeaveDays() int {
	count := 0
	for _, day := range w.Days {
		if day.Type.IsClassDay() {
			count++
		}
	}
	return count
}

// HolidayCount counts weekend and holiday days riding along with the leave.
func (w Window) HolidayCount() int {
	return len(w.Days) - w.LeaveDays()
}

// GenerateWindows enumerates every contiguous window of length minLen..maxLen
// that fits in searchDays from start. Windows made only of weekends and
// holidays are skipped. Order is ascending by length, then by offset.
func GenerateWindows(start time.Time, searchDays, minLen, maxLen int, overrides CalendarOverrides) ([]Window, error) {
	if err := validateWindowBounds(searchDays, minLen, maxLen); err != nil {
		return nil, err
	}
	start = TruncateDay(start)

	// Classify the horizon once; windows share sub-slices of it read-only.
	horizon := make([]Day, searchDays)
	for i := range horizon {
		date := start.AddDate(0, 0, i)
		horizon[i] = Day{Date: date, Type: Classify(date, overrides)}
	}

	var windows []Window
	for length := minLen; length <= maxLen; length++ {
		for offset := 0; offset <= searchDays-length; offset++ {
			days := horizon[offset : offset+length : offset+length]
			if !hasClassDay(days) {
				continue
			}
			windows = append(windows, Window{
				Start: days[0].Date,
				End:   days[len(days)-1].Date,
				Days:  days,
			})
		}
	}
	return windows, nil
}

func validateWindowBounds(searchDays, minLen, maxLen int) error {
	if minLen < 1 {
		return invalidParams("min window length must be at least 1")
	}
	if maxLen < minLen {
		return invalidParams("max window length must be >= min window length")
	}
	if searchDays < maxLen {
		return invalidParams("search days must be >= max window length")
	}
	return nil
}

func hasClassDay(days []Day) bool {
	for _, day := range days {
		if day.Type.IsClassDay() {
			return true
		}
	}
	return false
}
