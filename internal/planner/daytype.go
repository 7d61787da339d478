package planner

import (
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for override keys and output.
const DateLayout = "2006-01-02"

// DayType classifies a calendar date.
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeWeekend DayType = "weekend"
	DayTypeHoliday DayType = "holiday"
)

// Valid returns true when the day type is a supported value.
func (d DayType) Valid() bool {
	switch d {
	case DayTypeWeekday, DayTypeWeekend, DayTypeHoliday:
		return true
	default:
		return false
	}
}

// IsClassDay reports whether lectures are held on a day of this type.
func (d DayType) IsClassDay() bool {
	return d == DayTypeWeekday
}

// ParseDayType normalises a raw value such as "HOLIDAY" or "holiday".
func ParseDayType(raw string) (DayType, bool) {
	d := DayType(strings.ToLower(strings.TrimSpace(raw)))
	return d, d.Valid()
}

// CalendarOverrides maps ISO dates to a forced classification (holidays, exam days).
type CalendarOverrides map[string]DayType

// WeeklySchedule maps weekday names ("Monday".."Sunday") to the subject ids meeting that day.
type WeeklySchedule map[string][]string

// Classify returns the day type for date. Overrides win over the weekend rule.
func Classify(date time.Time, overrides CalendarOverrides) DayType {
	if dt, ok := overrides[DateKey(date)]; ok {
		return dt
	}
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return DayTypeWeekend
	default:
		return DayTypeWeekday
	}
}

// DateKey formats date as an override key.
func DateKey(date time.Time) string {
	return date.Format(DateLayout)
}

// ParseDate parses an ISO calendar date into midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
}

// TruncateDay drops the clock part of t, keeping its calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekdayNames lists schedule keys in Monday-first order.
var WeekdayNames = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}

// WeekdayName maps a Monday-based index (0=Monday..6=Sunday) to its schedule key.
func WeekdayName(index int) (string, bool) {
	if index < 0 || index >= len(WeekdayNames) {
		return "", false
	}
	return WeekdayNames[index], true
}
