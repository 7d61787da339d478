package models

import "time"

// HolidayKind labels academic calendar entries that suspend classes.
type HolidayKind string

const (
	HolidayKindHoliday HolidayKind = "HOLIDAY"
	HolidayKindBreak   HolidayKind = "BREAK"
	HolidayKindExam    HolidayKind = "EXAM"
)

// AcademicHoliday is a calendar range extracted from an uploaded academic calendar.
type AcademicHoliday struct {
	ID        string      `db:"id" json:"id"`
	UserID    string      `db:"user_id" json:"user_id"`
	Name      string      `db:"name" json:"name"`
	Kind      HolidayKind `db:"kind" json:"kind"`
	StartDate time.Time   `db:"start_date" json:"start_date"`
	EndDate   time.Time   `db:"end_date" json:"end_date"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// HolidayFilter narrows down holidays for a user.
type HolidayFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Kinds  []HolidayKind
}
