package models

// ScheduleSlot is one weekly timetable entry. Weekday is 0=Monday..6=Sunday.
type ScheduleSlot struct {
	ID        string  `db:"id" json:"id"`
	UserID    string  `db:"user_id" json:"user_id"`
	Weekday   int     `db:"weekday" json:"weekday"`
	StartTime string  `db:"start_time" json:"start_time"`
	EndTime   string  `db:"end_time" json:"end_time"`
	SubjectID string  `db:"subject_id" json:"subject_id"`
	Room      *string `db:"room" json:"room,omitempty"`
}
