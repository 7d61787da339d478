package models

// AttendanceStatus represents the status recorded for a lecture.
type AttendanceStatus string

const (
	AttendanceStatusPresent   AttendanceStatus = "P"
	AttendanceStatusAbsent    AttendanceStatus = "A"
	AttendanceStatusCancelled AttendanceStatus = "C"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusCancelled:
		return true
	default:
		return false
	}
}

// CountsTowardTotal reports whether the lecture was actually held.
func (s AttendanceStatus) CountsTowardTotal() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusAbsent
}

// SubjectAttendanceStats aggregates held and attended lectures for a subject.
type SubjectAttendanceStats struct {
	SubjectID string `db:"subject_id" json:"subject_id"`
	Attended  int    `db:"attended" json:"attended"`
	Total     int    `db:"total" json:"total"`
}
