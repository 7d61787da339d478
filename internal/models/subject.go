package models

import "time"

// Subject is a course tracked by a student.
type Subject struct {
	ID                      string    `db:"id" json:"id"`
	UserID                  string    `db:"user_id" json:"user_id"`
	Name                    string    `db:"name" json:"name"`
	Code                    string    `db:"code" json:"code"`
	TargetAttendancePercent float64   `db:"target_attendance_percent" json:"target_attendance_percent"`
	CreatedAt               time.Time `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time `db:"updated_at" json:"updated_at"`
}
