package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/leave-planner-api/internal/models"
)

// AttendanceRepository aggregates recorded lecture attendance.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// SubjectStats returns attended and held lecture counts per subject.
// Cancelled lectures are excluded from both counts.
func (r *AttendanceRepository) SubjectStats(ctx context.Context, userID string) ([]models.SubjectAttendanceStats, error) {
	const query = `SELECT subject_id,
COUNT(*) FILTER (WHERE status = 'P') AS attended,
COUNT(*) FILTER (WHERE status IN ('P', 'A')) AS total
FROM attendance_entries WHERE user_id = $1 GROUP BY subject_id ORDER BY subject_id`
	var stats []models.SubjectAttendanceStats
	if err := r.db.SelectContext(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("aggregate attendance: %w", err)
	}
	return stats, nil
}
