package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/leave-planner-api/internal/models"
)

// ScheduleRepository reads the weekly timetable.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListByUser returns timetable slots ordered by weekday and start time.
func (r *ScheduleRepository) ListByUser(ctx context.Context, userID string) ([]models.ScheduleSlot, error) {
	const query = `SELECT id, user_id, weekday, start_time, end_time, subject_id, room FROM schedule_slots WHERE user_id = $1 ORDER BY weekday ASC, start_time ASC`
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, userID); err != nil {
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	return slots, nil
}
