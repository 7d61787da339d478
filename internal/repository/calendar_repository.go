package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/leave-planner-api/internal/models"
)

// CalendarRepository reads academic calendar holidays.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs a calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListHolidays returns holidays overlapping the filter range.
func (r *CalendarRepository) ListHolidays(ctx context.Context, filter models.HolidayFilter) ([]models.AcademicHoliday, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("end_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("start_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			kinds[i] = string(k)
		}
		where = append(where, fmt.Sprintf("kind = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(kinds))
	}

	query := fmt.Sprintf("SELECT id, user_id, name, kind, start_date, end_date, created_at FROM academic_holidays WHERE %s ORDER BY start_date ASC", strings.Join(where, " AND "))
	var holidays []models.AcademicHoliday
	if err := r.db.SelectContext(ctx, &holidays, query, args...); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}
