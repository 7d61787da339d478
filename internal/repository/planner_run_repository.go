package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/leave-planner-api/internal/models"
)

// PlannerRunRepository persists recommendation history.
type PlannerRunRepository struct {
	db *sqlx.DB
}

// NewPlannerRunRepository constructs a planner run repository.
func NewPlannerRunRepository(db *sqlx.DB) *PlannerRunRepository {
	return &PlannerRunRepository{db: db}
}

// Create inserts a planner run.
func (r *PlannerRunRepository) Create(ctx context.Context, run *models.PlannerRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO planner_runs (id, user_id, start_date, params, window_count, best_score, narrated, created_at) VALUES (:id, :user_id, :start_date, :params, :window_count, :best_score, :narrated, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create planner run: %w", err)
	}
	return nil
}

// ListByUser returns the user's runs newest first with the total count.
func (r *PlannerRunRepository) ListByUser(ctx context.Context, userID string, page, size int) ([]models.PlannerRun, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, user_id, start_date, params, window_count, best_score, narrated, created_at FROM planner_runs WHERE user_id = $1 ORDER BY created_at DESC LIMIT %d OFFSET %d", size, offset)
	var runs []models.PlannerRun
	if err := r.db.SelectContext(ctx, &runs, query, userID); err != nil {
		return nil, 0, fmt.Errorf("list planner runs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM planner_runs WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("count planner runs: %w", err)
	}
	return runs, total, nil
}
