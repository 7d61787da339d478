package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// PlannerRun records one recommendation request for history and auditing.
type PlannerRun struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"user_id"`
	StartDate   time.Time      `db:"start_date" json:"start_date"`
	Params      types.JSONText `db:"params" json:"params"`
	WindowCount int            `db:"window_count" json:"window_count"`
	BestScore   *float64       `db:"best_score" json:"best_score,omitempty"`
	Narrated    bool           `db:"narrated" json:"narrated"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
