package dto

import "github.com/noah-isme/leave-planner-api/internal/planner"

// SearchParams overrides the configured search bounds. Nil fields keep the defaults.
type SearchParams struct {
	StartDate  string `json:"start_date" form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	SearchDays *int   `json:"search_days" form:"search_days" validate:"omitempty,min=1,max=366"`
	MinWindow  *int   `json:"min_window" form:"min_window" validate:"omitempty,min=1,max=31"`
	MaxWindow  *int   `json:"max_window" form:"max_window" validate:"omitempty,min=1,max=31"`
	TopN       *int   `json:"top_n" form:"top_n" validate:"omitempty,min=1,max=20"`
}

// RecommendRequest asks for leave windows over the caller's stored data.
type RecommendRequest struct {
	SearchParams
	Narrate bool `json:"narrate"`
}

// SnapshotSubject is a subject supplied inline to the simulator.
type SnapshotSubject struct {
	ID        string  `json:"id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Attended  int     `json:"attended" validate:"min=0"`
	Total     int     `json:"total" validate:"min=0,gtefield=Attended"`
	Threshold float64 `json:"threshold" validate:"min=0,max=100"`
}

// HolidayRange marks consecutive calendar days as holidays. EndDate defaults to StartDate.
type HolidayRange struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// SimulateRequest carries a complete attendance snapshot.
type SimulateRequest struct {
	SearchParams
	Narrate         bool                   `json:"narrate"`
	GlobalThreshold *float64               `json:"global_threshold" validate:"omitempty,gt=0,lte=100"`
	Subjects        []SnapshotSubject      `json:"subjects" validate:"dive"`
	WeeklySchedule  planner.WeeklySchedule `json:"weekly_schedule"`
	Calendar        map[string]string      `json:"calendar"`
	Holidays        []HolidayRange         `json:"holidays" validate:"dive"`
}

// ExportQuery selects the export format for the caller's recommendations.
type ExportQuery struct {
	SearchParams
	Format string `form:"format" validate:"omitempty,oneof=csv pdf html"`
}

// RunQuery paginates planner run history.
type RunQuery struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"page_size" validate:"omitempty,min=1,max=100"`
}
