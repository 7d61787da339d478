package planner

import (
	"fmt"

	appErrors "github.com/noah-isme/leave-planner-api/pkg/errors"
)

// Subject is an attendance snapshot for one course.
type Subject struct {
	ID        string  `json:"id" toml:"id"`
	Name      string  `json:"name" toml:"name"`
	Attended  int     `json:"attended" toml:"attended"`
	Total     int     `json:"total" toml:"total"`
	Threshold float64 `json:"threshold" toml:"threshold"`
}

// CurrentPercentage returns attended/total as a percentage, 100 when nothing was held yet.
func (s Subject) CurrentPercentage() float64 {
	return percentage(s.Attended, s.Total)
}

// ProjectedPercentage returns the percentage after missing the given number of lectures.
func (s Subject) ProjectedPercentage(missed int) float64 {
	return percentage(s.Attended, s.Total+missed)
}

// EffectiveThreshold resolves a zero threshold to the global default.
func (s Subject) EffectiveThreshold(global float64) float64 {
	if s.Threshold > 0 {
		return s.Threshold
	}
	return global
}

// Buffer is the current percentage minus the effective threshold.
func (s Subject) Buffer(global float64) float64 {
	return s.CurrentPercentage() - s.EffectiveThreshold(global)
}

func percentage(attended, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(attended) / float64(total) * 100
}

// ValidateSubjects rejects snapshots the simulator cannot reason about.
func ValidateSubjects(subjects []Subject) error {
	seen := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		if s.ID == "" {
			return invalidParams("subject id is required")
		}
		if seen[s.ID] {
			return invalidParams(fmt.Sprintf("duplicate subject id %s", s.ID))
		}
		seen[s.ID] = true
		if s.Attended < 0 || s.Total < 0 {
			return invalidParams(fmt.Sprintf("subject %s has negative attendance counts", s.ID))
		}
		if s.Attended > s.Total {
			return invalidParams(fmt.Sprintf("subject %s attended (%d) exceeds total (%d)", s.ID, s.Attended, s.Total))
		}
		if s.Threshold < 0 || s.Threshold > 100 {
			return invalidParams(fmt.Sprintf("subject %s threshold must be between 0 and 100", s.ID))
		}
	}
	return nil
}

func invalidParams(message string) error {
	return appErrors.Clone(appErrors.ErrInvalidParameters, message)
}
