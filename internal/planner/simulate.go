package planner

import "time"

// SubjectImpact is the projected effect of a window on one subject.
type SubjectImpact struct {
	SubjectName         string  `json:"subject_name"`
	CurrentPercentage   float64 `json:"current_attendance"`
	CurrentBuffer       float64 `json:"current_buffer"`
	MissedLectures      int     `json:"missed_lectures"`
	ProjectedPercentage float64 `json:"projected_attendance"`
	ProjectedBuffer     float64 `json:"projected_buffer"`
	Threshold           float64 `json:"threshold"`
	Safe                bool    `json:"is_safe"`
}

// Simulate projects the attendance of every subject if the student skips
// all class days in w. It returns a copy of w with Impacts and Safe set.
func Simulate(w Window, subjects []Subject, schedule WeeklySchedule, globalThreshold float64) Window {
	return newSimulator(subjects, schedule, globalThreshold).simulate(w)
}

type simulator struct {
	subjects        []Subject
	meets           map[time.Weekday]map[string]bool
	globalThreshold float64
}

func newSimulator(subjects []Subject, schedule WeeklySchedule, globalThreshold float64) *simulator {
	meets := make(map[time.Weekday]map[string]bool, 7)
	for i, name := range WeekdayNames {
		ids := schedule[name]
		if len(ids) == 0 {
			continue
		}
		// WeekdayNames is Monday-first; time.Weekday is Sunday-first.
		wd := time.Weekday((i + 1) % 7)
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		meets[wd] = set
	}
	return &simulator{subjects: subjects, meets: meets, globalThreshold: globalThreshold}
}

func (s *simulator) simulate(w Window) Window {
	impacts := make(map[string]SubjectImpact, len(s.subjects))
	safe := true
	for _, subject := range s.subjects {
		impact := s.impact(w, subject)
		impacts[subject.ID] = impact
		if !impact.Safe {
			safe = false
		}
	}
	w.Impacts = impacts
	w.Safe = safe
	return w
}

func (s *simulator) impact(w Window, subject Subject) SubjectImpact {
	missed := 0
	for _, day := range w.Days {
		if !day.Type.IsClassDay() {
			continue
		}
		if s.meets[day.Date.Weekday()][subject.ID] {
			missed++
		}
	}

	threshold := subject.EffectiveThreshold(s.globalThreshold)
	current := subject.CurrentPercentage()
	projected := subject.ProjectedPercentage(missed)
	return SubjectImpact{
		SubjectName:         subject.Name,
		CurrentPercentage:   current,
		CurrentBuffer:       current - threshold,
		MissedLectures:      missed,
		ProjectedPercentage: projected,
		ProjectedBuffer:     projected - threshold,
		Threshold:           threshold,
		Safe:                projected >= threshold,
	}
}
