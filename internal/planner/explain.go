package planner

import (
	"fmt"
	"strings"
)

// DayBreakdown is the serialised form of a classified day.
type DayBreakdown struct {
	Date    string  `json:"date"`
	DayName string  `json:"day_name"`
	Type    DayType `json:"type"`
}

// WindowSummary is the caller-facing view of a ranked window.
type WindowSummary struct {
	Rank               int                      `json:"rank"`
	StartDate          string                   `json:"start_date"`
	EndDate            string                   `json:"end_date"`
	TotalDays          int                      `json:"total_days"`
	LeaveDays          int                      `json:"leave_days"`
	Holidays           int                      `json:"holidays"`
	Score              float64                  `json:"score"`
	DayBreakdown       []DayBreakdown           `json:"day_breakdown"`
	SubjectProjections map[string]SubjectImpact `json:"subject_projections"`
}

// Result is the structured recommendation returned to callers.
type Result struct {
	Success         bool            `json:"success"`
	VacationOptions []WindowSummary `json:"vacation_options"`
	AIAdvice        string          `json:"ai_advice"`
}

// BuildResult assembles the caller-facing result. The narration is embedded
// verbatim and never inspected.
func BuildResult(windows []Window, narration string) Result {
	options := make([]WindowSummary, 0, len(windows))
	for i, w := range windows {
		options = append(options, summarize(i+1, w))
	}
	return Result{
		Success:         len(windows) > 0,
		VacationOptions: options,
		AIAdvice:        narration,
	}
}

func summarize(rank int, w Window) WindowSummary {
	days := make([]DayBreakdown, len(w.Days))
	for i, d := range w.Days {
		days[i] = DayBreakdown{
			Date:    DateKey(d.Date),
			DayName: d.Date.Weekday().String(),
			Type:    d.Type,
		}
	}
	projections := make(map[string]SubjectImpact, len(w.Impacts))
	for id, impact := range w.Impacts {
		projections[id] = impact
	}
	return WindowSummary{
		Rank:               rank,
		StartDate:          DateKey(w.Start),
		EndDate:            DateKey(w.End),
		TotalDays:          w.TotalDays(),
		LeaveDays:          w.LeaveDays(),
		Holidays:           w.HolidayCount(),
		Score:              round2(w.Score),
		DayBreakdown:       days,
		SubjectProjections: projections,
	}
}

// BuildSummaryText renders a deterministic digest of the snapshot and the
// ranked windows. It is the only grounding handed to the narrator, so every
// number in it comes straight from the simulation.
func BuildSummaryText(windows []Window, subjects []Subject, globalThreshold float64) string {
	var b strings.Builder

	b.WriteString("CURRENT ATTENDANCE STATUS:\n")
	if len(subjects) == 0 {
		b.WriteString("- No subjects tracked\n")
	}
	for _, s := range subjects {
		fmt.Fprintf(&b, "- %s: %.1f%% (%d/%d attended, Threshold: %.0f%%, Buffer: %+.1f%%)\n",
			s.Name, s.CurrentPercentage(), s.Attended, s.Total, s.EffectiveThreshold(globalThreshold), s.Buffer(globalThreshold))
	}

	b.WriteString("\nSAFE VACATION OPTIONS FOUND:\n")
	if len(windows) == 0 {
		b.WriteString("None. Every candidate window drops at least one subject below its threshold.\n")
		return b.String()
	}
	for i, w := range windows {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Option %d: %s (%s) to %s (%s)\n",
			i+1, DateKey(w.Start), w.Start.Format("Mon"), DateKey(w.End), w.End.Format("Mon"))
		fmt.Fprintf(&b, "  * %d leave days, %d holidays/weekends\n", w.LeaveDays(), w.HolidayCount())
		fmt.Fprintf(&b, "  * Score: %.1f\n", w.Score)
		b.WriteString("  * Subject Impact:\n")
		for _, s := range subjects {
			impact, ok := w.Impacts[s.ID]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "    - %s: %.1f%% -> %.1f%% (missed %d lectures, buffer: %+.1f%%)\n",
				impact.SubjectName, impact.CurrentPercentage, impact.ProjectedPercentage, impact.MissedLectures, impact.ProjectedBuffer)
		}
	}
	return b.String()
}
