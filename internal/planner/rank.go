package planner

import (
	"math"
	"sort"
)

// Scoring weights. Changing them changes which windows get recommended.
const (
	UnsafeScore     = -1000.0
	LeaveDayWeight  = 10.0
	HolidayWeight   = 5.0
	TotalDropWeight = 2.0
	MinBufferWeight = 3.0
)

// Score computes the ranking score of a simulated window.
func Score(w Window) float64 {
	if !w.Safe {
		return UnsafeScore
	}
	minBuffer := 0.0
	totalDrop := 0.0
	// Summation order is fixed so repeated runs are bit-identical.
	for i, id := range impactKeys(w.Impacts) {
		impact := w.Impacts[id]
		if i == 0 || impact.ProjectedBuffer < minBuffer {
			minBuffer = impact.ProjectedBuffer
		}
		totalDrop += impact.CurrentPercentage - impact.ProjectedPercentage
	}
	return float64(w.LeaveDays())*LeaveDayWeight +
		float64(w.HolidayCount())*HolidayWeight -
		totalDrop*TotalDropWeight +
		minBuffer*MinBufferWeight
}

// Rank scores every window and orders them best-first. Equal scores keep
// their input order, which is the generator's emission order.
func Rank(windows []Window) []Window {
	ranked := make([]Window, len(windows))
	for i, w := range windows {
		w.Score = Score(w)
		ranked[i] = w
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func impactKeys(impacts map[string]SubjectImpact) []string {
	keys := make([]string, 0, len(impacts))
	for id := range impacts {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
