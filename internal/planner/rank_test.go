package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func windowOf(startOffset int, types ...DayType) Window {
	days := make([]Day, len(types))
	for i, dt := range types {
		days[i] = Day{Date: day(startOffset + i), Type: dt}
	}
	return Window{Start: days[0].Date, End: days[len(days)-1].Date, Days: days}
}

func TestScoreFormula(t *testing.T) {
	w := windowOf(4, DayTypeWeekday, DayTypeWeekend, DayTypeWeekend)
	w.Safe = true
	w.Impacts = map[string]SubjectImpact{
		"A": {CurrentPercentage: 90, ProjectedPercentage: 88, ProjectedBuffer: 13, Safe: true},
		"B": {CurrentPercentage: 80, ProjectedPercentage: 79, ProjectedBuffer: 4, Safe: true},
	}

	// 1*10 + 2*5 - (2+1)*2 + 4*3
	assert.Equal(t, 26.0, Score(w))
}

func TestScoreUnsafeSentinel(t *testing.T) {
	w := windowOf(0, DayTypeWeekday, DayTypeWeekday)
	w.Impacts = map[string]SubjectImpact{"A": {ProjectedBuffer: -2}}

	assert.Equal(t, UnsafeScore, Score(w))
}

func TestRankOrdersBestFirstAndKeepsUnsafeLast(t *testing.T) {
	unsafe := windowOf(0, DayTypeWeekday, DayTypeWeekday, DayTypeWeekday, DayTypeWeekday)
	small := windowOf(0, DayTypeWeekday)
	small.Safe = true
	big := windowOf(1, DayTypeWeekday, DayTypeWeekday)
	big.Safe = true

	ranked := Rank([]Window{unsafe, small, big})
	require.Len(t, ranked, 3)
	assert.Equal(t, 20.0, ranked[0].Score)
	assert.Equal(t, 10.0, ranked[1].Score)
	assert.Equal(t, UnsafeScore, ranked[2].Score)
}

func TestRankTiesKeepGeneratorOrder(t *testing.T) {
	impact := map[string]SubjectImpact{"A": {CurrentPercentage: 80, ProjectedPercentage: 80, ProjectedBuffer: 4, Safe: true}}

	// 3*10 + 4*3 = 42
	shorter := windowOf(0, DayTypeWeekday, DayTypeWeekday, DayTypeWeekday)
	shorter.Safe, shorter.Impacts = true, impact
	// 2*10 + 2*5 + 4*3 = 42
	longer := windowOf(3, DayTypeWeekday, DayTypeWeekday, DayTypeWeekend, DayTypeWeekend)
	longer.Safe, longer.Impacts = true, impact
	// same length as shorter, starts later
	later := windowOf(7, DayTypeWeekday, DayTypeWeekday, DayTypeWeekday)
	later.Safe, later.Impacts = true, impact

	ranked := Rank([]Window{shorter, later, longer})
	require.Len(t, ranked, 3)
	for _, w := range ranked {
		assert.Equal(t, 42.0, w.Score)
	}
	assert.Equal(t, shorter.Start, ranked[0].Start)
	assert.Equal(t, later.Start, ranked[1].Start)
	assert.Equal(t, longer.Start, ranked[2].Start)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	w := windowOf(0, DayTypeWeekday)
	w.Safe = true
	input := []Window{w}

	_ = Rank(input)
	assert.Equal(t, 0.0, input[0].Score)
}
