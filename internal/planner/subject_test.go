package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectPercentages(t *testing.T) {
	s := Subject{ID: "CS101", Attended: 30, Total: 40, Threshold: 75}

	assert.Equal(t, 75.0, s.CurrentPercentage())
	assert.InDelta(t, 71.428, s.ProjectedPercentage(2), 0.001)
	assert.Equal(t, 0.0, s.Buffer(60))
}

func TestSubjectPercentageBounds(t *testing.T) {
	subjects := []Subject{
		{Attended: 0, Total: 0},
		{Attended: 0, Total: 10},
		{Attended: 10, Total: 10},
		{Attended: 7, Total: 9},
	}
	for _, s := range subjects {
		for missed := 0; missed < 5; missed++ {
			p := s.ProjectedPercentage(missed)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 100.0)
		}
	}
	assert.Equal(t, 100.0, subjects[0].CurrentPercentage())
}

func TestSubjectEffectiveThreshold(t *testing.T) {
	assert.Equal(t, 75.0, Subject{}.EffectiveThreshold(75))
	assert.Equal(t, 60.0, Subject{Threshold: 60}.EffectiveThreshold(75))
}

func TestValidateSubjects(t *testing.T) {
	assert.NoError(t, ValidateSubjects(nil))
	assert.NoError(t, ValidateSubjects([]Subject{{ID: "A", Attended: 0, Total: 0}}))
	assert.Error(t, ValidateSubjects([]Subject{{ID: ""}}))
	assert.Error(t, ValidateSubjects([]Subject{{ID: "A", Threshold: 120}}))
	assert.Error(t, ValidateSubjects([]Subject{{ID: "A", Attended: 3, Total: 2}}))
}
