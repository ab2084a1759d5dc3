package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvisioned(t *testing.T) {
	u := &User{}
	assert.False(t, u.Provisioned())
	assert.Equal(t, 0, u.SeatCount())

	seats := 2
	u.MaxDependents = &seats
	assert.True(t, u.Provisioned())
	assert.Equal(t, 2, u.SeatCount())

	// zero seats still counts as provisioned
	zero := 0
	u.MaxDependents = &zero
	assert.True(t, u.Provisioned())
	assert.Equal(t, 0, u.SeatCount())
}

func TestPlanLabel(t *testing.T) {
	assert.Equal(t, "Duo", PlanLabel(PlanDuo))
	assert.Equal(t, "Família", PlanLabel(PlanFamilia))
	assert.Equal(t, "Individual", PlanLabel(PlanIndividual))
	assert.Equal(t, "Individual", PlanLabel("something-else"))
}
