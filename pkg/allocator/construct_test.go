package allocator

import (
	"errors"
	"testing"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConstruct_ScenarioARosterOrder(t *testing.T) {
	p := mustProblem(t, scenarioA())
	alloc, relax, err := construct(p, DefaultPolicy(), p.Members, false)
	require.NoError(t, err)
	assert.Empty(t, relax)

	// Bath duty fills from the bottom, everyone else from the top down.
	assert.Equal(t, 1, alloc.Owner(201))
	assert.Equal(t, 2, alloc.Owner(301))
	assert.Equal(t, 3, alloc.Owner(401))
	assert.Equal(t, 4, alloc.Owner(801))
	assert.Equal(t, 4, alloc.Owner(701))
	assert.Equal(t, 7, alloc.Owner(612))
	assert.Equal(t, 8, alloc.Owner(510))
	assert.Equal(t, 8, alloc.Owner(412))

	b := newBoard(p, DefaultPolicy(), alloc, zap.NewNop())
	for _, m := range p.Members {
		normal := b.normalOf(m.ID)
		assert.Len(t, normal, m.RoomQuota, "housekeeper %d", m.ID)
		assert.True(t, floorsCompliant(distinctFloors(normal)), "housekeeper %d floors %v", m.ID, distinctFloors(normal))
	}
	// Eco rooms are left for later.
	assert.Equal(t, Unassigned, alloc.Owner(206))
	assert.Equal(t, Unassigned, alloc.Owner(715))
}

func TestConstruct_AscendingScan(t *testing.T) {
	input := &models.AllocationInput{
		Rooms:        models.BuildRooms(append(span(301, 304), span(401, 404)...), nil, nil, nil),
		Housekeepers: staff([]int{4, 4}),
		Durations:    models.DefaultDurations(),
	}
	p := mustProblem(t, input)

	down, _, err := construct(p, DefaultPolicy(), p.Members, false)
	require.NoError(t, err)
	assert.Equal(t, 1, down.Owner(401))

	up, _, err := construct(p, DefaultPolicy(), p.Members, true)
	require.NoError(t, err)
	assert.Equal(t, 1, up.Owner(301))
}

func TestConstruct_BathDutyAboveCeiling(t *testing.T) {
	input := &models.AllocationInput{
		Rooms:        models.BuildRooms(span(501, 503), nil, nil, nil),
		Housekeepers: staff([]int{3}, 1),
		Durations:    models.DefaultDurations(),
	}
	p := mustProblem(t, input)

	_, _, err := construct(p, DefaultPolicy(), p.Members, false)
	require.Error(t, err)
	var ie *InfeasibleError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 1, ie.Housekeeper)

	relaxed := DefaultPolicy()
	relaxed.Strict = false
	alloc, relax, err := construct(p, relaxed, p.Members, false)
	require.NoError(t, err)
	assert.Len(t, relax, 3)
	assert.Equal(t, RuleBathFloor, relax[0].Rule)
	assert.Equal(t, 1, alloc.Owner(502))
}
