package allocator

import (
	"errors"
	"testing"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeFloors puts housekeeper 1 on floor 3, 2 on floor 4 and 3 on floor 5
func threeFloors(t *testing.T, policy Policy, eco, ecoOut []int) *board {
	t.Helper()
	input := &models.AllocationInput{
		Rooms:        models.BuildRooms([]int{301, 302, 401, 402, 501, 502}, nil, eco, ecoOut),
		Housekeepers: staff([]int{2, 2, 2}),
		Durations:    models.DefaultDurations(),
	}
	p := mustProblem(t, input)
	return boardFrom(p, policy, map[int]int{301: 1, 302: 1, 401: 2, 402: 2, 501: 3, 502: 3})
}

func TestAssignEco_EcoOutStaysOnFloor(t *testing.T) {
	b := threeFloors(t, DefaultPolicy(), nil, []int{305, 405, 406})
	require.NoError(t, b.assignEco())

	assert.Equal(t, 1, b.alloc.Owner(305))
	assert.Equal(t, 2, b.alloc.Owner(405))
	assert.Equal(t, 2, b.alloc.Owner(406))
	assert.Empty(t, b.relaxations)
}

func TestAssignEco_LoneRoomGoesToLeastLoaded(t *testing.T) {
	// Floors 3 and 4 already carry an eco-out room each; nobody works floor 9.
	b := threeFloors(t, DefaultPolicy(), []int{901}, []int{305, 405})
	require.NoError(t, b.assignEco())

	assert.Equal(t, 3, b.alloc.Owner(901))
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, b.ecoCounts())
}

func TestAssignEco_EcoOutWithoutHousekeeper(t *testing.T) {
	strict := threeFloors(t, DefaultPolicy(), nil, []int{901})
	err := strict.assignEco()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInfeasible))
	var ie *InfeasibleError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 901, ie.Room)

	policy := DefaultPolicy()
	policy.Strict = false
	relaxed := threeFloors(t, policy, nil, []int{901})
	require.NoError(t, relaxed.assignEco())
	assert.Equal(t, 3, relaxed.alloc.Owner(901)) // floor 5 is the nearest
	require.Len(t, relaxed.relaxations, 1)
	assert.Equal(t, RuleEcoOutLocality, relaxed.relaxations[0].Rule)
	assert.Equal(t, 901, relaxed.relaxations[0].Room)
}

func TestAssignEco_NewFloorNeedsTwoRooms(t *testing.T) {
	// Floor 6 has four eco rooms and nobody on it. Housekeepers on floors 5
	// and 7 may join; the one on floor 3 may not.
	input := &models.AllocationInput{
		Rooms:        models.BuildRooms([]int{301, 302, 501, 502, 701, 702}, nil, span(601, 604), nil),
		Housekeepers: staff([]int{2, 2, 2}),
		Durations:    models.DefaultDurations(),
	}
	p := mustProblem(t, input)
	b := boardFrom(p, DefaultPolicy(), map[int]int{301: 3, 302: 3, 501: 1, 502: 1, 701: 2, 702: 2})

	require.NoError(t, b.assignEco())

	perHolder := map[int]int{}
	for _, r := range span(601, 604) {
		perHolder[b.alloc.Owner(r)]++
	}
	assert.Equal(t, map[int]int{1: 2, 2: 2}, perHolder)
}

func TestAssignEco_SharesFloorAmongPresent(t *testing.T) {
	// Both housekeepers work floor 3; five eco rooms there split 3/2.
	input := &models.AllocationInput{
		Rooms:        models.BuildRooms(span(301, 304), nil, span(311, 315), nil),
		Housekeepers: staff([]int{2, 2}),
		Durations:    models.DefaultDurations(),
	}
	p := mustProblem(t, input)
	b := boardFrom(p, DefaultPolicy(), map[int]int{301: 1, 302: 1, 303: 2, 304: 2})

	require.NoError(t, b.assignEco())

	counts := b.ecoCounts()
	assert.Equal(t, 5, counts[1]+counts[2])
	assert.LessOrEqual(t, abs(counts[1]-counts[2]), 1)
}

func TestAssignEco_BathDutyStaysLow(t *testing.T) {
	// Housekeeper 1 (bath) has the lightest load but cannot take floor 6.
	input := &models.AllocationInput{
		Rooms:        models.BuildRooms([]int{401, 501, 502}, nil, []int{601}, nil),
		Housekeepers: staff([]int{1, 2}, 1),
		Durations:    models.DefaultDurations(),
	}
	p := mustProblem(t, input)
	b := boardFrom(p, DefaultPolicy(), map[int]int{401: 1, 501: 2, 502: 2})

	require.NoError(t, b.assignEco())
	assert.Equal(t, 2, b.alloc.Owner(601))
}

func TestAssignEco_OnlyBathDutyAboveCeiling(t *testing.T) {
	build := func(policy Policy) *board {
		input := &models.AllocationInput{
			Rooms:        models.BuildRooms([]int{201, 202, 301, 302}, nil, []int{601, 602}, nil),
			Housekeepers: staff([]int{2, 2}, 1, 2),
			Durations:    models.DefaultDurations(),
		}
		p := mustProblem(t, input)
		return boardFrom(p, policy, map[int]int{201: 1, 202: 1, 301: 2, 302: 2})
	}

	strict := build(DefaultPolicy())
	err := strict.assignEco()
	require.Error(t, err)
	var ie *InfeasibleError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 601, ie.Room)
	assert.Empty(t, strict.relaxations)

	policy := DefaultPolicy()
	policy.Strict = false
	relaxed := build(policy)
	require.NoError(t, relaxed.assignEco())
	assert.Equal(t, 1, relaxed.alloc.Owner(601))
	assert.Equal(t, 2, relaxed.alloc.Owner(602))
	require.Len(t, relaxed.relaxations, 2)
	for _, rel := range relaxed.relaxations {
		assert.Equal(t, RuleBathFloor, rel.Rule)
		assert.Equal(t, relaxed.alloc.Owner(rel.Room), rel.Housekeeper)
	}
}
