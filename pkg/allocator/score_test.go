package allocator

import (
	"testing"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoFloorsApart(t *testing.T) *Problem {
	t.Helper()
	return mustProblem(t, &models.AllocationInput{
		Rooms:        models.BuildRooms([]int{301, 302, 501, 502}, []int{301, 302}, nil, []int{503}),
		Housekeepers: staff([]int{2, 2}),
		Durations:    models.DefaultDurations(),
	})
}

func TestScorer_DoesNotChangeAllocation(t *testing.T) {
	p := twoFloorsApart(t)
	a := AllocationFromMap(map[int]int{301: 1, 302: 1, 501: 2, 502: 2, 503: 2})
	before := a.Map()

	sc := NewScorer(p, DefaultPolicy())
	first := sc.Score(a)
	second := sc.Score(a)

	assert.Equal(t, first, second)
	assert.Equal(t, before, a.Map())
}

func TestScorer_FloorViolationOutweighsTwinSpread(t *testing.T) {
	p := twoFloorsApart(t)
	sc := NewScorer(p, DefaultPolicy())

	// Housekeeper 1 holds both twins but everyone keeps to one floor.
	skewed := sc.Score(AllocationFromMap(map[int]int{301: 1, 302: 1, 501: 2, 502: 2, 503: 2}))
	// Twins split evenly at the price of floors 3 and 5 for both.
	split := sc.Score(AllocationFromMap(map[int]int{301: 1, 501: 1, 302: 2, 502: 2, 503: 2}))

	assert.Equal(t, 0, skewed.Hard())
	assert.Equal(t, 2, skewed.TwinSpread)
	assert.Equal(t, 2, split.FloorViolations)
	assert.Equal(t, 0, split.TwinSpread)
	assert.Less(t, skewed.Penalty, split.Penalty)
}

func TestScorer_CountsHardViolations(t *testing.T) {
	p := mustProblem(t, &models.AllocationInput{
		Rooms:        models.BuildRooms([]int{301, 302, 501, 502}, nil, nil, []int{401}),
		Housekeepers: staff([]int{2, 2}, 2),
		Durations:    models.DefaultDurations(),
	})
	// 401 is eco-out with nobody on floor 4; bath-duty 2 sits on floor 5.
	s := NewScorer(p, DefaultPolicy()).Score(AllocationFromMap(map[int]int{301: 1, 302: 1, 501: 2, 502: 2, 401: 1}))

	assert.Equal(t, 0, s.QuotaDeviation)
	assert.Equal(t, 2, s.BathViolations)
	assert.Equal(t, 1, s.LocalityViolations)
	assert.False(t, s.Clean(DefaultPolicy()))
}

func TestVerify_TwinShortfallIsSoft(t *testing.T) {
	// Both twins are on floor 3, so keeping floors tight leaves one holder.
	p := twoFloorsApart(t)
	vs := Verify(p, AllocationFromMap(map[int]int{301: 1, 302: 1, 501: 2, 502: 2, 503: 2}), DefaultPolicy())

	assert.Empty(t, HardViolations(vs))
	require.Len(t, Shortfalls(vs), 1)
	assert.Equal(t, RuleTwinFairness, vs[0].Rule)
	assert.False(t, IsHardRule(RuleTwinFairness))
}

func TestVerify_FlagsBrokenRules(t *testing.T) {
	p := twoFloorsApart(t)
	a := AllocationFromMap(map[int]int{301: 1, 302: 2, 501: 1, 502: 9, 503: 2, 999: 2})
	vs := Verify(p, a, DefaultPolicy())

	rules := map[string][]int{}
	for _, v := range vs {
		rules[v.Rule] = append(rules[v.Rule], v.Housekeeper)
	}
	assert.Contains(t, rules, RuleUnknownRoom)
	assert.Contains(t, rules, RuleUnknownHousekeeper)
	assert.Equal(t, []int{1}, rules[RuleFloorCap])
	assert.Equal(t, []int{2}, rules[RuleQuota])
	assert.Equal(t, []int{2}, rules[RuleEcoOutLocality])
}

func TestVerify_MissingRoom(t *testing.T) {
	p := twoFloorsApart(t)
	vs := Verify(p, AllocationFromMap(map[int]int{301: 1, 302: 1, 501: 2, 502: 2}), DefaultPolicy())

	require.NotEmpty(t, vs)
	assert.Equal(t, RuleUnassigned, vs[0].Rule)
	assert.Equal(t, 503, vs[0].Room)
}
