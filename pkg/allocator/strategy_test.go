package allocator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrategies_NamesAndSeeds(t *testing.T) {
	got := Strategies(9, 100)

	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.Name
		assert.Equal(t, int64(100+i), s.Seed)
	}
	assert.Equal(t, []string{
		"roster", "quota-asc", "quota-desc", "twin-asc", "twin-desc", "roster/up",
		"shuffled#6", "shuffled/up#7", "shuffled#8",
	}, names)
}

func TestStrategies_FewerThanFixed(t *testing.T) {
	got := Strategies(2, 0)
	assert.Len(t, got, 2)
	assert.Equal(t, "quota-asc", got[1].Name)
}

func TestStrategy_OrderBreaksTiesByID(t *testing.T) {
	members := []Member{
		{ID: 3, RoomQuota: 10, TwinQuota: 2},
		{ID: 1, RoomQuota: 8, TwinQuota: 3},
		{ID: 2, RoomQuota: 10, TwinQuota: 3},
	}
	ids := func(ms []Member) []int {
		out := make([]int, len(ms))
		for i, m := range ms {
			out[i] = m.ID
		}
		return out
	}
	rng := rand.New(rand.NewSource(1))

	assert.Equal(t, []int{3, 1, 2}, ids(Strategy{Ordering: OrderRoster}.order(members, rng)))
	assert.Equal(t, []int{1, 2, 3}, ids(Strategy{Ordering: OrderQuotaAsc}.order(members, rng)))
	assert.Equal(t, []int{2, 3, 1}, ids(Strategy{Ordering: OrderQuotaDesc}.order(members, rng)))
	assert.Equal(t, []int{3, 1, 2}, ids(Strategy{Ordering: OrderTwinAsc}.order(members, rng)))
	assert.Equal(t, []int{1, 2, 3}, ids(Strategy{Ordering: OrderTwinDesc}.order(members, rng)))
	// The caller's slice is left alone.
	assert.Equal(t, 3, members[0].ID)
}

func TestStrategy_ShuffleFollowsSeed(t *testing.T) {
	var members []Member
	for id := 1; id <= 12; id++ {
		members = append(members, Member{ID: id, RoomQuota: 5})
	}
	s := Strategy{Ordering: OrderShuffled, Seed: 42}

	first := s.order(members, rand.New(rand.NewSource(s.Seed)))
	second := s.order(members, rand.New(rand.NewSource(s.Seed)))
	assert.Equal(t, first, second)
	assert.ElementsMatch(t, members, first)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "unassigned", StageUnassigned.String())
	assert.Equal(t, "eco-assigned", StageEcoAssigned.String())
	assert.Equal(t, "scored", StageScored.String())
}
