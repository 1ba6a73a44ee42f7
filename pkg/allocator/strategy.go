package allocator

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"
)

// Ordering decides in which order housekeepers take rooms during construction
type Ordering int

const (
	OrderRoster Ordering = iota
	OrderQuotaAsc
	OrderQuotaDesc
	OrderTwinAsc
	OrderTwinDesc
	OrderShuffled
)

func (o Ordering) String() string {
	switch o {
	case OrderRoster:
		return "roster"
	case OrderQuotaAsc:
		return "quota-asc"
	case OrderQuotaDesc:
		return "quota-desc"
	case OrderTwinAsc:
		return "twin-asc"
	case OrderTwinDesc:
		return "twin-desc"
	case OrderShuffled:
		return "shuffled"
	}
	return fmt.Sprintf("ordering(%d)", int(o))
}

// Strategy is one construction recipe tried by the search. Seed feeds the
// attempt's own random source and is recorded for reproduction.
type Strategy struct {
	Name          string
	Ordering      Ordering
	AscendingScan bool
	Seed          int64
}

// Strategies returns the recipes for n attempts: the deterministic
// orderings first, then seeded shuffles.
func Strategies(n int, baseSeed int64) []Strategy {
	fixed := []Strategy{
		{Ordering: OrderRoster},
		{Ordering: OrderQuotaAsc},
		{Ordering: OrderQuotaDesc},
		{Ordering: OrderTwinAsc},
		{Ordering: OrderTwinDesc},
		{Ordering: OrderRoster, AscendingScan: true},
	}
	out := make([]Strategy, 0, n)
	for i := 0; i < n; i++ {
		var s Strategy
		if i < len(fixed) {
			s = fixed[i]
		} else {
			s = Strategy{Ordering: OrderShuffled, AscendingScan: i%2 == 1}
		}
		s.Seed = baseSeed + int64(i)
		s.Name = s.Ordering.String()
		if s.AscendingScan {
			s.Name += "/up"
		}
		if s.Ordering == OrderShuffled {
			s.Name = fmt.Sprintf("%s#%d", s.Name, i)
		}
		out = append(out, s)
	}
	return out
}

// order returns the members in the sequence this strategy constructs with.
// Ties always fall back to ascending id.
func (s Strategy) order(members []Member, rng *rand.Rand) []Member {
	out := slices.Clone(members)
	if s.Ordering == OrderRoster {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	switch s.Ordering {
	case OrderQuotaAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].RoomQuota < out[j].RoomQuota })
	case OrderQuotaDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].RoomQuota > out[j].RoomQuota })
	case OrderTwinAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TwinQuota < out[j].TwinQuota })
	case OrderTwinDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TwinQuota > out[j].TwinQuota })
	case OrderShuffled:
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}
