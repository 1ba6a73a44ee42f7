package allocator

import (
	"maps"
	"sort"

	"go.uber.org/zap"
)

type roomSwap struct {
	from, to int // from is held by the first housekeeper, to by the second
}

// balanceTwins swaps one twin for one single between the housekeepers with
// the most and the fewest twins until the spread is within target. Quotas
// never change because every move is a one-for-one swap.
func (b *board) balanceTwins() int {
	swaps := 0
	for iter := 0; iter < b.policy.MaxTwinIterations; iter++ {
		counts := b.twinCounts()
		lo, hi := spread(counts)
		if lo > 0 && hi-lo <= b.policy.TwinSpreadTarget {
			break
		}
		if lo == 0 && hi <= b.policy.ZeroTwinMax {
			break
		}
		relaxed := b.policy.RelaxTwinFloors && hi-lo >= b.policy.SevereTwinSpread

		donors, receivers := b.twinParties(counts, lo)
		applied := false
	search:
		for _, d := range donors {
			for _, r := range receivers {
				sw, ok := b.findTwinSwap(d, r, relaxed)
				if !ok {
					continue
				}
				b.alloc.swap(sw.from, sw.to)
				swaps++
				applied = true
				b.log.Debug("twin swap",
					zap.Int("donor", d.ID), zap.Int("receiver", r.ID),
					zap.Int("twin_room", sw.from), zap.Int("single_room", sw.to))
				break search
			}
		}
		if !applied {
			break
		}
	}
	return swaps
}

// twinParties orders donors (at least two above the minimum) and receivers
// (at the minimum). Among equals, the one furthest over its twin quota gives
// first and the one furthest under takes first.
func (b *board) twinParties(counts map[int]int, lo int) (donors, receivers []Member) {
	for _, m := range b.members {
		switch c := counts[m.ID]; {
		case c >= lo+2:
			donors = append(donors, m)
		case c == lo:
			receivers = append(receivers, m)
		}
	}
	deficit := func(m Member) int { return counts[m.ID] - m.TwinQuota }
	sort.SliceStable(donors, func(i, j int) bool {
		ci, cj := counts[donors[i].ID], counts[donors[j].ID]
		if ci != cj {
			return ci > cj
		}
		return deficit(donors[i]) > deficit(donors[j])
	})
	sort.SliceStable(receivers, func(i, j int) bool {
		return deficit(receivers[i]) < deficit(receivers[j])
	})
	return donors, receivers
}

// findTwinSwap looks for a donor twin and a receiver single that can trade
// places, preferring receiver rooms close to the donor's lowest floor.
func (b *board) findTwinSwap(donor, receiver Member, relaxed bool) (roomSwap, bool) {
	donorRooms := b.normalOf(donor.ID)
	receiverRooms := b.normalOf(receiver.ID)
	if len(donorRooms) == 0 {
		return roomSwap{}, false
	}
	base := floorOf(donorRooms[0])

	var twins, singles []int
	for _, r := range donorRooms {
		if b.p.IsTwin(r) {
			twins = append(twins, r)
		}
	}
	for _, r := range receiverRooms {
		if !b.p.IsTwin(r) {
			singles = append(singles, r)
		}
	}
	sort.SliceStable(singles, func(i, j int) bool {
		di, dj := abs(floorOf(singles[i])-base), abs(floorOf(singles[j])-base)
		if di != dj {
			return di < dj
		}
		return singles[i] < singles[j]
	})

	for _, t := range twins {
		for _, s := range singles {
			if !b.bathAllows(receiver, t) || !b.bathAllows(donor, s) {
				continue
			}
			donorAfter := replaced(donorRooms, t, s)
			receiverAfter := replaced(receiverRooms, s, t)
			if !b.acceptableFloors(donorRooms, donorAfter, relaxed) || !b.acceptableFloors(receiverRooms, receiverAfter, relaxed) {
				continue
			}
			if !b.ecoOutAnchored(donor.ID, donorAfter) || !b.ecoOutAnchored(receiver.ID, receiverAfter) {
				continue
			}
			return roomSwap{from: t, to: s}, true
		}
	}
	return roomSwap{}, false
}

// twinsFair holds when the twin counts range over at most TwinSpreadLimit,
// and over at most ZeroTwinMax while somebody holds none.
func (p Policy) twinsFair(lo, hi int) bool {
	if hi-lo > p.TwinSpreadLimit {
		return false
	}
	return lo > 0 || hi <= p.ZeroTwinMax
}

// keepsTwinFairness accepts a move from one set of twin counts to another
// when fair counts stay fair. Counts that were already unfair may not widen.
func (b *board) keepsTwinFairness(before, after map[int]int) bool {
	lo, hi := spread(after)
	if b.policy.twinsFair(lo, hi) {
		return true
	}
	blo, bhi := spread(before)
	if b.policy.twinsFair(blo, bhi) {
		return false
	}
	return hi-lo <= bhi-blo
}

// twinsAfterSwap returns the twin counts once a hands room ra to c and
// takes room rc in return.
func (b *board) twinsAfterSwap(counts map[int]int, a, c, ra, rc int) map[int]int {
	after := maps.Clone(counts)
	if b.p.IsTwin(ra) {
		after[a]--
		after[c]++
	}
	if b.p.IsTwin(rc) {
		after[c]--
		after[a]++
	}
	return after
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
