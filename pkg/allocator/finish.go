package allocator

import (
	"math"
	"maps"
	"slices"
	"sort"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"go.uber.org/zap"
)

// quotaGroups groups housekeepers with the same room quota, ascending quota
func quotaGroups(members []Member) [][]Member {
	byQuota := make(map[int][]Member)
	for _, m := range members {
		byQuota[m.RoomQuota] = append(byQuota[m.RoomQuota], m)
	}
	var groups [][]Member
	for _, q := range slices.Sorted(maps.Keys(byQuota)) {
		groups = append(groups, byQuota[q])
	}
	return groups
}

// balanceFinishTimes narrows the gap between the slowest and fastest
// housekeeper of each same-quota group. It first tries a normal-room swap,
// then moving one eco room; it stops at the target or when neither helps.
func (b *board) balanceFinishTimes() int {
	moves := 0
	budget := b.policy.MaxFinishIterations
	for _, group := range quotaGroups(b.members) {
		if len(group) < 2 {
			continue
		}
		for ; budget > 0; budget-- {
			times := b.finishTimes()
			slow, fast := extremes(group, times)
			gap := times[slow.ID] - times[fast.ID]
			if gap <= b.policy.FinishTimeTarget {
				break
			}
			if b.tryFinishSwap(slow, fast, times, gap) || b.tryEcoTransfer(slow, group, times, gap) {
				moves++
				continue
			}
			break
		}
	}
	return moves
}

func extremes(group []Member, times map[int]float64) (slow, fast Member) {
	slow, fast = group[0], group[0]
	for _, m := range group[1:] {
		if times[m.ID] > times[slow.ID] {
			slow = m
		}
		if times[m.ID] < times[fast.ID] {
			fast = m
		}
	}
	return slow, fast
}

func groupGap(group []Member, times map[int]float64) float64 {
	slow, fast := extremes(group, times)
	return times[slow.ID] - times[fast.ID]
}

// tryFinishSwap trades a long room of the slow housekeeper for a shorter
// room of the fast one when it narrows their gap and keeps floors and twin
// fairness intact.
func (b *board) tryFinishSwap(slow, fast Member, times map[int]float64, gap float64) bool {
	slowRooms := b.normalOf(slow.ID)
	fastRooms := b.normalOf(fast.ID)
	byDuration := func(rooms []int, desc bool) []int {
		out := slices.Clone(rooms)
		sort.SliceStable(out, func(i, j int) bool {
			di, dj := b.p.Duration(out[i]), b.p.Duration(out[j])
			if di != dj {
				if desc {
					return di > dj
				}
				return di < dj
			}
			return out[i] < out[j]
		})
		return out
	}

	twins := b.twinCounts()

	for _, sr := range byDuration(slowRooms, true) {
		for _, fr := range byDuration(fastRooms, false) {
			delta := b.p.Duration(sr) - b.p.Duration(fr)
			if delta <= 0 || math.Abs(gap-2*delta) >= gap {
				continue
			}
			if !b.bathAllows(fast, sr) || !b.bathAllows(slow, fr) {
				continue
			}
			slowAfter := replaced(slowRooms, sr, fr)
			fastAfter := replaced(fastRooms, fr, sr)
			if !b.acceptableFloors(slowRooms, slowAfter, false) || !b.acceptableFloors(fastRooms, fastAfter, false) {
				continue
			}
			if !b.ecoOutAnchored(slow.ID, slowAfter) || !b.ecoOutAnchored(fast.ID, fastAfter) {
				continue
			}
			if !b.keepsTwinFairness(twins, b.twinsAfterSwap(twins, slow.ID, fast.ID, sr, fr)) {
				continue
			}
			b.alloc.swap(sr, fr)
			b.log.Debug("finish-time swap",
				zap.Int("slow", slow.ID), zap.Int("fast", fast.ID),
				zap.Int("room_out", sr), zap.Int("room_in", fr), zap.Float64("gap", gap))
			return true
		}
	}
	return false
}

// tryEcoTransfer hands one eco room of the slow housekeeper to another
// member of its group. Eco-out rooms only go to someone already on their
// floor; pure eco rooms may add a floor if the footprint stays compliant.
func (b *board) tryEcoTransfer(slow Member, group []Member, times map[int]float64, gap float64) bool {
	receivers := slices.DeleteFunc(slices.Clone(group), func(m Member) bool { return m.ID == slow.ID })
	sort.SliceStable(receivers, func(i, j int) bool {
		if times[receivers[i].ID] != times[receivers[j].ID] {
			return times[receivers[i].ID] < times[receivers[j].ID]
		}
		return receivers[i].ID < receivers[j].ID
	})

	eco := b.ecoCounts()
	lo, hi := spread(eco)
	bound := max(hi-lo, b.policy.EcoSpreadLimit)

	for _, r := range b.ecoOf(slow.ID) {
		f := floorOf(r)
		kind, _ := b.p.Kind(r)
		for _, rec := range receivers {
			if !b.bathAllows(rec, r) {
				continue
			}
			if kind == models.KindEcoOut {
				if !slices.Contains(distinctFloors(b.normalOf(rec.ID)), f) {
					continue
				}
			} else if fp := b.footprint(rec.ID); !slices.Contains(fp, f) {
				grown := append(slices.Clone(fp), f)
				slices.Sort(grown)
				if !floorsCompliant(grown) {
					continue
				}
			}

			after := maps.Clone(eco)
			after[slow.ID]--
			after[rec.ID]++
			if nlo, nhi := spread(after); nhi-nlo > bound {
				continue
			}
			nextTimes := maps.Clone(times)
			nextTimes[slow.ID] -= b.p.Durations.Eco
			nextTimes[rec.ID] += b.p.Durations.Eco
			if groupGap(group, nextTimes) >= gap {
				continue
			}
			b.alloc.assign(r, rec.ID)
			b.log.Debug("eco transfer",
				zap.Int("from", slow.ID), zap.Int("to", rec.ID), zap.Int("room", r), zap.Float64("gap", gap))
			return true
		}
	}
	return false
}
