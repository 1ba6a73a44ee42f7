package allocator

import (
	"slices"
	"sort"

	"go.uber.org/zap"
)

type floorMove struct {
	roomSwap
	other       int
	gain        int
	twinNeutral bool
	twinFair    bool
}

// compactFloors repairs housekeepers whose normal rooms spread over more
// than two floors (or two floors that are not adjacent) by trading rooms
// on their outlying floors for rooms on floors they keep. A swap is taken
// only when it lowers the combined floor cost of both sides, so the loop
// always ends.
func (b *board) compactFloors() int {
	swaps := 0
	for iter := 0; iter < b.policy.MaxFloorIterations; iter++ {
		applied := false
		for _, m := range b.members {
			rooms := b.normalOf(m.ID)
			if floorCost(rooms) == 0 {
				continue
			}
			mv, ok := b.findFloorSwap(m, rooms)
			if !ok {
				continue
			}
			b.alloc.swap(mv.from, mv.to)
			swaps++
			applied = true
			b.log.Debug("floor swap",
				zap.Int("housekeeper", m.ID), zap.Int("other", mv.other),
				zap.Int("room_out", mv.from), zap.Int("room_in", mv.to), zap.Int("gain", mv.gain))
			break
		}
		if !applied {
			break
		}
	}
	return swaps
}

// outliers lists the rooms outside the best two-floor window, rooms on the
// lowest and highest floors first.
func outliers(rooms []int) []int {
	lo, _ := bestWindow(rooms)
	floors := distinctFloors(rooms)
	extreme := func(r int) bool {
		f := floorOf(r)
		return f == floors[0] || f == floors[len(floors)-1]
	}
	var out []int
	for _, r := range rooms {
		if f := floorOf(r); f != lo && f != lo+1 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return extreme(out[i]) && !extreme(out[j])
	})
	return out
}

// findFloorSwap returns the swap with the largest cost reduction, keeping
// twin counts unchanged when it can. A swap that breaks twin fairness is
// taken only when nothing fair helps and it leaves both sides within the
// floor cap.
func (b *board) findFloorSwap(m Member, rooms []int) (floorMove, bool) {
	var best floorMove
	found := false
	before := floorCost(rooms)
	window, _ := bestWindow(rooms)
	twins := b.twinCounts()

	for _, r := range outliers(rooms) {
		for _, o := range b.members {
			if o.ID == m.ID || !b.bathAllows(o, r) {
				continue
			}
			otherRooms := b.normalOf(o.ID)
			otherBefore := floorCost(otherRooms)
			for _, s := range otherRooms {
				if f := floorOf(s); f != window && f != window+1 {
					continue
				}
				if !b.bathAllows(m, s) {
					continue
				}
				mAfter := replaced(rooms, r, s)
				oAfter := replaced(otherRooms, s, r)
				gain := before + otherBefore - floorCost(mAfter) - floorCost(oAfter)
				if gain <= 0 {
					continue
				}
				if !b.ecoOutAnchored(m.ID, mAfter) || !b.ecoOutAnchored(o.ID, oAfter) {
					continue
				}
				neutral := b.p.IsTwin(r) == b.p.IsTwin(s)
				fair := neutral || b.keepsTwinFairness(twins, b.twinsAfterSwap(twins, m.ID, o.ID, r, s))
				if !fair && (floorCost(mAfter) > 0 || floorCost(oAfter) > 0) {
					continue
				}
				mv := floorMove{roomSwap: roomSwap{from: r, to: s}, other: o.ID, gain: gain, twinNeutral: neutral, twinFair: fair}
				if !found || mv.beats(best) {
					best = mv
					found = true
				}
			}
		}
	}
	return best, found
}

func (mv floorMove) beats(other floorMove) bool {
	if mv.twinFair != other.twinFair {
		return mv.twinFair
	}
	if mv.gain != other.gain {
		return mv.gain > other.gain
	}
	return mv.twinNeutral && !other.twinNeutral
}

// floorViolators lists housekeepers still breaking the floor cap
func (b *board) floorViolators() []int {
	var ids []int
	for _, m := range b.members {
		if floorCost(b.normalOf(m.ID)) > 0 {
			ids = append(ids, m.ID)
		}
	}
	return slices.Clip(ids)
}
