package allocator

import (
	"slices"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"go.uber.org/zap"
)

// board is the mutable state of a single attempt. Nothing on it is shared
// with other attempts.
type board struct {
	p           *Problem
	policy      Policy
	alloc       *Allocation
	members     []Member // ascending id
	relaxations []models.Relaxation
	log         *zap.Logger
}

func newBoard(p *Problem, policy Policy, alloc *Allocation, log *zap.Logger) *board {
	return &board{
		p:       p,
		policy:  policy,
		alloc:   alloc,
		members: p.membersByID(),
		log:     log,
	}
}

func (b *board) isNormal(room int) bool {
	k, _ := b.p.Kind(room)
	return k == models.KindNormal
}

// normalOf lists a housekeeper's quota-counted rooms
func (b *board) normalOf(id int) []int {
	return slices.DeleteFunc(b.alloc.RoomsOf(id), func(r int) bool { return !b.isNormal(r) })
}

// ecoOf lists a housekeeper's eco and eco-out rooms
func (b *board) ecoOf(id int) []int {
	return slices.DeleteFunc(b.alloc.RoomsOf(id), b.isNormal)
}

// footprint is every floor a housekeeper visits, eco rooms included
func (b *board) footprint(id int) []int {
	return distinctFloors(b.alloc.RoomsOf(id))
}

func (b *board) bathAllows(m Member, room int) bool {
	return !m.HasBath || floorOf(room) <= b.policy.BathFloorCeiling
}

// ecoOutAnchored reports whether every eco-out room held alongside the
// given normal rooms still has a normal room on its floor.
func (b *board) ecoOutAnchored(id int, normal []int) bool {
	for _, r := range b.alloc.RoomsOf(id) {
		if k, _ := b.p.Kind(r); k != models.KindEcoOut {
			continue
		}
		if !slices.Contains(distinctFloors(normal), floorOf(r)) {
			return false
		}
	}
	return true
}

func (b *board) twinCounts() map[int]int {
	counts := make(map[int]int, len(b.members))
	for _, m := range b.members {
		counts[m.ID] = 0
	}
	for _, r := range b.p.Normal {
		if b.p.IsTwin(r) {
			if id := b.alloc.Owner(r); hasKey(counts, id) {
				counts[id]++
			}
		}
	}
	return counts
}

func (b *board) ecoCounts() map[int]int {
	counts := make(map[int]int, len(b.members))
	for _, m := range b.members {
		counts[m.ID] = 0
	}
	for _, rooms := range [][]int{b.p.Eco, b.p.EcoOut} {
		for _, r := range rooms {
			if id := b.alloc.Owner(r); hasKey(counts, id) {
				counts[id]++
			}
		}
	}
	return counts
}

// finishTimes estimates each housekeeper's total cleaning minutes
func (b *board) finishTimes() map[int]float64 {
	times := make(map[int]float64, len(b.members))
	for _, m := range b.members {
		if m.HasBath {
			times[m.ID] = b.p.Durations.Bath
		} else {
			times[m.ID] = 0
		}
	}
	for _, r := range b.alloc.Rooms() {
		if id := b.alloc.Owner(r); hasKey(times, id) {
			times[id] += b.p.Duration(r)
		}
	}
	return times
}

// acceptableFloors decides whether a housekeeper may move from one set of
// normal rooms to another. A compliant footprint must stay compliant; a
// non-compliant one must not get worse, unless relaxed allows a short span.
func (b *board) acceptableFloors(before, after []int, relaxed bool) bool {
	costAfter := floorCost(after)
	if costAfter == 0 || costAfter <= floorCost(before) {
		return true
	}
	return relaxed && floorsWithinSpan(distinctFloors(after), b.policy.RelaxedFloorSpan)
}

func (b *board) relax(rel models.Relaxation) {
	b.relaxations = append(b.relaxations, rel)
	b.log.Debug("constraint relaxed",
		zap.String("rule", rel.Rule),
		zap.Int("room", rel.Room),
		zap.Int("housekeeper", rel.Housekeeper),
	)
}

func hasKey[V any](m map[int]V, k int) bool {
	_, ok := m[k]
	return ok
}
