package allocator

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"go.uber.org/zap"
)

// ecoLedger tracks the running eco counts, projected finish times and
// floor footprints while eco rooms are handed out.
type ecoLedger struct {
	eco    map[int]int
	finish map[int]float64
	floors map[int][]int
}

func (b *board) newEcoLedger() *ecoLedger {
	l := &ecoLedger{
		eco:    b.ecoCounts(),
		finish: b.finishTimes(),
		floors: make(map[int][]int, len(b.members)),
	}
	for _, m := range b.members {
		l.floors[m.ID] = b.footprint(m.ID)
	}
	return l
}

func (b *board) give(l *ecoLedger, room, id int) {
	b.alloc.assign(room, id)
	l.eco[id]++
	l.finish[id] += b.p.Durations.Eco
	if f := floorOf(room); !slices.Contains(l.floors[id], f) {
		l.floors[id] = append(l.floors[id], f)
		slices.Sort(l.floors[id])
	}
}

// lighter orders housekeepers by eco count, then projected finish, then id
func (l *ecoLedger) lighter(a, c Member) bool {
	if l.eco[a.ID] != l.eco[c.ID] {
		return l.eco[a.ID] < l.eco[c.ID]
	}
	if l.finish[a.ID] != l.finish[c.ID] {
		return l.finish[a.ID] < l.finish[c.ID]
	}
	return a.ID < c.ID
}

func (l *ecoLedger) lightest(cands []Member) Member {
	best := cands[0]
	for _, m := range cands[1:] {
		if l.lighter(m, best) {
			best = m
		}
	}
	return best
}

// assignEco places eco-out rooms with somebody already on their floor, then
// shares the pure eco rooms floor by floor. Normal rooms are never touched.
func (b *board) assignEco() error {
	l := b.newEcoLedger()

	for _, r := range b.p.EcoOut {
		id, err := b.placeEcoOut(l, r)
		if err != nil {
			return err
		}
		b.give(l, r, id)
	}

	byFloor := make(map[int][]int)
	for _, r := range b.p.Eco {
		byFloor[floorOf(r)] = append(byFloor[floorOf(r)], r)
	}
	present := make(map[int]int, len(byFloor))
	for f := range byFloor {
		present[f] = len(b.presentOn(l, f))
	}
	floors := slices.Collect(maps.Keys(byFloor))
	sort.Slice(floors, func(i, j int) bool {
		fi, fj := floors[i], floors[j]
		if present[fi] != present[fj] {
			return present[fi] < present[fj]
		}
		if len(byFloor[fi]) != len(byFloor[fj]) {
			return len(byFloor[fi]) > len(byFloor[fj])
		}
		return fi < fj
	})

	for _, f := range floors {
		if err := b.placeEcoFloor(l, f, byFloor[f]); err != nil {
			return err
		}
	}
	return nil
}

// presentOn lists the housekeepers already working a floor who may take eco rooms there
func (b *board) presentOn(l *ecoLedger, floor int) []Member {
	var out []Member
	for _, m := range b.members {
		if slices.Contains(l.floors[m.ID], floor) && (!m.HasBath || floor <= b.policy.BathFloorCeiling) {
			out = append(out, m)
		}
	}
	return out
}

func (b *board) placeEcoOut(l *ecoLedger, room int) (int, error) {
	f := floorOf(room)
	var cands []Member
	for _, m := range b.members {
		if slices.Contains(distinctFloors(b.normalOf(m.ID)), f) && b.bathAllows(m, room) {
			cands = append(cands, m)
		}
	}
	if len(cands) > 0 {
		return l.lightest(cands).ID, nil
	}
	if b.policy.Strict {
		return Unassigned, &InfeasibleError{Room: room, Reason: fmt.Sprintf("no housekeeper works floor %d", f)}
	}

	// Relaxed: nearest eligible housekeeper by floor distance.
	nearest := func(m Member) int {
		d := -1
		for _, nf := range distinctFloors(b.normalOf(m.ID)) {
			if dist := abs(nf - f); d < 0 || dist < d {
				d = dist
			}
		}
		if d < 0 {
			return 1 << 30
		}
		return d
	}
	pool := slices.DeleteFunc(slices.Clone(b.members), func(m Member) bool { return !b.bathAllows(m, room) })
	if len(pool) == 0 {
		pool = b.members
	}
	best := pool[0]
	for _, m := range pool[1:] {
		dm, db := nearest(m), nearest(best)
		if dm < db || (dm == db && l.lighter(m, best)) {
			best = m
		}
	}
	b.relax(models.Relaxation{
		Room:        room,
		Housekeeper: best.ID,
		Rule:        RuleEcoOutLocality,
		Detail:      fmt.Sprintf("nobody works floor %d; moved to nearest housekeeper", f),
	})
	if !b.bathAllows(best, room) {
		b.relax(models.Relaxation{Room: room, Housekeeper: best.ID, Rule: RuleBathFloor, Detail: "no bath-eligible housekeeper left"})
	}
	return best.ID, nil
}

type ecoPlan struct {
	order  []Member
	take   map[int]int
	spread int
	high   int
}

// placeEcoFloor shares the eco rooms of one floor. Housekeepers already on
// the floor are always candidates; others may join only if they work one
// adjacent floor and each gets at least two rooms here. Above the bath
// ceiling with only bath-duty staff left, strict mode fails and relaxed mode
// records a bath_floor relaxation per room.
func (b *board) placeEcoFloor(l *ecoLedger, floor int, rooms []int) error {
	existing := b.presentOn(l, floor)
	var joiners []Member
	for _, m := range b.members {
		if slices.Contains(l.floors[m.ID], floor) || len(l.floors[m.ID]) >= 2 {
			continue
		}
		if m.HasBath && floor > b.policy.BathFloorCeiling {
			continue
		}
		grown := append(slices.Clone(l.floors[m.ID]), floor)
		slices.Sort(grown)
		if !floorsCompliant(grown) {
			continue
		}
		joiners = append(joiners, m)
	}

	if plan := b.planEcoFloor(l, len(rooms), existing, joiners); plan != nil {
		i := 0
		for _, m := range plan.order {
			for n := 0; n < plan.take[m.ID]; n++ {
				b.give(l, rooms[i], m.ID)
				i++
			}
		}
		return nil
	}

	eligible := slices.DeleteFunc(slices.Clone(b.members), func(m Member) bool {
		return m.HasBath && floor > b.policy.BathFloorCeiling
	})
	give := func(room, id int) { b.give(l, room, id) }
	if len(eligible) == 0 {
		if b.policy.Strict {
			return &InfeasibleError{Room: rooms[0], Reason: fmt.Sprintf("only bath-duty housekeepers could take floor %d", floor)}
		}
		eligible = b.members
		give = func(room, id int) {
			b.give(l, room, id)
			b.relax(models.Relaxation{Room: room, Housekeeper: id, Rule: RuleBathFloor, Detail: fmt.Sprintf("every housekeeper has bath duty above floor %d", b.policy.BathFloorCeiling)})
		}
	}

	if len(rooms) == 1 {
		// A lone eco room goes to whoever carries the fewest eco rooms overall.
		best := eligible[0]
		for _, m := range eligible[1:] {
			if l.eco[m.ID] != l.eco[best.ID] {
				if l.eco[m.ID] < l.eco[best.ID] {
					best = m
				}
				continue
			}
			mWide, bWide := len(l.floors[m.ID]) >= 2, len(l.floors[best.ID]) >= 2
			if mWide != bWide {
				if !mWide {
					best = m
				}
				continue
			}
			if l.lighter(m, best) {
				best = m
			}
		}
		give(rooms[0], best.ID)
		return nil
	}

	pool := existing
	if len(pool) == 0 {
		pool = slices.DeleteFunc(slices.Clone(eligible), func(m Member) bool { return len(l.floors[m.ID]) >= 2 })
	}
	if len(pool) == 0 {
		pool = eligible
	}
	for _, r := range rooms {
		give(r, l.lightest(pool).ID)
	}
	return nil
}

// planEcoFloor tries every number k of joiners (each taking at least two
// rooms) and keeps the split with the smallest eco spread, then the
// smallest maximum.
func (b *board) planEcoFloor(l *ecoLedger, n int, existing, joiners []Member) *ecoPlan {
	sorted := slices.Clone(joiners)
	sort.SliceStable(sorted, func(i, j int) bool { return l.lighter(sorted[i], sorted[j]) })

	var best *ecoPlan
	for k := 0; k <= min(len(sorted), n/2); k++ {
		total := len(existing) + k
		if total == 0 {
			continue
		}
		base := n / total
		joinBase := base
		if k > 0 && joinBase < 2 {
			joinBase = 2
		}
		if base*len(existing)+joinBase*k > n {
			continue
		}

		order := append(slices.Clone(existing), sorted[:k]...)
		take := make(map[int]int, total)
		assigned := 0
		for i, m := range order {
			if i < len(existing) {
				take[m.ID] = base
			} else {
				take[m.ID] = joinBase
			}
			assigned += take[m.ID]
		}
		for ; assigned < n; assigned++ {
			pick := order[0]
			for _, m := range order[1:] {
				if b.ecoLess(l, m, pick, take) {
					pick = m
				}
			}
			take[pick.ID]++
		}

		lo, hi := -1, 0
		for _, m := range b.members {
			c := l.eco[m.ID] + take[m.ID]
			if lo < 0 || c < lo {
				lo = c
			}
			hi = max(hi, c)
		}
		plan := &ecoPlan{order: order, take: take, spread: hi - lo, high: hi}
		if best == nil || plan.spread < best.spread || (plan.spread == best.spread && plan.high < best.high) {
			best = plan
		}
	}
	if best != nil {
		b.log.Debug("eco floor plan", zap.Int("rooms", n), zap.Int("participants", len(best.order)), zap.Int("spread", best.spread))
	}
	return best
}

// ecoLess compares two participants by their running eco count including
// the rooms already planned for them on this floor.
func (b *board) ecoLess(l *ecoLedger, a, c Member, take map[int]int) bool {
	ea, ec := l.eco[a.ID]+take[a.ID], l.eco[c.ID]+take[c.ID]
	if ea != ec {
		return ea < ec
	}
	fa := l.finish[a.ID] + float64(take[a.ID])*b.p.Durations.Eco
	fc := l.finish[c.ID] + float64(take[c.ID])*b.p.Durations.Eco
	if fa != fc {
		return fa < fc
	}
	return a.ID < c.ID
}
