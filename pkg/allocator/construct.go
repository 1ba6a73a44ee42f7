package allocator

import (
	"fmt"
	"maps"
	"slices"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
)

// construct hands out the normal rooms so that every housekeeper gets
// exactly its quota. Bath-duty staff fill first from the lowest floors up;
// everybody else then takes consecutive rooms in floor-scan order.
func construct(p *Problem, policy Policy, order []Member, ascendingScan bool) (*Allocation, []models.Relaxation, error) {
	alloc := NewAllocation(p.Rooms())

	byFloor := make(map[int][]int)
	for _, r := range p.Normal {
		byFloor[floorOf(r)] = append(byFloor[floorOf(r)], r)
	}
	floors := slices.Sorted(maps.Keys(byFloor))

	taken := make(map[int]bool, len(p.Normal))
	counts := make(map[int]int, len(order))
	var relaxations []models.Relaxation

	// Lowest floors first, rooms ascending within a floor.
	var lowFirst []int
	for _, f := range floors {
		lowFirst = append(lowFirst, byFloor[f]...)
	}
	next := 0
	for _, m := range order {
		if !m.HasBath {
			continue
		}
		for counts[m.ID] < m.RoomQuota && next < len(lowFirst) {
			r := lowFirst[next]
			next++
			if taken[r] {
				continue
			}
			if floorOf(r) > policy.BathFloorCeiling {
				if policy.Strict {
					return nil, nil, &InfeasibleError{
						Housekeeper: m.ID,
						Reason:      fmt.Sprintf("not enough rooms at or below floor %d for bath duty", policy.BathFloorCeiling),
					}
				}
				relaxations = append(relaxations, models.Relaxation{
					Room:        r,
					Housekeeper: m.ID,
					Rule:        RuleBathFloor,
					Detail:      fmt.Sprintf("bath duty placed on floor %d", floorOf(r)),
				})
			}
			alloc.assign(r, m.ID)
			taken[r] = true
			counts[m.ID]++
		}
	}

	scan := slices.Clone(floors)
	if !ascendingScan {
		slices.Reverse(scan)
	}
	var remain []int
	for _, f := range scan {
		for _, r := range byFloor[f] {
			if !taken[r] {
				remain = append(remain, r)
			}
		}
	}
	next = 0
	for _, m := range order {
		if m.HasBath {
			continue
		}
		for counts[m.ID] < m.RoomQuota && next < len(remain) {
			r := remain[next]
			next++
			alloc.assign(r, m.ID)
			taken[r] = true
			counts[m.ID]++
		}
	}

	for _, r := range remain[next:] {
		id := leastLoaded(order, counts)
		alloc.assign(r, id)
		counts[id]++
	}

	for _, m := range order {
		if counts[m.ID] != m.RoomQuota {
			return nil, nil, &PreconditionError{
				What:     fmt.Sprintf("housekeeper %d room quota", m.ID),
				Expected: m.RoomQuota,
				Actual:   counts[m.ID],
			}
		}
	}
	return alloc, relaxations, nil
}

func leastLoaded(members []Member, counts map[int]int) int {
	best := Unassigned
	for _, m := range members {
		if best == Unassigned || counts[m.ID] < counts[best] || (counts[m.ID] == counts[best] && m.ID < best) {
			best = m.ID
		}
	}
	return best
}
