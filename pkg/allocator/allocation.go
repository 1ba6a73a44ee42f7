package allocator

import (
	"maps"
	"slices"
)

// Unassigned is the housekeeper id of a room nobody holds
const Unassigned = 0

// Allocation maps every room of a run to a housekeeper id
type Allocation struct {
	owner map[int]int
}

// NewAllocation returns an allocation with every room unassigned
func NewAllocation(rooms []int) *Allocation {
	a := &Allocation{owner: make(map[int]int, len(rooms))}
	for _, r := range rooms {
		a.owner[r] = Unassigned
	}
	return a
}

// AllocationFromMap wraps a room -> housekeeper map, e.g. one edited by a supervisor
func AllocationFromMap(m map[int]int) *Allocation {
	return &Allocation{owner: maps.Clone(m)}
}

// Owner returns who holds a room; Unassigned if nobody does
func (a *Allocation) Owner(room int) int {
	return a.owner[room]
}

// Has reports whether the room is part of the allocation
func (a *Allocation) Has(room int) bool {
	_, ok := a.owner[room]
	return ok
}

func (a *Allocation) assign(room, id int) {
	a.owner[room] = id
}

func (a *Allocation) swap(r1, r2 int) {
	a.owner[r1], a.owner[r2] = a.owner[r2], a.owner[r1]
}

// Clone returns an independent copy
func (a *Allocation) Clone() *Allocation {
	return &Allocation{owner: maps.Clone(a.owner)}
}

// RoomsOf lists the rooms held by a housekeeper, ascending
func (a *Allocation) RoomsOf(id int) []int {
	var rooms []int
	for r, owner := range a.owner {
		if owner == id {
			rooms = append(rooms, r)
		}
	}
	slices.Sort(rooms)
	return rooms
}

// Rooms lists every room, ascending
func (a *Allocation) Rooms() []int {
	return slices.Sorted(maps.Keys(a.owner))
}

// Map returns a copy of the room -> housekeeper mapping
func (a *Allocation) Map() map[int]int {
	return maps.Clone(a.owner)
}

// Len is the number of rooms in the allocation
func (a *Allocation) Len() int {
	return len(a.owner)
}

// distinctFloors returns the sorted floors of a room list
func distinctFloors(rooms []int) []int {
	var floors []int
	for _, r := range rooms {
		f := floorOf(r)
		if !slices.Contains(floors, f) {
			floors = append(floors, f)
		}
	}
	slices.Sort(floors)
	return floors
}

// floorsCompliant is the floor cap: one floor, or two adjacent ones
func floorsCompliant(floors []int) bool {
	switch len(floors) {
	case 0, 1:
		return true
	case 2:
		return floors[1]-floors[0] == 1
	}
	return false
}

// floorsWithinSpan is the relaxed cap used while twins are badly skewed
func floorsWithinSpan(floors []int, span int) bool {
	if len(floors) <= 1 {
		return true
	}
	return len(floors) <= 3 && floors[len(floors)-1]-floors[0] <= span
}

// floorCost counts the rooms outside the best window of two adjacent
// floors. Zero exactly when the floor cap holds.
func floorCost(rooms []int) int {
	if len(rooms) == 0 {
		return 0
	}
	_, covered := bestWindow(rooms)
	return len(rooms) - covered
}

// bestWindow returns the lower floor of the two-floor window covering the
// most rooms, and how many it covers. Ties go to the lower floor.
func bestWindow(rooms []int) (int, int) {
	perFloor := make(map[int]int)
	for _, r := range rooms {
		perFloor[floorOf(r)]++
	}
	lo, best := 0, -1
	for _, f := range slices.Sorted(maps.Keys(perFloor)) {
		covered := perFloor[f] + perFloor[f+1]
		if covered > best {
			lo, best = f, covered
		}
	}
	return lo, best
}

// replaced returns a copy of rooms with out swapped for in
func replaced(rooms []int, out, in int) []int {
	next := make([]int, 0, len(rooms))
	for _, r := range rooms {
		if r == out {
			next = append(next, in)
			continue
		}
		next = append(next, r)
	}
	return next
}

func spread(counts map[int]int) (lo, hi int) {
	first := true
	for _, c := range counts {
		if first {
			lo, hi = c, c
			first = false
			continue
		}
		lo = min(lo, c)
		hi = max(hi, c)
	}
	return lo, hi
}
