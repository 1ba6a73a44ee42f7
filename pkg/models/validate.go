package models

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate checks the structural rules of an input outside of gin
// (CLI, CSV uploads). It shares the `binding` tags gin uses.
func Validate(input *AllocationInput) error {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
	})
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("field %s failed on %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return err
	}
	return CheckDuplicates(input)
}

// CheckDuplicates rejects repeated room numbers and housekeeper ids
func CheckDuplicates(input *AllocationInput) error {
	rooms := make(map[int]bool, len(input.Rooms))
	for _, r := range input.Rooms {
		if rooms[r.Number] {
			return fmt.Errorf("duplicate room number: %d", r.Number)
		}
		rooms[r.Number] = true
	}
	ids := make(map[int]bool, len(input.Housekeepers))
	for _, h := range input.Housekeepers {
		if ids[h.ID] {
			return fmt.Errorf("duplicate housekeeper id: %d", h.ID)
		}
		ids[h.ID] = true
	}
	return nil
}

// BuildRooms merges flat room lists into Room values. Every number in
// twin, eco and ecoOut that is missing from normal is added as well.
func BuildRooms(normal, twin, eco, ecoOut []int) []Room {
	index := make(map[int]int)
	var rooms []Room
	get := func(n int) *Room {
		if i, ok := index[n]; ok {
			return &rooms[i]
		}
		index[n] = len(rooms)
		rooms = append(rooms, Room{Number: n})
		return &rooms[len(rooms)-1]
	}
	for _, n := range normal {
		get(n)
	}
	for _, n := range eco {
		get(n).Eco = true
	}
	for _, n := range ecoOut {
		get(n).EcoOut = true
	}
	for _, n := range twin {
		get(n).Twin = true
	}
	return rooms
}
