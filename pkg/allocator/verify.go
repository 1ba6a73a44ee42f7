package allocator

import (
	"fmt"
	"slices"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"go.uber.org/zap"
)

// Rule names used in violations and relaxations
const (
	RuleUnassigned         = "unassigned"
	RuleUnknownRoom        = "unknown_room"
	RuleUnknownHousekeeper = "unknown_housekeeper"
	RuleQuota              = "quota"
	RuleFloorCap           = "floor_cap"
	RuleBathFloor          = "bath_floor"
	RuleEcoOutLocality     = "eco_out_locality"
	RuleTwinFairness       = "twin_fairness"
	RuleEcoSpread          = "eco_spread"
	RuleFinishTime         = "finish_time"
)

// IsHardRule separates broken rules from missed fairness targets
func IsHardRule(rule string) bool {
	switch rule {
	case RuleTwinFairness, RuleEcoSpread, RuleFinishTime:
		return false
	}
	return true
}

// Verify lists every rule the allocation breaks and every fairness target
// it misses. An empty result means the allocation is fully compliant.
func Verify(p *Problem, a *Allocation, policy Policy) []models.Violation {
	var out []models.Violation
	b := newBoard(p, policy, a, zap.NewNop())

	for _, r := range a.Rooms() {
		if _, ok := p.Kind(r); !ok {
			out = append(out, models.Violation{Rule: RuleUnknownRoom, Room: r, Detail: "room is not part of the input"})
			continue
		}
		id := a.Owner(r)
		if id == Unassigned {
			out = append(out, models.Violation{Rule: RuleUnassigned, Room: r, Detail: "room has no housekeeper"})
		} else if _, ok := p.Member(id); !ok {
			out = append(out, models.Violation{Rule: RuleUnknownHousekeeper, Room: r, Housekeeper: id, Detail: "housekeeper is not on the roster"})
		}
	}
	for _, r := range p.Rooms() {
		if !a.Has(r) {
			out = append(out, models.Violation{Rule: RuleUnassigned, Room: r, Detail: "room missing from allocation"})
		}
	}

	for _, m := range b.members {
		normal := b.normalOf(m.ID)
		if len(normal) != m.RoomQuota {
			out = append(out, models.Violation{
				Rule: RuleQuota, Housekeeper: m.ID,
				Detail: fmt.Sprintf("holds %d normal rooms, quota is %d", len(normal), m.RoomQuota),
			})
		}
		floors := distinctFloors(normal)
		if !floorsCompliant(floors) {
			out = append(out, models.Violation{
				Rule: RuleFloorCap, Housekeeper: m.ID,
				Detail: fmt.Sprintf("works floors %v", floors),
			})
		}
		for _, r := range a.RoomsOf(m.ID) {
			if !b.bathAllows(m, r) {
				out = append(out, models.Violation{
					Rule: RuleBathFloor, Housekeeper: m.ID, Room: r,
					Detail: fmt.Sprintf("bath duty above floor %d", policy.BathFloorCeiling),
				})
			}
			if k, _ := p.Kind(r); k == models.KindEcoOut && !slices.Contains(floors, floorOf(r)) {
				out = append(out, models.Violation{
					Rule: RuleEcoOutLocality, Housekeeper: m.ID, Room: r,
					Detail: fmt.Sprintf("no normal room on floor %d", floorOf(r)),
				})
			}
		}
	}

	s := NewScorer(p, policy).Score(a)
	if !policy.twinsFair(s.MinTwins, s.MinTwins+s.TwinSpread) {
		out = append(out, models.Violation{
			Rule:   RuleTwinFairness,
			Detail: fmt.Sprintf("twin counts range over %d (lowest %d)", s.TwinSpread, s.MinTwins),
		})
	}
	if s.EcoSpread > policy.EcoSpreadLimit {
		out = append(out, models.Violation{
			Rule:   RuleEcoSpread,
			Detail: fmt.Sprintf("eco counts range over %d", s.EcoSpread),
		})
	}
	times := b.finishTimes()
	for _, group := range quotaGroups(b.members) {
		if gap := groupGap(group, times); gap > policy.FinishTimeTarget {
			out = append(out, models.Violation{
				Rule:   RuleFinishTime,
				Detail: fmt.Sprintf("quota %d group finishes %.0f minutes apart", group[0].RoomQuota, gap),
			})
		}
	}
	return out
}

// HardViolations filters Verify output down to broken rules
func HardViolations(vs []models.Violation) []models.Violation {
	return slices.DeleteFunc(slices.Clone(vs), func(v models.Violation) bool { return !IsHardRule(v.Rule) })
}

// Shortfalls filters Verify output down to missed fairness targets
func Shortfalls(vs []models.Violation) []models.Violation {
	return slices.DeleteFunc(slices.Clone(vs), func(v models.Violation) bool { return IsHardRule(v.Rule) })
}
