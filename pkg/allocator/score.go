package allocator

import (
	"slices"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"go.uber.org/zap"
)

// Score is the weighted penalty of a candidate allocation and the
// measures it was built from. Lower is better.
type Score struct {
	Penalty float64

	QuotaDeviation     int
	FloorViolations    int
	BathViolations     int
	LocalityViolations int

	TwinSpread   int
	MinTwins     int
	EcoSpread    int
	FinishSpread float64 // summed over same-quota groups
	WorstGap     float64 // largest single same-quota group gap
}

// Hard counts the violations of rules that must hold
func (s Score) Hard() int {
	return s.QuotaDeviation + s.FloorViolations + s.BathViolations + s.LocalityViolations
}

// Shortfalls counts the soft targets that were missed
func (s Score) Shortfalls(policy Policy) int {
	n := 0
	if !policy.twinsFair(s.MinTwins, s.MinTwins+s.TwinSpread) {
		n++
	}
	if s.EcoSpread > policy.EcoSpreadLimit {
		n++
	}
	if s.WorstGap > policy.FinishTimeTarget {
		n++
	}
	return n
}

// Clean reports a candidate with no violation and no shortfall
func (s Score) Clean(policy Policy) bool {
	return s.Hard() == 0 && s.Shortfalls(policy) == 0
}

// Breakdown converts the score for a response
func (s Score) Breakdown() models.ScoreBreakdown {
	return models.ScoreBreakdown{
		Penalty:            s.Penalty,
		QuotaDeviation:     s.QuotaDeviation,
		FloorViolations:    s.FloorViolations,
		BathViolations:     s.BathViolations,
		LocalityViolations: s.LocalityViolations,
		TwinSpread:         s.TwinSpread,
		EcoSpread:          s.EcoSpread,
		FinishSpread:       s.FinishSpread,
	}
}

// Scorer rates allocations of one problem. It only reads the allocation.
type Scorer struct {
	problem *Problem
	policy  Policy
}

// NewScorer creates a scorer for a problem
func NewScorer(p *Problem, policy Policy) *Scorer {
	return &Scorer{problem: p, policy: policy}
}

// Score computes the penalty of an allocation
func (sc *Scorer) Score(a *Allocation) Score {
	b := newBoard(sc.problem, sc.policy, a, zap.NewNop())
	var s Score

	normalCount := make(map[int]int, len(b.members))
	for _, r := range sc.problem.Normal {
		id := a.Owner(r)
		if id == Unassigned {
			s.QuotaDeviation++
			continue
		}
		normalCount[id]++
	}
	for _, m := range b.members {
		s.QuotaDeviation += abs(normalCount[m.ID] - m.RoomQuota)

		normal := b.normalOf(m.ID)
		if floorCost(normal) > 0 {
			s.FloorViolations++
		}
		normalFloors := distinctFloors(normal)
		for _, r := range a.RoomsOf(m.ID) {
			if !b.bathAllows(m, r) {
				s.BathViolations++
			}
			if k, _ := sc.problem.Kind(r); k == models.KindEcoOut && !slices.Contains(normalFloors, floorOf(r)) {
				s.LocalityViolations++
			}
		}
	}

	lo, hi := spread(b.twinCounts())
	s.TwinSpread, s.MinTwins = hi-lo, lo
	lo, hi = spread(b.ecoCounts())
	s.EcoSpread = hi - lo

	times := b.finishTimes()
	for _, group := range quotaGroups(b.members) {
		gap := groupGap(group, times)
		s.FinishSpread += gap
		s.WorstGap = max(s.WorstGap, gap)
	}

	w := sc.policy.Weights
	s.Penalty = w.Quota*float64(s.QuotaDeviation) +
		w.Bath*float64(s.BathViolations) +
		w.Floor*float64(s.FloorViolations) +
		w.Locality*float64(s.LocalityViolations) +
		w.TwinSpread*float64(s.TwinSpread) +
		w.EcoSpread*float64(s.EcoSpread) +
		w.FinishSpread*s.FinishSpread
	return s
}
