package allocator

import (
	"math"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"go.uber.org/zap"
)

// Stats summarises each housekeeper's share, in roster order
func Stats(p *Problem, a *Allocation, policy Policy) []models.HousekeeperStats {
	b := newBoard(p, policy, a, zap.NewNop())
	twins := b.twinCounts()
	eco := b.ecoCounts()
	times := b.finishTimes()

	out := make([]models.HousekeeperStats, 0, len(p.Members))
	for _, m := range p.Members {
		normal := b.normalOf(m.ID)
		ecoRooms := b.ecoOf(m.ID)
		if normal == nil {
			normal = []int{}
		}
		if ecoRooms == nil {
			ecoRooms = []int{}
		}
		out = append(out, models.HousekeeperStats{
			ID:          m.ID,
			Name:        m.Name,
			RoomQuota:   m.RoomQuota,
			TwinQuota:   m.TwinQuota,
			HasBath:     m.HasBath,
			NormalRooms: normal,
			EcoRooms:    ecoRooms,
			Floors:      b.footprint(m.ID),
			TwinCount:   twins[m.ID],
			EcoCount:    eco[m.ID],
			FinishTime:  times[m.ID],
		})
	}
	return out
}

// FairnessScore returns a percentage (0-100) representing how evenly the
// work is spread. 100% means every housekeeper finishes at the same time.
func FairnessScore(stats []models.HousekeeperStats) float64 {
	if len(stats) == 0 {
		return 100.0
	}

	var sum float64
	for _, s := range stats {
		sum += s.FinishTime
	}
	if sum == 0 {
		return 100.0
	}
	mean := sum / float64(len(stats))

	var varianceSum float64
	for _, s := range stats {
		diff := s.FinishTime - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(stats)))

	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}

// Report turns a search result into the API response
func (a *Allocator) Report(res *Result) models.AllocationResponse {
	best := res.Best
	stats := Stats(a.problem, best.Allocation, a.policy)
	return models.AllocationResponse{
		Assignments:   best.Allocation.Map(),
		Housekeepers:  stats,
		Score:         best.Score.Breakdown(),
		Strategy:      best.Strategy.Name,
		Seed:          best.Strategy.Seed,
		Attempts:      res.Completed,
		FairnessScore: FairnessScore(stats),
		Relaxations:   best.Relaxations,
		Shortfalls:    Shortfalls(Verify(a.problem, best.Allocation, a.policy)),
	}
}
