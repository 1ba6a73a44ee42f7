package allocator

import (
	"testing"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func staff(quotas []int, bath ...int) []models.Housekeeper {
	onBath := make(map[int]bool)
	for _, id := range bath {
		onBath[id] = true
	}
	out := make([]models.Housekeeper, len(quotas))
	for i, q := range quotas {
		out[i] = models.Housekeeper{
			ID:        i + 1,
			RoomQuota: q,
			TwinQuota: models.AutoTwinQuota(),
			HasBath:   onBath[i+1],
		}
	}
	return out
}

func mustProblem(t *testing.T, input *models.AllocationInput) *Problem {
	t.Helper()
	p, err := NewProblem(input)
	require.NoError(t, err)
	return p
}

// boardFrom builds a board whose allocation is given room by room
func boardFrom(p *Problem, policy Policy, owners map[int]int) *board {
	alloc := NewAllocation(p.Rooms())
	for r, id := range owners {
		alloc.assign(r, id)
	}
	return newBoard(p, policy, alloc, zap.NewNop())
}

func span(from, to int) []int {
	var out []int
	for r := from; r <= to; r++ {
		out = append(out, r)
	}
	return out
}

// scenarioA is the eight-housekeeper shift: floors 2-8, three bath-duty
// housekeepers, eco rooms 206 212 308 511 512 710 715 (212 511 715 eco-out).
func scenarioA() *models.AllocationInput {
	perFloor := map[int]int{2: 10, 3: 11, 4: 12, 5: 10, 6: 12, 7: 10, 8: 9}
	eco := []int{206, 212, 308, 511, 512, 710, 715}
	ecoOut := []int{212, 511, 715}
	skip := make(map[int]bool)
	for _, r := range eco {
		skip[r] = true
	}

	var normal, twins []int
	for f := 2; f <= 8; f++ {
		n := 0
		for r := f*100 + 1; n < perFloor[f]; r++ {
			if skip[r] {
				continue
			}
			normal = append(normal, r)
			if r%3 == 0 {
				twins = append(twins, r)
			}
			n++
		}
	}

	hks := staff([]int{7, 8, 8, 10, 10, 10, 10, 11}, 1, 2, 3)
	hks[1].TwinQuota = models.FixedTwinQuota(2)
	hks[2].TwinQuota = models.FixedTwinQuota(2)

	return &models.AllocationInput{
		Rooms:        models.BuildRooms(normal, twins, eco, ecoOut),
		Housekeepers: hks,
		Durations:    models.Durations{Single: 24, Twin: 28, Eco: 5, Bath: 50},
	}
}
