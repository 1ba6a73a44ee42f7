package allocator

import (
	"fmt"
	"slices"
	"sort"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
)

// Member is a housekeeper with its twin quota resolved
type Member struct {
	ID        int
	Name      string
	RoomQuota int
	TwinQuota int
	AutoTwin  bool
	HasBath   bool
}

// Problem is the normalised, validated input of one run. It is read-only
// once built and shared by every attempt.
type Problem struct {
	Normal    []int
	Eco       []int
	EcoOut    []int
	Members   []Member
	Durations models.Durations

	twin   map[int]bool
	kind   map[int]models.RoomKind
	member map[int]int
}

// NewProblem validates the input, checks the quota preconditions and
// resolves "auto" twin quotas.
func NewProblem(input *models.AllocationInput) (*Problem, error) {
	if len(input.Housekeepers) == 0 {
		return nil, fmt.Errorf("%w: at least one housekeeper is required", ErrInvalidInput)
	}
	if err := models.CheckDuplicates(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	d := input.Durations
	if d.Single < 0 || d.Twin < 0 || d.Eco < 0 || d.Bath < 0 {
		return nil, fmt.Errorf("%w: durations must not be negative", ErrInvalidInput)
	}

	p := &Problem{
		Durations: d,
		twin:      make(map[int]bool),
		kind:      make(map[int]models.RoomKind, len(input.Rooms)),
		member:    make(map[int]int, len(input.Housekeepers)),
	}

	twinNormal := 0
	for _, r := range input.Rooms {
		if r.Number <= 0 {
			return nil, fmt.Errorf("%w: room number %d", ErrInvalidInput, r.Number)
		}
		kind := r.Kind()
		p.kind[r.Number] = kind
		if r.Twin {
			p.twin[r.Number] = true
		}
		switch kind {
		case models.KindEcoOut:
			p.EcoOut = append(p.EcoOut, r.Number)
		case models.KindEco:
			p.Eco = append(p.Eco, r.Number)
		default:
			p.Normal = append(p.Normal, r.Number)
			if r.Twin {
				twinNormal++
			}
		}
	}
	slices.Sort(p.Normal)
	slices.Sort(p.Eco)
	slices.Sort(p.EcoOut)

	quotaSum, explicitTwins := 0, 0
	for _, h := range input.Housekeepers {
		if h.ID <= Unassigned {
			return nil, fmt.Errorf("%w: housekeeper id %d", ErrInvalidInput, h.ID)
		}
		if h.RoomQuota < 0 {
			return nil, fmt.Errorf("%w: housekeeper %d has a negative room quota", ErrInvalidInput, h.ID)
		}
		quotaSum += h.RoomQuota
		if !h.TwinQuota.Auto {
			explicitTwins += h.TwinQuota.Value
		}
		p.member[h.ID] = len(p.Members)
		p.Members = append(p.Members, Member{
			ID:        h.ID,
			Name:      h.Name,
			RoomQuota: h.RoomQuota,
			TwinQuota: h.TwinQuota.Value,
			AutoTwin:  h.TwinQuota.Auto,
			HasBath:   h.HasBath,
		})
	}

	if quotaSum != len(p.Normal) {
		return nil, &PreconditionError{What: "room quota sum vs normal rooms", Expected: len(p.Normal), Actual: quotaSum}
	}
	if explicitTwins > twinNormal {
		return nil, &PreconditionError{What: "explicit twin quotas vs normal twin rooms", Expected: twinNormal, Actual: explicitTwins}
	}

	p.resolveTwinQuotas(twinNormal - explicitTwins)
	return p, nil
}

// resolveTwinQuotas shares the remaining twin rooms among "auto" members in
// proportion to their room quota; the remainder goes to the largest quotas.
func (p *Problem) resolveTwinQuotas(remaining int) {
	var auto []int
	quotaSum := 0
	for i, m := range p.Members {
		if m.AutoTwin {
			auto = append(auto, i)
			quotaSum += m.RoomQuota
		}
	}
	if len(auto) == 0 || quotaSum == 0 {
		return
	}

	given := 0
	for _, i := range auto {
		share := remaining * p.Members[i].RoomQuota / quotaSum
		p.Members[i].TwinQuota = share
		given += share
	}

	sort.SliceStable(auto, func(a, b int) bool {
		ma, mb := p.Members[auto[a]], p.Members[auto[b]]
		if ma.RoomQuota != mb.RoomQuota {
			return ma.RoomQuota > mb.RoomQuota
		}
		return ma.ID < mb.ID
	})
	for k := 0; given < remaining; k++ {
		p.Members[auto[k%len(auto)]].TwinQuota++
		given++
	}
}

// Member looks a housekeeper up by id
func (p *Problem) Member(id int) (Member, bool) {
	i, ok := p.member[id]
	if !ok {
		return Member{}, false
	}
	return p.Members[i], true
}

// TwinQuota returns the resolved twin quota of a housekeeper
func (p *Problem) TwinQuota(id int) int {
	m, _ := p.Member(id)
	return m.TwinQuota
}

// IsTwin reports whether the room is a twin
func (p *Problem) IsTwin(room int) bool { return p.twin[room] }

// Kind returns the cleaning kind of a known room
func (p *Problem) Kind(room int) (models.RoomKind, bool) {
	k, ok := p.kind[room]
	return k, ok
}

// Rooms returns every room the engine allocates, ascending
func (p *Problem) Rooms() []int {
	all := make([]int, 0, len(p.kind))
	all = append(all, p.Normal...)
	all = append(all, p.Eco...)
	all = append(all, p.EcoOut...)
	slices.Sort(all)
	return all
}

// Duration is the cleaning time of a single room
func (p *Problem) Duration(room int) float64 {
	switch p.kind[room] {
	case models.KindEco, models.KindEcoOut:
		return p.Durations.Eco
	}
	if p.twin[room] {
		return p.Durations.Twin
	}
	return p.Durations.Single
}

// membersByID returns the members sorted by ascending id
func (p *Problem) membersByID() []Member {
	out := slices.Clone(p.Members)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func floorOf(room int) int { return room / 100 }
