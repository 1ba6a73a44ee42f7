package models

// RoomKind tells how a room is cleaned today
type RoomKind string

const (
	KindNormal RoomKind = "normal"
	KindEco    RoomKind = "eco"
	KindEcoOut RoomKind = "eco_out"
)

// Room represents a hotel room that needs cleaning in this shift
type Room struct {
	Number int  `json:"number" yaml:"number" binding:"required,min=1"`
	Twin   bool `json:"twin,omitempty" yaml:"twin,omitempty"`
	Eco    bool `json:"eco,omitempty" yaml:"eco,omitempty"`
	EcoOut bool `json:"eco_out,omitempty" yaml:"eco_out,omitempty"`
}

// Floor derives the floor from the room number (1205 -> 12)
func (r Room) Floor() int {
	return r.Number / 100
}

// Kind returns the cleaning kind; eco-out wins over eco
func (r Room) Kind() RoomKind {
	switch {
	case r.EcoOut:
		return KindEcoOut
	case r.Eco:
		return KindEco
	default:
		return KindNormal
	}
}

// Housekeeper represents a member of staff working the shift
type Housekeeper struct {
	ID        int       `json:"id" yaml:"id" binding:"required,min=1"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	RoomQuota int       `json:"room_quota" yaml:"room_quota" binding:"min=0"`
	TwinQuota TwinQuota `json:"twin_quota" yaml:"twin_quota"`
	HasBath   bool      `json:"has_bath" yaml:"has_bath"`
}

// Durations holds the cleaning time per room type, in minutes
type Durations struct {
	Single float64 `json:"single" yaml:"single" binding:"min=0"`
	Twin   float64 `json:"twin" yaml:"twin" binding:"min=0"`
	Eco    float64 `json:"eco" yaml:"eco" binding:"min=0"`
	Bath   float64 `json:"bath" yaml:"bath" binding:"min=0"`
}

// DefaultDurations mirrors the times the front desk sheet uses
func DefaultDurations() Durations {
	return Durations{Single: 24, Twin: 28, Eco: 5, Bath: 50}
}

// AllocationInput is the data structure for the allocation endpoint
type AllocationInput struct {
	Rooms        []Room        `json:"rooms" yaml:"rooms" binding:"required,min=1,dive"`
	Housekeepers []Housekeeper `json:"housekeepers" yaml:"housekeepers" binding:"required,min=1,dive"`
	Durations    Durations     `json:"durations" yaml:"durations"`
	Seed         int64         `json:"seed,omitempty" yaml:"seed,omitempty"`
	Attempts     int           `json:"attempts,omitempty" yaml:"attempts,omitempty" binding:"min=0,max=500"`
	Strict       *bool         `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// ApplyDefaults fills the cleaning times when the caller sent none
func (in *AllocationInput) ApplyDefaults() {
	if in.Durations == (Durations{}) {
		in.Durations = DefaultDurations()
	}
}

// HousekeeperStats summarises what one housekeeper ended up with
type HousekeeperStats struct {
	ID          int     `json:"id"`
	Name        string  `json:"name,omitempty"`
	RoomQuota   int     `json:"room_quota"`
	TwinQuota   int     `json:"twin_quota"`
	HasBath     bool    `json:"has_bath"`
	NormalRooms []int   `json:"normal_rooms"`
	EcoRooms    []int   `json:"eco_rooms"`
	Floors      []int   `json:"floors"`
	TwinCount   int     `json:"twin_count"`
	EcoCount    int     `json:"eco_count"`
	FinishTime  float64 `json:"finish_time"`
}

// Relaxation records a rule that was bent to produce a result in relaxed mode
type Relaxation struct {
	Room        int    `json:"room"`
	Housekeeper int    `json:"housekeeper"`
	Rule        string `json:"rule"`
	Detail      string `json:"detail"`
}

// Violation represents a property the allocation does not satisfy
type Violation struct {
	Rule        string `json:"rule"`
	Housekeeper int    `json:"housekeeper,omitempty"`
	Room        int    `json:"room,omitempty"`
	Detail      string `json:"detail"`
}

// ScoreBreakdown is the scorer output attached to a response
type ScoreBreakdown struct {
	Penalty            float64 `json:"penalty"`
	QuotaDeviation     int     `json:"quota_deviation"`
	FloorViolations    int     `json:"floor_violations"`
	BathViolations     int     `json:"bath_violations"`
	LocalityViolations int     `json:"locality_violations"`
	TwinSpread         int     `json:"twin_spread"`
	EcoSpread          int     `json:"eco_spread"`
	FinishSpread       float64 `json:"finish_spread"`
}

// AllocationResponse is the data structure for the allocation result
type AllocationResponse struct {
	RunID         string             `json:"run_id"`
	Assignments   map[int]int        `json:"assignments"` // room -> housekeeper id, 0 = unassigned
	Housekeepers  []HousekeeperStats `json:"housekeepers"`
	Score         ScoreBreakdown     `json:"score"`
	Strategy      string             `json:"strategy"`
	Seed          int64              `json:"seed"`
	Attempts      int                `json:"attempts"`
	FairnessScore float64            `json:"fairness_score"`
	Relaxations   []Relaxation       `json:"relaxations,omitempty"`
	Shortfalls    []Violation        `json:"shortfalls,omitempty"`
}

// CheckInput asks for a caller-edited allocation to be verified
type CheckInput struct {
	AllocationInput
	Assignments map[int]int `json:"assignments" binding:"required"`
}
