package allocator

// Weights rank the scorer's components. Hard rules must outweigh any
// realistic sum of the soft spreads.
type Weights struct {
	Quota        float64 `yaml:"quota" json:"quota"`
	Bath         float64 `yaml:"bath" json:"bath"`
	Floor        float64 `yaml:"floor" json:"floor"`
	Locality     float64 `yaml:"locality" json:"locality"`
	TwinSpread   float64 `yaml:"twin_spread" json:"twin_spread"`
	EcoSpread    float64 `yaml:"eco_spread" json:"eco_spread"`
	FinishSpread float64 `yaml:"finish_spread" json:"finish_spread"`
}

// Policy holds the tolerances the phases work to
type Policy struct {
	// Strict makes eco-out rooms without a housekeeper on their floor (and
	// bath-duty staff that cannot fit under the ceiling) fatal.
	Strict bool `yaml:"strict" json:"strict"`

	// BathFloorCeiling is the highest floor bath-duty staff may clean on.
	BathFloorCeiling int `yaml:"bath_floor_ceiling" json:"bath_floor_ceiling"`

	// TwinBalancer stops once max-min twin count is within TwinSpreadTarget
	// (or max <= ZeroTwinMax when someone holds none).
	TwinSpreadTarget int `yaml:"twin_spread_target" json:"twin_spread_target"`
	ZeroTwinMax      int `yaml:"zero_twin_max" json:"zero_twin_max"`
	// TwinSpreadLimit is the fairness bound later phases must not break.
	TwinSpreadLimit  int  `yaml:"twin_spread_limit" json:"twin_spread_limit"`
	SevereTwinSpread int  `yaml:"severe_twin_spread" json:"severe_twin_spread"`
	RelaxTwinFloors  bool `yaml:"relax_twin_floors" json:"relax_twin_floors"`
	// RelaxedFloorSpan allows three floors within this span when twin floors are relaxed.
	RelaxedFloorSpan int `yaml:"relaxed_floor_span" json:"relaxed_floor_span"`

	EcoSpreadLimit   int     `yaml:"eco_spread_limit" json:"eco_spread_limit"`
	FinishTimeTarget float64 `yaml:"finish_time_target" json:"finish_time_target"`

	MaxTwinIterations   int `yaml:"max_twin_iterations" json:"max_twin_iterations"`
	MaxFloorIterations  int `yaml:"max_floor_iterations" json:"max_floor_iterations"`
	MaxFinishIterations int `yaml:"max_finish_iterations" json:"max_finish_iterations"`

	Weights Weights `yaml:"weights" json:"weights"`
}

// DefaultPolicy returns the tolerances used by the front desk today
func DefaultPolicy() Policy {
	return Policy{
		Strict:              true,
		BathFloorCeiling:    4,
		TwinSpreadTarget:    1,
		ZeroTwinMax:         1,
		TwinSpreadLimit:     2,
		SevereTwinSpread:    3,
		RelaxTwinFloors:     false,
		RelaxedFloorSpan:    2,
		EcoSpreadLimit:      2,
		FinishTimeTarget:    10,
		MaxTwinIterations:   1000,
		MaxFloorIterations:  1000,
		MaxFinishIterations: 1000,
		Weights: Weights{
			Quota:        1_000_000,
			Bath:         100_000,
			Floor:        10_000,
			Locality:     10_000,
			TwinSpread:   100,
			EcoSpread:    10,
			FinishSpread: 1,
		},
	}
}
