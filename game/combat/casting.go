package combat

import (
	"fmt"

	"github.com/wricardo/realm-movement/game/topology"
)

// NoPenalty is the doubled multiplier for spells cast at normal cost
const NoPenalty = 2

// RangeBand charges Penalty for fortresses up to MaxDistance away
type RangeBand struct {
	MaxDistance float64 `json:"max_distance" yaml:"max_distance"`
	Penalty     int     `json:"penalty" yaml:"penalty"`
}

// RangeSettings lists bands in ascending distance. MaxPenalty applies beyond
// the last band, to banished wizards and across planes.
type RangeSettings struct {
	Bands      []RangeBand `json:"bands" yaml:"bands"`
	MaxPenalty int         `json:"max_penalty" yaml:"max_penalty"`
}

// DefaultRangeSettings: up to 5 tiles costs normal, then +50% per 5 tiles, up to triple
func DefaultRangeSettings() RangeSettings {
	return RangeSettings{
		Bands: []RangeBand{
			{MaxDistance: 5, Penalty: 2},
			{MaxDistance: 10, Penalty: 3},
			{MaxDistance: 15, Penalty: 4},
			{MaxDistance: 20, Penalty: 5},
		},
		MaxPenalty: 6,
	}
}

// WithDefaults returns the default settings when none are configured
func (r RangeSettings) WithDefaults() RangeSettings {
	if len(r.Bands) == 0 && r.MaxPenalty == 0 {
		return DefaultRangeSettings()
	}
	return r
}

// Validate checks bands are ascending and penalties are at least NoPenalty
func (r RangeSettings) Validate() error {
	if r.MaxPenalty < NoPenalty {
		return fmt.Errorf("casting range validation: max_penalty must be at least %d, got %d", NoPenalty, r.MaxPenalty)
	}
	for i, b := range r.Bands {
		if b.Penalty < NoPenalty {
			return fmt.Errorf("casting range validation: band %d penalty must be at least %d, got %d", i, NoPenalty, b.Penalty)
		}
		if b.MaxDistance < 0 {
			return fmt.Errorf("casting range validation: band %d max_distance cannot be negative", i)
		}
		if i > 0 && b.MaxDistance <= r.Bands[i-1].MaxDistance {
			return fmt.Errorf("casting range validation: band %d max_distance must exceed band %d", i, i-1)
		}
	}
	return nil
}

// CastingContext describes a spell cast in combat. A nil Fortress means the
// caster has been banished.
type CastingContext struct {
	Combat    topology.Coords  `json:"combat"`
	Fortress  *topology.Coords `json:"fortress,omitempty"`
	Channeler bool             `json:"channeler"`
}

// CastingRangePenalty returns the doubled cost multiplier for a combat spell,
// NoPenalty meaning normal cost. Distance is measured on the overland map.
func CastingRangePenalty(sys topology.CoordinateSystem, c CastingContext, r RangeSettings) int {
	if c.Channeler {
		return NoPenalty
	}
	if c.Fortress == nil || c.Fortress.Plane != c.Combat.Plane {
		return r.MaxPenalty
	}

	distance := sys.Distance(c.Combat, *c.Fortress)
	for _, b := range r.Bands {
		if distance <= b.MaxDistance {
			return b.Penalty
		}
	}
	return r.MaxPenalty
}
