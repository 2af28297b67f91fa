package scoring

import (
	"errors"
	"fmt"
)

const (
	DefaultMaxEffectiveDistanceKM = 20.0
	DefaultMinMatchScore          = 0.20
	DefaultTopN                   = 3
)

var ErrInvalidTunables = errors.New("invalid_matching_tunables")

// Tunables are the ranking knobs that may change at runtime. The urgency
// profile table is not one of them.
type Tunables struct {
	MaxEffectiveDistanceKM float64
	MinMatchScore          float64
	DefaultTopN            int
}

func DefaultTunables() Tunables {
	return Tunables{
		MaxEffectiveDistanceKM: DefaultMaxEffectiveDistanceKM,
		MinMatchScore:          DefaultMinMatchScore,
		DefaultTopN:            DefaultTopN,
	}
}

func (t Tunables) Validate() error {
	if t.MaxEffectiveDistanceKM <= 0 {
		return fmt.Errorf("%w: max_effective_distance_km must be positive", ErrInvalidTunables)
	}
	if t.MinMatchScore < 0 || t.MinMatchScore > 1 {
		return fmt.Errorf("%w: min_match_score must be within [0,1]", ErrInvalidTunables)
	}
	if t.DefaultTopN <= 0 {
		return fmt.Errorf("%w: default_top_n must be positive", ErrInvalidTunables)
	}
	return nil
}
