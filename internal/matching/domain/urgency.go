package domain

import "strings"

// Tier is an urgency tier code, U1 being the most critical.
type Tier string

const (
	TierU1 Tier = "U1"
	TierU2 Tier = "U2"
	TierU3 Tier = "U3"
	TierU4 Tier = "U4"
	TierU5 Tier = "U5"

	// DefaultTier is used when a tier code is not recognised.
	DefaultTier = TierU4
)

// Profile weighs proximity against capacity. The weights sum to 1.
type Profile struct {
	DistanceWeight float64
	QuantityWeight float64
}

var profiles = map[Tier]Profile{
	TierU1: {DistanceWeight: 0.80, QuantityWeight: 0.20},
	TierU2: {DistanceWeight: 0.70, QuantityWeight: 0.30},
	TierU3: {DistanceWeight: 0.50, QuantityWeight: 0.50},
	TierU4: {DistanceWeight: 0.30, QuantityWeight: 0.70},
	TierU5: {DistanceWeight: 0.20, QuantityWeight: 0.80},
}

// ParseTier extracts the tier code from a level label such as
// "U1 - Critical". Unknown codes resolve to DefaultTier.
func ParseTier(label string) Tier {
	if tier, ok := LookupTier(label); ok {
		return tier
	}
	return DefaultTier
}

// LookupTier is ParseTier without the fallback.
func LookupTier(label string) (Tier, bool) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return "", false
	}
	tier := Tier(fields[0])
	if _, ok := profiles[tier]; !ok {
		return "", false
	}
	return tier, true
}

// ProfileFor returns the weights of tier, falling back to DefaultTier.
func ProfileFor(tier Tier) Profile {
	if p, ok := profiles[tier]; ok {
		return p
	}
	return profiles[DefaultTier]
}
