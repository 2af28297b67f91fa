package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTier(t *testing.T) {
	cases := map[string]Tier{
		"U1 - Critical": TierU1,
		"U2":            TierU2,
		"  U3 - Medium": TierU3,
		"U5 - Minimal":  TierU5,
		"U9 - Bogus":    DefaultTier,
		"u1 - critical": DefaultTier,
		"":              DefaultTier,
	}
	for label, want := range cases {
		assert.Equal(t, want, ParseTier(label), label)
	}
}

func TestProfilesSumToOne(t *testing.T) {
	for _, tier := range []Tier{TierU1, TierU2, TierU3, TierU4, TierU5} {
		p := ProfileFor(tier)
		assert.InDelta(t, 1.0, p.DistanceWeight+p.QuantityWeight, 1e-9, tier)
	}
}

func TestProfileForUnknownUsesU4(t *testing.T) {
	assert.Equal(t, ProfileFor(TierU4), ProfileFor(Tier("X")))
	assert.Equal(t, Profile{DistanceWeight: 0.8, QuantityWeight: 0.2}, ProfileFor(TierU1))
}

func TestQueryInputBuild(t *testing.T) {
	lat, lng := 19.055, 72.835
	qty := 3

	q, err := QueryInput{Latitude: &lat, Longitude: &lng, NeedType: "medical", Quantity: &qty, UrgencyLevel: "U1 - Critical"}.Build()
	assert.NoError(t, err)
	assert.Equal(t, TierU1, q.Tier())

	_, err = QueryInput{Longitude: &lng, NeedType: "medical", UrgencyLevel: "U1"}.Build()
	assert.ErrorIs(t, err, ErrMissingLocation)

	_, err = QueryInput{Latitude: &lat, Longitude: &lng, UrgencyLevel: "U1"}.Build()
	assert.ErrorIs(t, err, ErrMissingNeedType)

	_, err = QueryInput{Latitude: &lat, Longitude: &lng, NeedType: "spaceships", UrgencyLevel: "U1"}.Build()
	assert.ErrorIs(t, err, ErrInvalidNeedType)

	_, err = QueryInput{Latitude: &lat, Longitude: &lng, NeedType: "food"}.Build()
	assert.ErrorIs(t, err, ErrMissingUrgencyTier)

	bad := 120.0
	_, err = QueryInput{Latitude: &bad, Longitude: &lng, NeedType: "food", UrgencyLevel: "U2"}.Build()
	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestLookupTier(t *testing.T) {
	tier, ok := LookupTier("U2 - High")
	assert.True(t, ok)
	assert.Equal(t, TierU2, tier)

	_, ok = LookupTier("U7")
	assert.False(t, ok)
	_, ok = LookupTier("")
	assert.False(t, ok)
}
