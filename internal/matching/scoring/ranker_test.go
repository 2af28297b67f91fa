package scoring

import (
	"testing"

	"github.com/smallbiznis/sathi/internal/geo"
	matchingdomain "github.com/smallbiznis/sathi/internal/matching/domain"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseQuery() matchingdomain.Query {
	return matchingdomain.Query{
		Location:     geo.Point{Latitude: 19.0, Longitude: 72.8},
		NeedType:     resourcedomain.TypeMedical,
		Quantity:     intPtr(4),
		UrgencyLevel: "U2 - High",
	}
}

func TestRankReturnsEmptyWhenNoTypeMatches(t *testing.T) {
	food := medicalResource(1, 19.0, 72.8, 10)
	food.ResourceType = resourcedomain.TypeFood

	matches := Rank(baseQuery(), []resourcedomain.Resource{food}, 3, DefaultTunables())
	require.NotNil(t, matches)
	assert.Empty(t, matches)

	assert.Empty(t, Rank(baseQuery(), nil, 3, DefaultTunables()))
}

func TestRankSortsAndLimits(t *testing.T) {
	candidates := []resourcedomain.Resource{
		medicalResource(1, 19.10, 72.8, 10),
		medicalResource(2, 19.00, 72.8, 10),
		medicalResource(3, 19.05, 72.8, 10),
		medicalResource(4, 19.02, 72.8, 10),
		medicalResource(5, 19.01, 72.8, 2),
	}

	matches := Rank(baseQuery(), candidates, 3, DefaultTunables())
	require.Len(t, matches, 3)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].MatchScore, matches[i].MatchScore)
	}
	assert.Equal(t, "2", matches[0].ResourceID)
}

func TestRankDefaultTopN(t *testing.T) {
	var candidates []resourcedomain.Resource
	for i := int64(1); i <= 6; i++ {
		candidates = append(candidates, medicalResource(i, 19.0, 72.8, 10))
	}
	assert.Len(t, Rank(baseQuery(), candidates, 0, DefaultTunables()), DefaultTopN)
}

func TestRankDiscardsLowScores(t *testing.T) {
	q := baseQuery()
	q.UrgencyLevel = "U1 - Critical"
	// Too far and empty: score 0.
	empty := medicalResource(1, 19.5, 72.8, 0)
	near := medicalResource(2, 19.0, 72.8, 4)

	matches := Rank(q, []resourcedomain.Resource{empty, near}, 3, DefaultTunables())
	require.Len(t, matches, 1)
	assert.Equal(t, "2", matches[0].ResourceID)
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	candidates := []resourcedomain.Resource{
		medicalResource(30, 19.01, 72.8, 10),
		medicalResource(10, 19.01, 72.8, 10),
		medicalResource(20, 19.01, 72.8, 10),
	}
	matches := Rank(baseQuery(), candidates, 3, DefaultTunables())
	require.Len(t, matches, 3)
	assert.Equal(t, []string{"30", "10", "20"}, []string{matches[0].ResourceID, matches[1].ResourceID, matches[2].ResourceID})
}

func TestRankPopulatesMatchFields(t *testing.T) {
	r := medicalResource(7, 19.0, 72.81, 3)
	r.ProviderName = "City Hospital"
	r.LocationName = "Dadar"

	matches := Rank(baseQuery(), []resourcedomain.Resource{r}, 1, DefaultTunables())
	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, "7", m.ResourceID)
	assert.Equal(t, "medical", m.ResourceType)
	assert.Equal(t, "City Hospital", m.ProviderName)
	assert.Equal(t, "Dadar", m.LocationName)
	assert.Equal(t, 3, m.QuantityAvailable)
	assert.True(t, m.IsPartialFulfillment)
	assert.Equal(t, 0.75, m.FulfillmentRatio)
	assert.Equal(t, geo.Round(m.DistanceKM, 2), m.DistanceKM)
	assert.Len(t, m.Reasoning, 4)
}

func TestRankHonoursTunables(t *testing.T) {
	tun := DefaultTunables()
	tun.MinMatchScore = 0.99
	candidates := []resourcedomain.Resource{
		medicalResource(1, 19.0, 72.8, 10),
		medicalResource(2, 19.03, 72.8, 10),
	}
	matches := Rank(baseQuery(), candidates, 3, tun)
	require.Len(t, matches, 1)
	assert.Equal(t, "1", matches[0].ResourceID)
}

func TestTunablesValidate(t *testing.T) {
	assert.NoError(t, DefaultTunables().Validate())
	assert.ErrorIs(t, Tunables{MaxEffectiveDistanceKM: 0, MinMatchScore: 0.2, DefaultTopN: 3}.Validate(), ErrInvalidTunables)
	assert.ErrorIs(t, Tunables{MaxEffectiveDistanceKM: 20, MinMatchScore: 1.5, DefaultTopN: 3}.Validate(), ErrInvalidTunables)
	assert.ErrorIs(t, Tunables{MaxEffectiveDistanceKM: 20, MinMatchScore: 0.2, DefaultTopN: 0}.Validate(), ErrInvalidTunables)
}
