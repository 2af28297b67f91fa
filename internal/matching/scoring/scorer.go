package scoring

import (
	"fmt"
	"math"

	"github.com/smallbiznis/sathi/internal/geo"
	matchingdomain "github.com/smallbiznis/sathi/internal/matching/domain"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
)

// Result is the outcome of scoring one resource against one query.
type Result struct {
	DistanceKM    float64
	DistanceScore float64
	QuantityScore float64
	// Score is normalised to [0,1] and rounded to 2 decimals.
	Score     float64
	IsPartial bool
	Reasoning []string
}

// DistanceScore decays linearly from 100 at 0 km to 0 at maxKM.
func DistanceScore(distanceKM, maxKM float64) float64 {
	if distanceKM >= maxKM {
		return 0
	}
	return math.Max(0, (1-distanceKM/maxKM)*100)
}

// QuantityScore rates how much of the requested quantity a resource can
// cover. A nil or non-positive request accepts any amount.
func QuantityScore(requested *int, available int) (score float64, partial bool) {
	if available <= 0 {
		return 0, false
	}
	if requested == nil || *requested <= 0 {
		return 100, false
	}
	if available >= *requested {
		return 100, false
	}
	return 100 * float64(available) / float64(*requested), true
}

// FulfillmentRatio is the share of the request a resource can supply,
// capped at 1.
func FulfillmentRatio(requested *int, available int) float64 {
	if requested == nil || *requested <= 0 {
		return 1
	}
	return math.Min(float64(available)/float64(*requested), 1)
}

// Score rates resource against q using the urgency profile of q's tier.
// The availability status only contributes a reasoning line.
func Score(q matchingdomain.Query, resource resourcedomain.Resource, t Tunables) Result {
	tier := q.Tier()
	profile := matchingdomain.ProfileFor(tier)

	distanceKM := geo.Distance(q.Location, geo.Point{
		Latitude:  resource.Latitude,
		Longitude: resource.Longitude,
	})
	distScore := DistanceScore(distanceKM, t.MaxEffectiveDistanceKM)
	qtyScore, partial := QuantityScore(q.Quantity, resource.QuantityAvailable)

	total := distScore*profile.DistanceWeight + qtyScore*profile.QuantityWeight

	reasoning := []string{
		fmt.Sprintf("Match Score: %d/100 (%s Profile)", int(total), tier),
		fmt.Sprintf("Distance: %s (Score: %d, Weight: %d%%)",
			distanceText(distanceKM, t.MaxEffectiveDistanceKM), int(distScore), percent(profile.DistanceWeight)),
		fmt.Sprintf("Capacity: %s (Score: %d, Weight: %d%%)",
			capacityText(q.Quantity, resource.QuantityAvailable), int(qtyScore), percent(profile.QuantityWeight)),
		fmt.Sprintf("Status: %s", resource.AvailabilityStatus.Label()),
	}

	return Result{
		DistanceKM:    distanceKM,
		DistanceScore: distScore,
		QuantityScore: qtyScore,
		Score:         geo.Round(total/100, 2),
		IsPartial:     partial,
		Reasoning:     reasoning,
	}
}

func distanceText(distanceKM, maxKM float64) string {
	if distanceKM >= maxKM {
		return fmt.Sprintf("%.1fkm (Too far)", distanceKM)
	}
	return fmt.Sprintf("%.1fkm", distanceKM)
}

func capacityText(requested *int, available int) string {
	switch {
	case available <= 0:
		return "None available"
	case requested == nil || *requested <= 0:
		return fmt.Sprintf("Available: %d", available)
	case available >= *requested:
		return fmt.Sprintf("Available: %d (Full)", available)
	default:
		ratio := float64(available) / float64(*requested)
		return fmt.Sprintf("Available: %d (%d%% of req)", available, int(ratio*100))
	}
}

func percent(weight float64) int {
	return int(math.Round(weight * 100))
}
