package scoring

import (
	"sort"

	"github.com/smallbiznis/sathi/internal/geo"
	matchingdomain "github.com/smallbiznis/sathi/internal/matching/domain"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
)

// Rank scores every candidate whose type equals the query need type, drops
// matches under the minimum score and returns at most topN matches ordered
// by score. Tied scores keep candidate order. A non-positive topN uses the
// configured default.
//
// Rank never mutates candidates and is safe for concurrent use.
func Rank(q matchingdomain.Query, candidates []resourcedomain.Resource, topN int, t Tunables) []matchingdomain.Match {
	if topN <= 0 {
		topN = t.DefaultTopN
	}

	matches := make([]matchingdomain.Match, 0)
	for i := range candidates {
		resource := candidates[i]
		if resource.ResourceType != q.NeedType {
			continue
		}

		result := Score(q, resource, t)
		if result.Score < t.MinMatchScore {
			continue
		}

		matches = append(matches, matchingdomain.Match{
			ResourceID:           resource.ID.String(),
			ResourceType:         string(resource.ResourceType),
			ProviderName:         resource.ProviderName,
			QuantityAvailable:    resource.QuantityAvailable,
			LocationName:         resource.LocationName,
			DistanceKM:           geo.Round(result.DistanceKM, 2),
			MatchScore:           result.Score,
			IsPartialFulfillment: result.IsPartial,
			FulfillmentRatio:     geo.Round(FulfillmentRatio(q.Quantity, resource.QuantityAvailable), 2),
			Reasoning:            result.Reasoning,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}
