package domain

import (
	"strings"

	"github.com/smallbiznis/sathi/internal/geo"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
)

// Query is the validated request descriptor consumed by the ranker.
type Query struct {
	Location     geo.Point
	NeedType     resourcedomain.ResourceType
	Quantity     *int
	UrgencyLevel string
}

// Tier returns the urgency tier parsed from the level label.
func (q Query) Tier() Tier {
	return ParseTier(q.UrgencyLevel)
}

// QueryInput is the loosely populated form a query arrives in. Build turns
// it into a Query or reports the first missing field.
type QueryInput struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	NeedType     string   `json:"need_type"`
	Quantity     *int     `json:"quantity"`
	UrgencyLevel string   `json:"urgency_level"`
}

func (in QueryInput) Build() (Query, error) {
	if in.Latitude == nil || in.Longitude == nil {
		return Query{}, ErrMissingLocation
	}
	point := geo.Point{Latitude: *in.Latitude, Longitude: *in.Longitude}
	if !point.Valid() {
		return Query{}, ErrInvalidLocation
	}

	needType := strings.TrimSpace(in.NeedType)
	if needType == "" {
		return Query{}, ErrMissingNeedType
	}
	t, err := resourcedomain.ParseResourceType(needType)
	if err != nil {
		return Query{}, ErrInvalidNeedType
	}

	level := strings.TrimSpace(in.UrgencyLevel)
	if level == "" {
		return Query{}, ErrMissingUrgencyTier
	}

	return Query{
		Location:     point,
		NeedType:     t,
		Quantity:     in.Quantity,
		UrgencyLevel: level,
	}, nil
}

// Match is one ranked candidate.
type Match struct {
	ResourceID           string   `json:"resource_id"`
	ResourceType         string   `json:"resource_type"`
	ProviderName         string   `json:"provider_name"`
	QuantityAvailable    int      `json:"quantity_available"`
	LocationName         string   `json:"location_name"`
	DistanceKM           float64  `json:"distance_km"`
	MatchScore           float64  `json:"match_score"`
	IsPartialFulfillment bool     `json:"is_partial_fulfillment"`
	FulfillmentRatio     float64  `json:"fulfillment_ratio"`
	Reasoning            []string `json:"reasoning"`
}
