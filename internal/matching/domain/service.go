package domain

import (
	"context"
	"errors"
)

type Service interface {
	// MatchRequest ranks the registry against a stored crisis request.
	MatchRequest(ctx context.Context, req MatchRequest) (*Response, error)
	// Rank ranks the registry against an ad-hoc query.
	Rank(ctx context.Context, req RankRequest) (*Response, error)
}

type MatchRequest struct {
	RequestID string `json:"request_id"`
	TopN      int    `json:"top_n"`
}

type RankRequest struct {
	Query QueryInput `json:"query"`
	TopN  int        `json:"top_n"`
}

type Response struct {
	RequestID    string  `json:"request_id,omitempty"`
	NeedType     string  `json:"need_type"`
	UrgencyLevel string  `json:"urgency_level"`
	Matches      []Match `json:"matches"`
}

var (
	ErrMissingLocation    = errors.New("missing_location")
	ErrInvalidLocation    = errors.New("invalid_location")
	ErrMissingNeedType    = errors.New("missing_need_type")
	ErrInvalidNeedType    = errors.New("invalid_need_type")
	ErrMissingUrgencyTier = errors.New("missing_urgency_tier")
	ErrInvalidTopN        = errors.New("invalid_top_n")
	ErrInvalidRequestID   = errors.New("invalid_request_id")
	ErrRequestNotFound    = errors.New("request_not_found")
)
