package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	SubmitUser(ctx context.Context, req UserFeedbackRequest) (*UserFeedbackResponse, error)
	SubmitDispatcher(ctx context.Context, req DispatcherFeedbackRequest) (*DispatcherFeedbackResponse, error)
	ListByRequest(ctx context.Context, requestID string) (*ListResponse, error)
}

const (
	MaxCorrectedTextLength = 5000
	MaxCommentLength       = 1000
)

type UserFeedbackRequest struct {
	RequestID     string  `json:"-"`
	IsCorrect     *bool   `json:"is_correct"`
	CorrectedText *string `json:"corrected_text"`
}

type DispatcherFeedbackRequest struct {
	RequestID        string  `json:"-"`
	ExtractionRating *int    `json:"extraction_rating"`
	MatchingRating   *int    `json:"matching_rating"`
	Comment          *string `json:"comment"`
}

type UserFeedbackResponse struct {
	ID            string    `json:"id"`
	RequestID     string    `json:"request_id"`
	IsCorrect     bool      `json:"is_correct"`
	CorrectedText *string   `json:"corrected_text,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type DispatcherFeedbackResponse struct {
	ID               string    `json:"id"`
	RequestID        string    `json:"request_id"`
	ExtractionRating *int      `json:"extraction_rating,omitempty"`
	MatchingRating   *int      `json:"matching_rating,omitempty"`
	Comment          *string   `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type ListResponse struct {
	RequestID  string                       `json:"request_id"`
	User       []UserFeedbackResponse       `json:"user"`
	Dispatcher []DispatcherFeedbackResponse `json:"dispatcher"`
}

var (
	ErrInvalidID               = errors.New("invalid_id")
	ErrMissingIsCorrect        = errors.New("missing_is_correct")
	ErrInvalidCorrectedText    = errors.New("invalid_corrected_text")
	ErrInvalidExtractionRating = errors.New("invalid_extraction_rating")
	ErrInvalidMatchingRating   = errors.New("invalid_matching_rating")
	ErrInvalidComment          = errors.New("invalid_comment")
	ErrMissingFeedback         = errors.New("missing_feedback")
	ErrRequestNotFound         = errors.New("request_not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}

// ValidRating reports whether r is absent or on the 1 to 5 scale.
func ValidRating(r *int) bool {
	return r == nil || (*r >= MinRating && *r <= MaxRating)
}

func ToUserResponse(f *UserFeedback) UserFeedbackResponse {
	return UserFeedbackResponse{
		ID:            f.ID.String(),
		RequestID:     f.CrisisRequestID.String(),
		IsCorrect:     f.IsCorrect,
		CorrectedText: f.CorrectedText,
		CreatedAt:     f.CreatedAt,
	}
}

func ToDispatcherResponse(f *DispatcherFeedback) DispatcherFeedbackResponse {
	return DispatcherFeedbackResponse{
		ID:               f.ID.String(),
		RequestID:        f.CrisisRequestID.String(),
		ExtractionRating: f.ExtractionRating,
		MatchingRating:   f.MatchingRating,
		Comment:          f.Comment,
		CreatedAt:        f.CreatedAt,
	}
}
