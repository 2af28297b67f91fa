package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Dispatch(ctx context.Context, req DispatchRequest) (*Result, error)
	ListByRequest(ctx context.Context, requestID string) ([]Response, error)
	ListByResource(ctx context.Context, resourceID string) ([]Response, error)
}

const MaxNoteLength = 1000

type DispatchRequest struct {
	RequestID  string  `json:"-"`
	ResourceID string  `json:"-"`
	Quantity   *int    `json:"quantity"`
	Note       *string `json:"note"`
}

// Result describes a committed dispatch.
type Result struct {
	DispatchID         string    `json:"dispatch_id"`
	RequestID          string    `json:"request_id"`
	ResourceID         string    `json:"resource_id"`
	QuantityDispatched int       `json:"quantity_dispatched"`
	RemainingCapacity  int       `json:"remaining_capacity"`
	NewRequestStatus   string    `json:"new_request_status"`
	Note               *string   `json:"note,omitempty"`
	DispatchedAt       time.Time `json:"dispatched_at"`
}

type Response struct {
	ID                 string    `json:"id"`
	RequestID          string    `json:"request_id"`
	ResourceID         string    `json:"resource_id"`
	DispatchedQuantity int       `json:"dispatched_quantity"`
	DispatchedAt       time.Time `json:"dispatched_at"`
	Notes              *string   `json:"notes,omitempty"`
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidNote          = errors.New("invalid_note")
	ErrRequestNotFound      = errors.New("request_not_found")
	ErrResourceNotFound     = errors.New("resource_not_found")
	ErrRequestClosed        = errors.New("request_closed")
	ErrInsufficientQuantity = errors.New("insufficient_quantity")
	// ErrConflict reports a dispatch that lost a lock or serialization race.
	ErrConflict = errors.New("dispatch_conflict")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}

func ToResponse(l *DispatchLog) Response {
	return Response{
		ID:                 l.ID.String(),
		RequestID:          l.CrisisRequestID.String(),
		ResourceID:         l.ResourceID.String(),
		DispatchedQuantity: l.DispatchedQuantity,
		DispatchedAt:       l.DispatchedAt,
		Notes:              l.Notes,
	}
}
