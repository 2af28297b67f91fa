package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Replenish(ctx context.Context, req ReplenishRequest) (*Response, error)
}

type CreateRequest struct {
	ResourceType      string   `json:"resource_type"`
	ProviderName      string   `json:"provider_name"`
	QuantityAvailable *int     `json:"quantity_available"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	LocationName      string   `json:"location_name"`
}

type ListRequest struct {
	ResourceType string `form:"resource_type"`
	Status       string `form:"status"`
}

type ReplenishRequest struct {
	ID       string `json:"-"`
	Quantity int    `json:"quantity"`
}

type Response struct {
	ID                 string    `json:"id"`
	ResourceType       string    `json:"resource_type"`
	ProviderName       string    `json:"provider_name"`
	QuantityAvailable  int       `json:"quantity_available"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	LocationName       string    `json:"location_name"`
	AvailabilityStatus string    `json:"availability_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidType         = errors.New("invalid_resource_type")
	ErrInvalidStatus       = errors.New("invalid_availability_status")
	ErrInvalidProviderName = errors.New("invalid_provider_name")
	ErrInvalidLocationName = errors.New("invalid_location_name")
	ErrInvalidLatitude     = errors.New("invalid_latitude")
	ErrInvalidLongitude    = errors.New("invalid_longitude")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrNotFound            = errors.New("not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}

func ToResponse(r *Resource) *Response {
	if r == nil {
		return nil
	}
	return &Response{
		ID:                 r.ID.String(),
		ResourceType:       string(r.ResourceType),
		ProviderName:       r.ProviderName,
		QuantityAvailable:  r.QuantityAvailable,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		LocationName:       r.LocationName,
		AvailabilityStatus: string(r.AvailabilityStatus),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
