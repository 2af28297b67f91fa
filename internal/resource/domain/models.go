package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ResourceType is the closed set of resource and need categories.
type ResourceType string

const (
	TypeMedical   ResourceType = "medical"
	TypeFood      ResourceType = "food"
	TypeWater     ResourceType = "water"
	TypeShelter   ResourceType = "shelter"
	TypeRescue    ResourceType = "rescue"
	TypeTransport ResourceType = "transport"
	TypeBlankets  ResourceType = "blankets"
	TypeOther     ResourceType = "other"
)

var resourceTypes = []ResourceType{
	TypeMedical,
	TypeFood,
	TypeWater,
	TypeShelter,
	TypeRescue,
	TypeTransport,
	TypeBlankets,
	TypeOther,
}

// ResourceTypes returns every known resource type in declaration order.
func ResourceTypes() []ResourceType {
	out := make([]ResourceType, len(resourceTypes))
	copy(out, resourceTypes)
	return out
}

// Valid reports whether t is one of the canonical values. Matching is
// case-sensitive.
func (t ResourceType) Valid() bool {
	for _, known := range resourceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseResourceType converts a raw value into a ResourceType.
func ParseResourceType(value string) (ResourceType, error) {
	t := ResourceType(value)
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

type AvailabilityStatus string

const (
	StatusAvailable          AvailabilityStatus = "AVAILABLE"
	StatusPartiallyAvailable AvailabilityStatus = "PARTIALLY_AVAILABLE"
	StatusUnavailable        AvailabilityStatus = "UNAVAILABLE"
	StatusDispatched         AvailabilityStatus = "DISPATCHED"
)

func (s AvailabilityStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusPartiallyAvailable, StatusUnavailable, StatusDispatched:
		return true
	default:
		return false
	}
}

// Label is the short human-readable form shown in match reasoning.
func (s AvailabilityStatus) Label() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusPartiallyAvailable:
		return "Limited"
	case StatusDispatched:
		return "Dispatched"
	case StatusUnavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}

// StatusAfterDecrement returns the availability status a resource moves to
// once its quantity has dropped to remaining.
func StatusAfterDecrement(current AvailabilityStatus, remaining int) AvailabilityStatus {
	if remaining == 0 {
		return StatusUnavailable
	}
	switch current {
	case StatusAvailable, StatusPartiallyAvailable:
		return StatusDispatched
	default:
		return current
	}
}

// StatusAfterIncrement returns the availability status after external
// replenishment. Only an exhausted resource changes state.
func StatusAfterIncrement(current AvailabilityStatus, total int) AvailabilityStatus {
	if total > 0 && current == StatusUnavailable {
		return StatusAvailable
	}
	return current
}

// Resource is a pool of dispatchable capacity held by a provider.
type Resource struct {
	ID                 snowflake.ID       `json:"id" gorm:"primaryKey"`
	ResourceType       ResourceType       `json:"resource_type" gorm:"column:resource_type;type:text;not null"`
	ProviderName       string             `json:"provider_name" gorm:"type:text;not null"`
	QuantityAvailable  int                `json:"quantity_available" gorm:"not null;check:quantity_available >= 0"`
	Latitude           float64            `json:"latitude" gorm:"not null"`
	Longitude          float64            `json:"longitude" gorm:"not null"`
	LocationName       string             `json:"location_name" gorm:"type:text;not null"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status" gorm:"column:availability_status;type:text;not null"`
	CreatedAt          time.Time          `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time          `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Resource) TableName() string { return "resources" }
