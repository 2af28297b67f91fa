package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, resource *Resource) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Resource, error)
	// FindByIDForUpdate locks the resource row until the surrounding
	// transaction ends.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Resource, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Resource, error)
	// Decrement subtracts quantity only when enough stock remains and
	// reports whether a row changed.
	Decrement(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int, status AvailabilityStatus, updatedAt time.Time) (bool, error)
	Increment(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int, status AvailabilityStatus, updatedAt time.Time) error
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}

type ListFilter struct {
	Type   ResourceType
	Status AvailabilityStatus
}
