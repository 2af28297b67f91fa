package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, log *DispatchLog) error
	ListByRequest(ctx context.Context, db *gorm.DB, requestID snowflake.ID) ([]DispatchLog, error)
	ListByResource(ctx context.Context, db *gorm.DB, resourceID snowflake.ID) ([]DispatchLog, error)
	// SumByResource totals the quantity ever dispatched from a resource.
	SumByResource(ctx context.Context, db *gorm.DB, resourceID snowflake.ID) (int64, error)
}
