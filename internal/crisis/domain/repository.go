package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, req *CrisisRequest) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CrisisRequest, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CrisisRequest, error)
	// Queue lists requests in the given statuses, most urgent first.
	Queue(ctx context.Context, db *gorm.DB, statuses []Status, limit int) ([]CrisisRequest, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, updatedAt time.Time) error
}
