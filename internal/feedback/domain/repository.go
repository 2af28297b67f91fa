package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertUser(ctx context.Context, db *gorm.DB, fb *UserFeedback) error
	InsertDispatcher(ctx context.Context, db *gorm.DB, fb *DispatcherFeedback) error
	ListUserByRequest(ctx context.Context, db *gorm.DB, requestID snowflake.ID) ([]UserFeedback, error)
	ListDispatcherByRequest(ctx context.Context, db *gorm.DB, requestID snowflake.ID) ([]DispatcherFeedback, error)
}
