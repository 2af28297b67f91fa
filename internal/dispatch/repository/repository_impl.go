package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	dispatchdomain "github.com/smallbiznis/sathi/internal/dispatch/domain"
	"gorm.io/gorm"
)

const selectColumns = `SELECT id, crisis_request_id, resource_id, dispatched_quantity, dispatched_at, notes
	FROM dispatch_logs`

type repo struct{}

func Provide() dispatchdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, log *dispatchdomain.DispatchLog) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO dispatch_logs (id, crisis_request_id, resource_id, dispatched_quantity, dispatched_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.CrisisRequestID,
		log.ResourceID,
		log.DispatchedQuantity,
		log.DispatchedAt,
		log.Notes,
	).Error
}

func (r *repo) ListByRequest(ctx context.Context, db *gorm.DB, requestID snowflake.ID) ([]dispatchdomain.DispatchLog, error) {
	return r.list(ctx, db, selectColumns+` WHERE crisis_request_id = ? ORDER BY dispatched_at ASC, id ASC`, requestID)
}

func (r *repo) ListByResource(ctx context.Context, db *gorm.DB, resourceID snowflake.ID) ([]dispatchdomain.DispatchLog, error) {
	return r.list(ctx, db, selectColumns+` WHERE resource_id = ? ORDER BY dispatched_at ASC, id ASC`, resourceID)
}

func (r *repo) list(ctx context.Context, db *gorm.DB, query string, args ...any) ([]dispatchdomain.DispatchLog, error) {
	var items []dispatchdomain.DispatchLog
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SumByResource(ctx context.Context, db *gorm.DB, resourceID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(dispatched_quantity), 0) FROM dispatch_logs WHERE resource_id = ?`,
		resourceID,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
