package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"gorm.io/gorm"
)

const selectColumns = `SELECT id, resource_type, provider_name, quantity_available, latitude, longitude,
	location_name, availability_status, created_at, updated_at
	FROM resources`

type repo struct{}

func Provide() resourcedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, res *resourcedomain.Resource) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO resources (id, resource_type, provider_name, quantity_available, latitude, longitude,
			location_name, availability_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID,
		string(res.ResourceType),
		res.ProviderName,
		res.QuantityAvailable,
		res.Latitude,
		res.Longitude,
		res.LocationName,
		string(res.AvailabilityStatus),
		res.CreatedAt,
		res.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*resourcedomain.Resource, error) {
	return r.findOne(ctx, db, selectColumns+` WHERE id = ?`, id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*resourcedomain.Resource, error) {
	query := selectColumns + ` WHERE id = ?`
	if db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}
	return r.findOne(ctx, db, query, id)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*resourcedomain.Resource, error) {
	var item resourcedomain.Resource
	err := db.WithContext(ctx).Raw(query, args...).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

// List returns resources in creation order, which ranking relies on as its
// tie-break order.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter resourcedomain.ListFilter) ([]resourcedomain.Resource, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Type != "" {
		conditions = append(conditions, "resource_type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		conditions = append(conditions, "availability_status = ?")
		args = append(args, string(filter.Status))
	}

	query := selectColumns
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	var items []resourcedomain.Resource
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Decrement(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int, status resourcedomain.AvailabilityStatus, updatedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE resources
		 SET quantity_available = quantity_available - ?, availability_status = ?, updated_at = ?
		 WHERE id = ? AND quantity_available >= ?`,
		quantity,
		string(status),
		updatedAt,
		id,
		quantity,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) Increment(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int, status resourcedomain.AvailabilityStatus, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE resources
		 SET quantity_available = quantity_available + ?, availability_status = ?, updated_at = ?
		 WHERE id = ?`,
		quantity,
		string(status),
		updatedAt,
		id,
	).Error
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM resources`).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
