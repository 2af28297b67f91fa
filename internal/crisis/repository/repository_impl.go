package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
	"gorm.io/gorm"
)

const selectColumns = `SELECT id, raw_text, need_type, quantity, location_name, latitude, longitude,
	extraction, urgency_score, urgency_level, urgency_analysis, status, created_at, updated_at
	FROM crisis_requests`

type repo struct{}

func Provide() crisisdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *crisisdomain.CrisisRequest) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO crisis_requests (id, raw_text, need_type, quantity, location_name, latitude, longitude,
			extraction, urgency_score, urgency_level, urgency_analysis, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.RawText,
		string(c.NeedType),
		c.Quantity,
		c.LocationName,
		c.Latitude,
		c.Longitude,
		c.Extraction,
		c.UrgencyScore,
		c.UrgencyLevel,
		c.UrgencyAnalysis,
		string(c.Status),
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*crisisdomain.CrisisRequest, error) {
	return r.findOne(ctx, db, selectColumns+` WHERE id = ?`, id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*crisisdomain.CrisisRequest, error) {
	query := selectColumns + ` WHERE id = ?`
	if db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}
	return r.findOne(ctx, db, query, id)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*crisisdomain.CrisisRequest, error) {
	var item crisisdomain.CrisisRequest
	err := db.WithContext(ctx).Raw(query, args...).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) Queue(ctx context.Context, db *gorm.DB, statuses []crisisdomain.Status, limit int) ([]crisisdomain.CrisisRequest, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	var items []crisisdomain.CrisisRequest
	err := db.WithContext(ctx).Raw(
		selectColumns+` WHERE status IN ?
		 ORDER BY urgency_score DESC, created_at ASC, id ASC
		 LIMIT ?`,
		values,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status crisisdomain.Status, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE crisis_requests SET status = ?, updated_at = ? WHERE id = ?`,
		string(status),
		updatedAt,
		id,
	).Error
}
