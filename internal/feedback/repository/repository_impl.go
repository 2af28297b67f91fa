package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	feedbackdomain "github.com/smallbiznis/sathi/internal/feedback/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() feedbackdomain.Repository {
	return &repo{}
}

func (r *repo) InsertUser(ctx context.Context, db *gorm.DB, fb *feedbackdomain.UserFeedback) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO feedback_user (id, crisis_request_id, is_correct, corrected_text, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		fb.ID,
		fb.CrisisRequestID,
		fb.IsCorrect,
		fb.CorrectedText,
		fb.CreatedAt,
	).Error
}

func (r *repo) InsertDispatcher(ctx context.Context, db *gorm.DB, fb *feedbackdomain.DispatcherFeedback) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO feedback_dispatcher (id, crisis_request_id, extraction_rating, matching_rating, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		fb.ID,
		fb.CrisisRequestID,
		fb.ExtractionRating,
		fb.MatchingRating,
		fb.Comment,
		fb.CreatedAt,
	).Error
}

func (r *repo) ListUserByRequest(ctx context.Context, db *gorm.DB, requestID snowflake.ID) ([]feedbackdomain.UserFeedback, error) {
	var items []feedbackdomain.UserFeedback
	err := db.WithContext(ctx).Raw(
		`SELECT id, crisis_request_id, is_correct, corrected_text, created_at
		 FROM feedback_user WHERE crisis_request_id = ? ORDER BY created_at ASC, id ASC`,
		requestID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListDispatcherByRequest(ctx context.Context, db *gorm.DB, requestID snowflake.ID) ([]feedbackdomain.DispatcherFeedback, error) {
	var items []feedbackdomain.DispatcherFeedback
	err := db.WithContext(ctx).Raw(
		`SELECT id, crisis_request_id, extraction_rating, matching_rating, comment, created_at
		 FROM feedback_dispatcher WHERE crisis_request_id = ? ORDER BY created_at ASC, id ASC`,
		requestID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
