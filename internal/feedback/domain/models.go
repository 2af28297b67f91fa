package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
)

const (
	MinRating = 1
	MaxRating = 5
)

// UserFeedback is the reporter's verdict on how their message was read.
// Rows are append-only and never feed back into matching.
type UserFeedback struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	CrisisRequestID snowflake.ID `json:"crisis_request_id" gorm:"not null;index"`
	IsCorrect       bool         `json:"is_correct" gorm:"not null"`
	CorrectedText   *string      `json:"corrected_text" gorm:"type:text"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null"`

	Request *crisisdomain.CrisisRequest `json:"-" gorm:"foreignKey:CrisisRequestID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}

func (UserFeedback) TableName() string { return "feedback_user" }

// DispatcherFeedback rates extraction and matching quality after a
// dispatch decision.
type DispatcherFeedback struct {
	ID               snowflake.ID `json:"id" gorm:"primaryKey"`
	CrisisRequestID  snowflake.ID `json:"crisis_request_id" gorm:"not null;index"`
	ExtractionRating *int         `json:"extraction_rating" gorm:"check:extraction_rating BETWEEN 1 AND 5"`
	MatchingRating   *int         `json:"matching_rating" gorm:"check:matching_rating BETWEEN 1 AND 5"`
	Comment          *string      `json:"comment" gorm:"type:text"`
	CreatedAt        time.Time    `json:"created_at" gorm:"not null"`

	Request *crisisdomain.CrisisRequest `json:"-" gorm:"foreignKey:CrisisRequestID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}

func (DispatcherFeedback) TableName() string { return "feedback_dispatcher" }
