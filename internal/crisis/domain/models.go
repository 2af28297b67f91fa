package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDispatched Status = "DISPATCHED"
	StatusResolved   Status = "RESOLVED"
	StatusInvalid    Status = "INVALID"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDispatched, StatusResolved, StatusInvalid:
		return true
	default:
		return false
	}
}

// Closed reports whether no further stock may be committed to the request.
func (s Status) Closed() bool {
	return s == StatusResolved || s == StatusInvalid
}

// CanTransitionTo reports whether an external status update from s to next
// is allowed. The NEW to IN_PROGRESS edge belongs to dispatch and is not
// accepted here.
func (s Status) CanTransitionTo(next Status) bool {
	if s.Closed() {
		return false
	}
	return next == StatusResolved || next == StatusInvalid
}

// StatusAfterDispatch returns the status a request moves to once stock has
// been committed to it.
func StatusAfterDispatch(current Status) Status {
	if current == StatusNew {
		return StatusInProgress
	}
	return current
}

// CrisisRequest is a stored need report.
type CrisisRequest struct {
	ID              snowflake.ID                `json:"id" gorm:"primaryKey"`
	RawText         string                      `json:"raw_text" gorm:"type:text;not null"`
	NeedType        resourcedomain.ResourceType `json:"need_type" gorm:"type:text"`
	Quantity        *int                        `json:"quantity"`
	LocationName    *string                     `json:"location_name" gorm:"type:text"`
	Latitude        *float64                    `json:"latitude"`
	Longitude       *float64                    `json:"longitude"`
	Extraction      datatypes.JSON              `json:"extraction" gorm:"not null"`
	UrgencyScore    int                         `json:"urgency_score" gorm:"not null;default:0"`
	UrgencyLevel    string                      `json:"urgency_level" gorm:"type:text"`
	UrgencyAnalysis datatypes.JSON              `json:"urgency_analysis" gorm:"not null"`
	Status          Status                      `json:"status" gorm:"type:text;not null"`
	CreatedAt       time.Time                   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time                   `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CrisisRequest) TableName() string { return "crisis_requests" }

// Extraction is the structured need produced upstream from the raw text.
type Extraction struct {
	NeedType      string             `json:"need_type,omitempty"`
	Quantity      *int               `json:"quantity,omitempty"`
	LocationName  string             `json:"location,omitempty"`
	Latitude      *float64           `json:"latitude,omitempty"`
	Longitude     *float64           `json:"longitude,omitempty"`
	ContactNumber string             `json:"contact_number,omitempty"`
	AffectedCount *int               `json:"affected_count,omitempty"`
	Confidence    map[string]float64 `json:"confidence,omitempty"`
}

// UrgencyAnalysis is the severity classification produced upstream.
type UrgencyAnalysis struct {
	Score      int      `json:"score"`
	Level      string   `json:"level"`
	Reasoning  []string `json:"reasoning,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Flags      []string `json:"flags,omitempty"`
}
