package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Queue(ctx context.Context, req QueueRequest) ([]Response, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Response, error)
}

const (
	MinRawTextLength = 10
	MaxRawTextLength = 5000

	DefaultQueueLimit = 50
	MaxQueueLimit     = 200
)

type SubmitRequest struct {
	RawText    string           `json:"raw_text"`
	Extraction Extraction       `json:"extraction"`
	Urgency    *UrgencyAnalysis `json:"urgency"`
}

type QueueRequest struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

type Response struct {
	ID              string           `json:"id"`
	RawText         string           `json:"raw_text"`
	NeedType        string           `json:"need_type,omitempty"`
	Quantity        *int             `json:"quantity,omitempty"`
	LocationName    *string          `json:"location_name,omitempty"`
	Latitude        *float64         `json:"latitude,omitempty"`
	Longitude       *float64         `json:"longitude,omitempty"`
	Extraction      *Extraction      `json:"extraction,omitempty"`
	UrgencyScore    int              `json:"urgency_score"`
	UrgencyLevel    string           `json:"urgency_level,omitempty"`
	UrgencyAnalysis *UrgencyAnalysis `json:"urgency_analysis,omitempty"`
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidRawText      = errors.New("invalid_raw_text")
	ErrInvalidNeedType     = errors.New("invalid_need_type")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidLocation     = errors.New("invalid_location")
	ErrInvalidUrgencyScore = errors.New("invalid_urgency_score")
	ErrInvalidUrgencyLevel = errors.New("invalid_urgency_level")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrInvalidLimit        = errors.New("invalid_limit")
	ErrNotFound            = errors.New("not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}

func ToResponse(r *CrisisRequest) *Response {
	if r == nil {
		return nil
	}
	resp := &Response{
		ID:           r.ID.String(),
		RawText:      r.RawText,
		NeedType:     string(r.NeedType),
		Quantity:     r.Quantity,
		LocationName: r.LocationName,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		UrgencyScore: r.UrgencyScore,
		UrgencyLevel: r.UrgencyLevel,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if len(r.Extraction) > 0 {
		var extraction Extraction
		if err := json.Unmarshal(r.Extraction, &extraction); err == nil {
			resp.Extraction = &extraction
		}
	}
	if r.UrgencyLevel != "" && len(r.UrgencyAnalysis) > 0 {
		var analysis UrgencyAnalysis
		if err := json.Unmarshal(r.UrgencyAnalysis, &analysis); err == nil {
			resp.UrgencyAnalysis = &analysis
		}
	}
	return resp
}
