package service

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sathi/internal/clock"
	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
	"github.com/smallbiznis/sathi/internal/geo"
	matchingdomain "github.com/smallbiznis/sathi/internal/matching/domain"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  crisisdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  crisisdomain.Repository
}

func New(p Params) crisisdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("crisis.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Submit(ctx context.Context, req crisisdomain.SubmitRequest) (*crisisdomain.Response, error) {
	rawText := strings.TrimSpace(req.RawText)
	if n := utf8.RuneCountInString(rawText); n < crisisdomain.MinRawTextLength || n > crisisdomain.MaxRawTextLength {
		return nil, crisisdomain.ErrInvalidRawText
	}

	extraction := req.Extraction
	var needType resourcedomain.ResourceType
	if value := strings.TrimSpace(extraction.NeedType); value != "" {
		parsed, err := resourcedomain.ParseResourceType(value)
		if err != nil {
			return nil, crisisdomain.ErrInvalidNeedType
		}
		needType = parsed
		extraction.NeedType = value
	}

	if extraction.Quantity != nil && *extraction.Quantity < 0 {
		return nil, crisisdomain.ErrInvalidQuantity
	}

	if (extraction.Latitude == nil) != (extraction.Longitude == nil) {
		return nil, crisisdomain.ErrInvalidLocation
	}
	if extraction.Latitude != nil {
		point := geo.Point{Latitude: *extraction.Latitude, Longitude: *extraction.Longitude}
		if !point.Valid() {
			return nil, crisisdomain.ErrInvalidLocation
		}
	}

	var locationName *string
	if name := strings.TrimSpace(extraction.LocationName); name != "" {
		extraction.LocationName = name
		locationName = &name
	}

	extractionJSON, err := json.Marshal(extraction)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	item := &crisisdomain.CrisisRequest{
		ID:           s.genID.Generate(),
		RawText:      rawText,
		NeedType:     needType,
		Quantity:     extraction.Quantity,
		LocationName: locationName,
		Latitude:     extraction.Latitude,
		Longitude:    extraction.Longitude,
		Extraction:   extractionJSON,
		// Analysis stays an empty object until an urgency score is known.
		UrgencyAnalysis: datatypes.JSON(`{}`),
		Status:          crisisdomain.StatusNew,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if req.Urgency != nil {
		urgency := *req.Urgency
		if urgency.Score < 0 || urgency.Score > 100 {
			return nil, crisisdomain.ErrInvalidUrgencyScore
		}
		urgency.Level = strings.TrimSpace(urgency.Level)
		if _, ok := matchingdomain.LookupTier(urgency.Level); !ok {
			return nil, crisisdomain.ErrInvalidUrgencyLevel
		}
		analysisJSON, err := json.Marshal(urgency)
		if err != nil {
			return nil, err
		}
		item.UrgencyScore = urgency.Score
		item.UrgencyLevel = urgency.Level
		item.UrgencyAnalysis = analysisJSON
	}

	if err := s.repo.Insert(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.log.Info("crisis request submitted",
		zap.String("crisis_request_id", item.ID.String()),
		zap.String("need_type", string(item.NeedType)),
		zap.String("urgency_level", item.UrgencyLevel),
	)

	return crisisdomain.ToResponse(item), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*crisisdomain.Response, error) {
	requestID, err := crisisdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, crisisdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, requestID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, crisisdomain.ErrNotFound
	}

	return crisisdomain.ToResponse(item), nil
}

func (s *Service) Queue(ctx context.Context, req crisisdomain.QueueRequest) ([]crisisdomain.Response, error) {
	statuses := []crisisdomain.Status{crisisdomain.StatusNew, crisisdomain.StatusInProgress}
	if value := strings.TrimSpace(req.Status); value != "" {
		status := crisisdomain.Status(strings.ToUpper(value))
		if !status.Valid() {
			return nil, crisisdomain.ErrInvalidStatus
		}
		statuses = []crisisdomain.Status{status}
	}

	limit := req.Limit
	switch {
	case limit < 0:
		return nil, crisisdomain.ErrInvalidLimit
	case limit == 0:
		limit = crisisdomain.DefaultQueueLimit
	case limit > crisisdomain.MaxQueueLimit:
		limit = crisisdomain.MaxQueueLimit
	}

	items, err := s.repo.Queue(ctx, s.db, statuses, limit)
	if err != nil {
		return nil, err
	}

	resp := make([]crisisdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *crisisdomain.ToResponse(&items[i]))
	}
	return resp, nil
}

// UpdateStatus applies an externally triggered transition to RESOLVED or
// INVALID. The row is locked so a concurrent dispatch observes the new
// status.
func (s *Service) UpdateStatus(ctx context.Context, req crisisdomain.UpdateStatusRequest) (*crisisdomain.Response, error) {
	requestID, err := crisisdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, crisisdomain.ErrInvalidID
	}

	next := crisisdomain.Status(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !next.Valid() {
		return nil, crisisdomain.ErrInvalidStatus
	}

	var updated *crisisdomain.CrisisRequest
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if item == nil {
			return crisisdomain.ErrNotFound
		}
		if !item.Status.CanTransitionTo(next) {
			return crisisdomain.ErrInvalidTransition
		}

		item.Status = next
		item.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdateStatus(ctx, tx, item.ID, item.Status, item.UpdatedAt); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("crisis request status updated",
		zap.String("crisis_request_id", updated.ID.String()),
		zap.String("status", string(updated.Status)),
	)

	return crisisdomain.ToResponse(updated), nil
}
