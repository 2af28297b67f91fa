package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sathi/internal/cache"
	"github.com/smallbiznis/sathi/internal/clock"
	"github.com/smallbiznis/sathi/internal/geo"
	"github.com/smallbiznis/sathi/internal/observability/metrics"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        resourcedomain.Repository
	Snapshots   cache.ResourceSnapshotCache
	LockMetrics *metrics.LockMetrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        resourcedomain.Repository
	snapshots   cache.ResourceSnapshotCache
	lockMetrics *metrics.LockMetrics
}

func New(p Params) resourcedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("resource.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		snapshots:   p.Snapshots,
		lockMetrics: p.LockMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req resourcedomain.CreateRequest) (*resourcedomain.Response, error) {
	resourceType, err := resourcedomain.ParseResourceType(strings.TrimSpace(req.ResourceType))
	if err != nil {
		return nil, err
	}

	providerName := strings.TrimSpace(req.ProviderName)
	if providerName == "" {
		return nil, resourcedomain.ErrInvalidProviderName
	}

	locationName := strings.TrimSpace(req.LocationName)
	if locationName == "" {
		return nil, resourcedomain.ErrInvalidLocationName
	}

	if req.Latitude == nil || !(geo.Point{Latitude: *req.Latitude}).Valid() {
		return nil, resourcedomain.ErrInvalidLatitude
	}
	if req.Longitude == nil || !(geo.Point{Longitude: *req.Longitude}).Valid() {
		return nil, resourcedomain.ErrInvalidLongitude
	}
	location := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}

	if req.QuantityAvailable == nil || *req.QuantityAvailable < 0 {
		return nil, resourcedomain.ErrInvalidQuantity
	}
	quantity := *req.QuantityAvailable

	status := resourcedomain.StatusAvailable
	if quantity == 0 {
		status = resourcedomain.StatusUnavailable
	}

	now := s.clock.Now()
	item := &resourcedomain.Resource{
		ID:                 s.genID.Generate(),
		ResourceType:       resourceType,
		ProviderName:       providerName,
		QuantityAvailable:  quantity,
		Latitude:           location.Latitude,
		Longitude:          location.Longitude,
		LocationName:       locationName,
		AvailabilityStatus: status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, s.db, item); err != nil {
		return nil, err
	}
	s.snapshots.Invalidate(item.ResourceType)

	s.log.Info("resource registered",
		zap.String("resource_id", item.ID.String()),
		zap.String("resource_type", string(item.ResourceType)),
		zap.Int("quantity_available", item.QuantityAvailable),
	)

	return resourcedomain.ToResponse(item), nil
}

func (s *Service) List(ctx context.Context, req resourcedomain.ListRequest) ([]resourcedomain.Response, error) {
	var filter resourcedomain.ListFilter
	if value := strings.TrimSpace(req.ResourceType); value != "" {
		resourceType, err := resourcedomain.ParseResourceType(value)
		if err != nil {
			return nil, err
		}
		filter.Type = resourceType
	}
	if value := strings.TrimSpace(req.Status); value != "" {
		status := resourcedomain.AvailabilityStatus(strings.ToUpper(value))
		if !status.Valid() {
			return nil, resourcedomain.ErrInvalidStatus
		}
		filter.Status = status
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]resourcedomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *resourcedomain.ToResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*resourcedomain.Response, error) {
	resourceID, err := resourcedomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, resourcedomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, resourceID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, resourcedomain.ErrNotFound
	}

	return resourcedomain.ToResponse(item), nil
}

// Replenish adds stock under the same row lock dispatch takes, so the
// increment never interleaves with a check-and-decrement.
func (s *Service) Replenish(ctx context.Context, req resourcedomain.ReplenishRequest) (*resourcedomain.Response, error) {
	resourceID, err := resourcedomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, resourcedomain.ErrInvalidID
	}
	if req.Quantity <= 0 {
		return nil, resourcedomain.ErrInvalidQuantity
	}

	var updated *resourcedomain.Resource
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockStart := time.Now()
		item, err := s.repo.FindByIDForUpdate(ctx, tx, resourceID)
		if err != nil {
			return err
		}
		s.lockMetrics.ObserveLockWait(metrics.LockResourceByID, time.Since(lockStart))
		if item == nil {
			return resourcedomain.ErrNotFound
		}

		item.QuantityAvailable += req.Quantity
		item.AvailabilityStatus = resourcedomain.StatusAfterIncrement(item.AvailabilityStatus, item.QuantityAvailable)
		item.UpdatedAt = s.clock.Now()
		if err := s.repo.Increment(ctx, tx, item.ID, req.Quantity, item.AvailabilityStatus, item.UpdatedAt); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.snapshots.Invalidate(updated.ResourceType)

	s.log.Info("resource replenished",
		zap.String("resource_id", updated.ID.String()),
		zap.Int("quantity", req.Quantity),
		zap.Int("quantity_available", updated.QuantityAvailable),
	)

	return resourcedomain.ToResponse(updated), nil
}
