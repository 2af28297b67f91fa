package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sathi/internal/cache"
	"github.com/smallbiznis/sathi/internal/clock"
	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
	dispatchdomain "github.com/smallbiznis/sathi/internal/dispatch/domain"
	"github.com/smallbiznis/sathi/internal/observability/logger"
	"github.com/smallbiznis/sathi/internal/observability/metrics"
	"github.com/smallbiznis/sathi/internal/observability/tracing"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"github.com/smallbiznis/sathi/pkg/db"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         dispatchdomain.Repository
	RequestRepo  crisisdomain.Repository
	ResourceRepo resourcedomain.Repository
	Snapshots    cache.ResourceSnapshotCache
	Metrics      *metrics.Metrics     `optional:"true"`
	LockMetrics  *metrics.LockMetrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         dispatchdomain.Repository
	requestRepo  crisisdomain.Repository
	resourceRepo resourcedomain.Repository
	snapshots    cache.ResourceSnapshotCache
	metrics      *metrics.Metrics
	lockMetrics  *metrics.LockMetrics
}

func New(p Params) dispatchdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("dispatch.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		requestRepo:  p.RequestRepo,
		resourceRepo: p.ResourceRepo,
		snapshots:    p.Snapshots,
		metrics:      p.Metrics,
		lockMetrics:  p.LockMetrics,
	}
}

type dispatchOutcome struct {
	log          *dispatchdomain.DispatchLog
	resourceType resourcedomain.ResourceType
	remaining    int
	status       crisisdomain.Status
}

// Dispatch commits stock from one resource to one request. The resource row
// is locked and decremented first, then the request row is locked for the
// log and status step, so dispatches to one request from different
// resources only serialise at the end. Any failure rolls all of it back.
func (s *Service) Dispatch(ctx context.Context, req dispatchdomain.DispatchRequest) (result *dispatchdomain.Result, err error) {
	requestID, err := dispatchdomain.ParseID(strings.TrimSpace(req.RequestID))
	if err != nil {
		return nil, dispatchdomain.ErrInvalidID
	}
	resourceID, err := dispatchdomain.ParseID(strings.TrimSpace(req.ResourceID))
	if err != nil {
		return nil, dispatchdomain.ErrInvalidID
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return nil, dispatchdomain.ErrInvalidQuantity
	}
	note, err := normalizeNote(req.Note)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "dispatch.commit",
		attribute.String("crisis_request.id", requestID.String()),
		attribute.String("resource.id", resourceID.String()),
	)
	defer func() { tracing.EndSpan(span, err) }()

	log := logger.WithDispatch(logger.WithContext(ctx, s.log), requestID.String(), resourceID.String())

	var outcome dispatchOutcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := s.requestRepo.FindByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return dispatchdomain.ErrRequestNotFound
		}
		if request.Status.Closed() {
			return dispatchdomain.ErrRequestClosed
		}

		quantity := effectiveQuantity(req.Quantity, request.Quantity)

		lockStart := time.Now()
		resource, err := s.resourceRepo.FindByIDForUpdate(ctx, tx, resourceID)
		if err != nil {
			return err
		}
		s.lockMetrics.ObserveLockWait(metrics.LockResourceByID, time.Since(lockStart))
		if resource == nil {
			return dispatchdomain.ErrResourceNotFound
		}
		outcome.resourceType = resource.ResourceType

		if resource.QuantityAvailable < quantity {
			return dispatchdomain.ErrInsufficientQuantity
		}

		now := s.clock.Now()
		remaining := resource.QuantityAvailable - quantity
		status := resourcedomain.StatusAfterDecrement(resource.AvailabilityStatus, remaining)
		ok, err := s.resourceRepo.Decrement(ctx, tx, resource.ID, quantity, status, now)
		if err != nil {
			return err
		}
		if !ok {
			return dispatchdomain.ErrInsufficientQuantity
		}

		// A close that landed after the unlocked read rolls the decrement back.
		lockStart = time.Now()
		request, err = s.requestRepo.FindByIDForUpdate(ctx, tx, requestID)
		if err != nil {
			return err
		}
		s.lockMetrics.ObserveLockWait(metrics.LockCrisisRequestByID, time.Since(lockStart))
		if request == nil {
			return dispatchdomain.ErrRequestNotFound
		}
		if request.Status.Closed() {
			return dispatchdomain.ErrRequestClosed
		}

		entry := &dispatchdomain.DispatchLog{
			ID:                 s.genID.Generate(),
			CrisisRequestID:    request.ID,
			ResourceID:         resource.ID,
			DispatchedQuantity: quantity,
			DispatchedAt:       now,
			Notes:              note,
		}
		if err := s.repo.Insert(ctx, tx, entry); err != nil {
			return err
		}

		next := crisisdomain.StatusAfterDispatch(request.Status)
		if next != request.Status {
			if err := s.requestRepo.UpdateStatus(ctx, tx, request.ID, next, now); err != nil {
				return err
			}
		}

		outcome = dispatchOutcome{
			log:          entry,
			resourceType: resource.ResourceType,
			remaining:    remaining,
			status:       next,
		}
		return nil
	})
	if err != nil {
		err = s.classify(ctx, log, outcome.resourceType, err)
		return nil, err
	}

	s.snapshots.Invalidate(outcome.resourceType)
	s.metrics.RecordDispatch(ctx, metrics.DispatchOutcomeCommitted, string(outcome.resourceType), outcome.log.DispatchedQuantity)
	span.SetAttributes(tracing.SafeAttributes(
		attribute.Int("dispatch.quantity", outcome.log.DispatchedQuantity),
		attribute.String("dispatch.outcome", metrics.DispatchOutcomeCommitted),
	)...)

	log.Info("dispatch committed",
		zap.String("dispatch_id", outcome.log.ID.String()),
		zap.Int("quantity", outcome.log.DispatchedQuantity),
		zap.Int("remaining_capacity", outcome.remaining),
		zap.String("request_status", string(outcome.status)),
	)

	return &dispatchdomain.Result{
		DispatchID:         outcome.log.ID.String(),
		RequestID:          requestID.String(),
		ResourceID:         resourceID.String(),
		QuantityDispatched: outcome.log.DispatchedQuantity,
		RemainingCapacity:  outcome.remaining,
		NewRequestStatus:   string(outcome.status),
		Note:               outcome.log.Notes,
		DispatchedAt:       outcome.log.DispatchedAt,
	}, nil
}

// classify maps a rolled-back transaction error onto the dispatch error
// taxonomy and records the outcome.
func (s *Service) classify(ctx context.Context, log *zap.Logger, resourceType resourcedomain.ResourceType, err error) error {
	switch {
	case errors.Is(err, dispatchdomain.ErrInsufficientQuantity):
		s.lockMetrics.IncConflict(metrics.ConflictReasonInsufficientQuantity)
		s.metrics.RecordDispatch(ctx, metrics.DispatchOutcomeConflict, string(resourceType), 0)
		log.Debug("dispatch conflict", zap.String("reason", metrics.ConflictReasonInsufficientQuantity))
		return err
	case db.IsContention(err), db.IsCheckViolation(err):
		reason := metrics.ClassifyConflictReason(err)
		s.lockMetrics.IncConflict(reason)
		s.metrics.RecordDispatch(ctx, metrics.DispatchOutcomeConflict, string(resourceType), 0)
		log.Debug("dispatch conflict", zap.String("reason", reason))
		return dispatchdomain.ErrConflict
	case errors.Is(err, dispatchdomain.ErrRequestNotFound),
		errors.Is(err, dispatchdomain.ErrResourceNotFound),
		errors.Is(err, dispatchdomain.ErrRequestClosed):
		s.metrics.RecordDispatch(ctx, metrics.DispatchOutcomeRejected, string(resourceType), 0)
		return err
	default:
		return err
	}
}

func (s *Service) ListByRequest(ctx context.Context, requestID string) ([]dispatchdomain.Response, error) {
	id, err := dispatchdomain.ParseID(strings.TrimSpace(requestID))
	if err != nil {
		return nil, dispatchdomain.ErrInvalidID
	}
	request, err := s.requestRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, dispatchdomain.ErrRequestNotFound
	}

	items, err := s.repo.ListByRequest(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

func (s *Service) ListByResource(ctx context.Context, resourceID string) ([]dispatchdomain.Response, error) {
	id, err := dispatchdomain.ParseID(strings.TrimSpace(resourceID))
	if err != nil {
		return nil, dispatchdomain.ErrInvalidID
	}
	resource, err := s.resourceRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if resource == nil {
		return nil, dispatchdomain.ErrResourceNotFound
	}

	items, err := s.repo.ListByResource(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

// effectiveQuantity picks the caller's quantity, then the request's
// extracted quantity, then one unit.
func effectiveQuantity(requested, extracted *int) int {
	if requested != nil {
		return *requested
	}
	if extracted != nil && *extracted > 0 {
		return *extracted
	}
	return 1
}

func normalizeNote(note *string) (*string, error) {
	if note == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil, nil
	}
	if len([]rune(trimmed)) > dispatchdomain.MaxNoteLength {
		return nil, dispatchdomain.ErrInvalidNote
	}
	return &trimmed, nil
}

func toResponses(items []dispatchdomain.DispatchLog) []dispatchdomain.Response {
	resp := make([]dispatchdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, dispatchdomain.ToResponse(&items[i]))
	}
	return resp
}
