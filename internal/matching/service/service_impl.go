package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/sathi/internal/cache"
	"github.com/smallbiznis/sathi/internal/config"
	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
	matchingdomain "github.com/smallbiznis/sathi/internal/matching/domain"
	"github.com/smallbiznis/sathi/internal/matching/scoring"
	"github.com/smallbiznis/sathi/internal/observability/metrics"
	"github.com/smallbiznis/sathi/internal/observability/tracing"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	RequestRepo  crisisdomain.Repository
	ResourceRepo resourcedomain.Repository
	Snapshots    cache.ResourceSnapshotCache
	Tunables     *config.MatchingConfigHolder
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	requestRepo  crisisdomain.Repository
	resourceRepo resourcedomain.Repository
	snapshots    cache.ResourceSnapshotCache
	tunables     *config.MatchingConfigHolder
	metrics      *metrics.Metrics
}

func New(p Params) matchingdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("matching.service"),
		requestRepo:  p.RequestRepo,
		resourceRepo: p.ResourceRepo,
		snapshots:    p.Snapshots,
		tunables:     p.Tunables,
		metrics:      p.Metrics,
	}
}

func (s *Service) MatchRequest(ctx context.Context, req matchingdomain.MatchRequest) (*matchingdomain.Response, error) {
	if req.TopN < 0 {
		return nil, matchingdomain.ErrInvalidTopN
	}
	requestID, err := crisisdomain.ParseID(strings.TrimSpace(req.RequestID))
	if err != nil {
		return nil, matchingdomain.ErrInvalidRequestID
	}

	stored, err := s.requestRepo.FindByID(ctx, s.db, requestID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, matchingdomain.ErrRequestNotFound
	}

	query, err := queryFromRequest(stored).Build()
	if err != nil {
		return nil, err
	}

	resp, err := s.rank(ctx, query, req.TopN)
	if err != nil {
		return nil, err
	}
	resp.RequestID = stored.ID.String()
	return resp, nil
}

func (s *Service) Rank(ctx context.Context, req matchingdomain.RankRequest) (*matchingdomain.Response, error) {
	if req.TopN < 0 {
		return nil, matchingdomain.ErrInvalidTopN
	}
	query, err := req.Query.Build()
	if err != nil {
		return nil, err
	}
	return s.rank(ctx, query, req.TopN)
}

func (s *Service) rank(ctx context.Context, query matchingdomain.Query, topN int) (resp *matchingdomain.Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "matching.rank",
		attribute.String("resource.type", string(query.NeedType)),
		attribute.Int("match.top_n", topN),
	)
	defer func() { tracing.EndSpan(span, err) }()

	candidates, err := s.candidates(ctx, query.NeedType)
	if err != nil {
		return nil, err
	}

	matches := scoring.Rank(query, candidates, topN, s.currentTunables())
	s.metrics.RecordMatch(ctx, string(query.NeedType), len(matches))
	span.SetAttributes(tracing.SafeAttributes(attribute.Int("match.count", len(matches)))...)

	return &matchingdomain.Response{
		NeedType:     string(query.NeedType),
		UrgencyLevel: query.UrgencyLevel,
		Matches:      matches,
	}, nil
}

// candidates returns every resource of the given type, served from the
// snapshot cache when it is warm.
func (s *Service) candidates(ctx context.Context, resourceType resourcedomain.ResourceType) ([]resourcedomain.Resource, error) {
	if items, ok := s.snapshots.Get(resourceType); ok {
		return items, nil
	}

	generation := s.snapshots.Generation(resourceType)
	items, err := s.resourceRepo.List(ctx, s.db, resourcedomain.ListFilter{Type: resourceType})
	if err != nil {
		return nil, err
	}
	stored := s.snapshots.Set(resourceType, generation, items)
	s.log.Debug("resource snapshot loaded",
		zap.String("resource_type", string(resourceType)),
		zap.Int("count", len(items)),
		zap.Bool("cached", stored),
	)
	return items, nil
}

func (s *Service) currentTunables() scoring.Tunables {
	if s.tunables == nil {
		return scoring.DefaultTunables()
	}
	return s.tunables.Get()
}

// queryFromRequest reads the structured need of a stored request. A request
// that was never classified ranks with the low urgency profile.
func queryFromRequest(r *crisisdomain.CrisisRequest) matchingdomain.QueryInput {
	level := strings.TrimSpace(r.UrgencyLevel)
	if level == "" {
		level = string(matchingdomain.DefaultTier)
	}
	return matchingdomain.QueryInput{
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		NeedType:     string(r.NeedType),
		Quantity:     r.Quantity,
		UrgencyLevel: level,
	}
}
