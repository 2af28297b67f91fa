package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sathi/internal/clock"
	"github.com/smallbiznis/sathi/internal/ratelimit"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	seedLockKey = "sathi:seed:resources"
	seedLockTTL = time.Minute
)

type Seeder struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   resourcedomain.Repository
	locker *ratelimit.Locker
}

func NewSeeder(db *gorm.DB, log *zap.Logger, genID *snowflake.Node, clk clock.Clock, repo resourcedomain.Repository, locker *ratelimit.Locker) *Seeder {
	return &Seeder{
		db:     db,
		log:    log.Named("seed"),
		genID:  genID,
		clock:  clk,
		repo:   repo,
		locker: locker,
	}
}

// EnsureDemoResources inserts the demo registry once. It does nothing when
// any resource already exists or another replica holds the seed lease.
func (s *Seeder) EnsureDemoResources(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, errors.New("seed database handle is required")
	}

	lease, err := s.locker.Acquire(ctx, seedLockKey, seedLockTTL)
	if err != nil {
		return 0, err
	}
	if lease == nil {
		s.log.Info("demo seeding skipped, lease held elsewhere")
		return 0, nil
	}
	defer func() {
		if err := lease.Release(ctx); err != nil {
			s.log.Warn("release seed lease", zap.Error(err))
		}
	}()

	inserted := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.repo.Count(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := s.clock.Now()
		for _, demo := range demoResources {
			item := &resourcedomain.Resource{
				ID:                 s.genID.Generate(),
				ResourceType:       demo.ResourceType,
				ProviderName:       demo.ProviderName,
				QuantityAvailable:  demo.Quantity,
				Latitude:           demo.Latitude,
				Longitude:          demo.Longitude,
				LocationName:       demo.LocationName,
				AvailabilityStatus: resourcedomain.StatusAvailable,
				CreatedAt:          now,
				UpdatedAt:          now,
			}
			if err := s.repo.Insert(ctx, tx, item); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("demo resources seeded", zap.Int("inserted", inserted))
	return inserted, nil
}
