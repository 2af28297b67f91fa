package seed

import (
	"context"

	"github.com/smallbiznis/sathi/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("seed",
	fx.Provide(NewSeeder),
	fx.Invoke(func(cfg config.Config, seeder *Seeder) error {
		if !cfg.SeedDemoResources {
			return nil
		}
		_, err := seeder.EnsureDemoResources(context.Background())
		return err
	}),
)
