package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sathi/internal/cache"
	"github.com/smallbiznis/sathi/internal/clock"
	"github.com/smallbiznis/sathi/internal/config"
	"github.com/smallbiznis/sathi/internal/crisis"
	"github.com/smallbiznis/sathi/internal/dispatch"
	"github.com/smallbiznis/sathi/internal/feedback"
	"github.com/smallbiznis/sathi/internal/matching"
	"github.com/smallbiznis/sathi/internal/migration"
	"github.com/smallbiznis/sathi/internal/observability"
	"github.com/smallbiznis/sathi/internal/ratelimit"
	"github.com/smallbiznis/sathi/internal/resource"
	"github.com/smallbiznis/sathi/internal/seed"
	"github.com/smallbiznis/sathi/internal/server"
	"github.com/smallbiznis/sathi/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,
		migration.Module,
		ratelimit.Module,

		// Domains
		resource.Module,
		crisis.Module,
		matching.Module,
		dispatch.Module,
		feedback.Module,
		seed.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
