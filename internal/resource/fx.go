package resource

import (
	"github.com/smallbiznis/sathi/internal/resource/repository"
	"github.com/smallbiznis/sathi/internal/resource/service"
	"go.uber.org/fx"
)

var Module = fx.Module("resource.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
