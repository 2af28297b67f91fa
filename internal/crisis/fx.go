package crisis

import (
	"github.com/smallbiznis/sathi/internal/crisis/repository"
	"github.com/smallbiznis/sathi/internal/crisis/service"
	"go.uber.org/fx"
)

var Module = fx.Module("crisis.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
