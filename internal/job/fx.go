package job

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/hirewire/internal/job/repository"
	"github.com/smallbiznis/hirewire/internal/job/service"
)

var Module = fx.Module("job",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
