package application

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/hirewire/internal/application/domain"
	"github.com/smallbiznis/hirewire/internal/application/repository"
	"github.com/smallbiznis/hirewire/internal/application/service"
	jobdomain "github.com/smallbiznis/hirewire/internal/job/domain"
)

var Module = fx.Module("application",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
	// The job service reads per-job application counts through this
	// narrower view of the repository.
	fx.Provide(func(repo domain.Repository) jobdomain.ApplicationCounter {
		return repo
	}),
)
