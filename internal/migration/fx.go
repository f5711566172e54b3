package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	appdomain "github.com/smallbiznis/hirewire/internal/application/domain"
	"github.com/smallbiznis/hirewire/internal/config"
	jobdomain "github.com/smallbiznis/hirewire/internal/job/domain"
	"github.com/smallbiznis/hirewire/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if conn.Dialector.Name() == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// SQLite and MySQL are dev/test targets; let gorm derive
			// the schema from the models there.
			if err := conn.AutoMigrate(&jobdomain.Job{}, &appdomain.Application{}); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoJobs(conn)
		}
		return nil
	}),
)
