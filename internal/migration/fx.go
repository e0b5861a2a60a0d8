package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dashboard/internal/authorization"
	"github.com/smallbiznis/dashboard/internal/config"
	"github.com/smallbiznis/dashboard/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger, genID *snowflake.Node, authz authorization.Service) error {
		log = log.Named("migration")
		if err := Run(conn, log); err != nil {
			return err
		}

		ctx := context.Background()
		admin, created, err := seed.EnsureAdmin(ctx, conn, genID, cfg)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		log.Info("seeded admin user", zap.String("user_id", admin.ID.String()))
		return authz.AssignRole(ctx, admin.ID, authorization.RoleAdmin)
	}),
)
