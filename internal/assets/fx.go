package assets

import (
	"context"
	"fmt"

	"github.com/smallbiznis/dashboard/internal/config"
	customerdomain "github.com/smallbiznis/dashboard/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("assets",
	fx.Provide(NewStore),
	fx.Provide(NewWriter),
	fx.Provide(func(svc customerdomain.Service) ReferenceSource { return svc }),
	fx.Provide(NewSweeper),
)

// NewStore selects the backend named by ASSET_DRIVER.
func NewStore(cfg config.Config, log *zap.Logger) (Store, error) {
	switch cfg.Assets.Driver {
	case config.AssetDriverLocal, "":
		return NewLocalStore(cfg.Assets.Dir, log)
	case config.AssetDriverS3:
		return NewS3Store(context.Background(), cfg.Assets, log)
	default:
		return nil, fmt.Errorf("unsupported asset driver %q", cfg.Assets.Driver)
	}
}
