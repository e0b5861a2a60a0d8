package auth

import (
	authconfig "github.com/smallbiznis/dashboard/internal/auth/config"
	"github.com/smallbiznis/dashboard/internal/auth/oauth"
	"github.com/smallbiznis/dashboard/internal/auth/repository"
	"github.com/smallbiznis/dashboard/internal/auth/service"
	"github.com/smallbiznis/dashboard/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
	fx.Provide(authconfig.ParseAuthProvidersFromEnv),
	fx.Provide(authconfig.BuildAuthProviderRegistry),
	fx.Provide(oauth.NewService),
	fx.Provide(session.NewManager),
	fx.Provide(NewBridge),
	fx.Invoke(ensureAuthProviderRegistry),
)

func ensureAuthProviderRegistry(_ authconfig.AuthProviderRegistry) {}
