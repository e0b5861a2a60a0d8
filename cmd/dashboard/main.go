package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dashboard/internal/action"
	"github.com/smallbiznis/dashboard/internal/assets"
	"github.com/smallbiznis/dashboard/internal/audit"
	"github.com/smallbiznis/dashboard/internal/auth"
	"github.com/smallbiznis/dashboard/internal/authorization"
	"github.com/smallbiznis/dashboard/internal/clock"
	"github.com/smallbiznis/dashboard/internal/config"
	"github.com/smallbiznis/dashboard/internal/customer"
	"github.com/smallbiznis/dashboard/internal/invoice"
	"github.com/smallbiznis/dashboard/internal/migration"
	"github.com/smallbiznis/dashboard/internal/observability"
	"github.com/smallbiznis/dashboard/internal/providers"
	"github.com/smallbiznis/dashboard/internal/ratelimit"
	"github.com/smallbiznis/dashboard/internal/scheduler"
	"github.com/smallbiznis/dashboard/internal/server"
	"github.com/smallbiznis/dashboard/internal/validation"
	"github.com/smallbiznis/dashboard/internal/viewcache"
	"github.com/smallbiznis/dashboard/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		authorization.Module,
		migration.Module,
		ratelimit.Module,
		audit.Module,

		// Functional Domains
		auth.Module,
		customer.Module,
		invoice.Module,
		validation.Module,
		assets.Module,
		viewcache.Module,
		action.Module,
		providers.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
