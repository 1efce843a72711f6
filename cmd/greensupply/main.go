package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/greensupply/greensupply/internal/business"
	"github.com/greensupply/greensupply/internal/catalog"
	"github.com/greensupply/greensupply/internal/clock"
	"github.com/greensupply/greensupply/internal/config"
	"github.com/greensupply/greensupply/internal/dashboard"
	"github.com/greensupply/greensupply/internal/group"
	"github.com/greensupply/greensupply/internal/logger"
	"github.com/greensupply/greensupply/internal/notify"
	obsmetrics "github.com/greensupply/greensupply/internal/observability/metrics"
	"github.com/greensupply/greensupply/internal/order"
	"github.com/greensupply/greensupply/internal/providers/directions"
	"github.com/greensupply/greensupply/internal/providers/email"
	"github.com/greensupply/greensupply/internal/providers/genai"
	"github.com/greensupply/greensupply/internal/providers/geocode"
	"github.com/greensupply/greensupply/internal/providers/identity"
	"github.com/greensupply/greensupply/internal/recommend"
	"github.com/greensupply/greensupply/internal/region"
	"github.com/greensupply/greensupply/internal/route"
	"github.com/greensupply/greensupply/internal/seed"
	"github.com/greensupply/greensupply/internal/server"
	"github.com/greensupply/greensupply/internal/supplier"
	"github.com/greensupply/greensupply/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		obsmetrics.Module,

		// External providers
		identity.Module,
		geocode.Module,
		directions.Module,
		genai.Module,
		email.Module,

		// Functional domains
		catalog.Module,
		region.Module,
		business.Module,
		supplier.Module,
		group.Module,
		route.Module,
		notify.Module,
		order.Module,
		dashboard.Module,
		recommend.Module,

		seed.Module,
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
