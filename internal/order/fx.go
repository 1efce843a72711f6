package order

import (
	"github.com/greensupply/greensupply/internal/order/repository"
	"github.com/greensupply/greensupply/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
