package supplier

import (
	"github.com/greensupply/greensupply/internal/supplier/repository"
	"github.com/greensupply/greensupply/internal/supplier/service"
	"go.uber.org/fx"
)

var Module = fx.Module("supplier.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
