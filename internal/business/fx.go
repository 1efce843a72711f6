package business

import (
	"github.com/greensupply/greensupply/internal/business/repository"
	"github.com/greensupply/greensupply/internal/business/service"
	"go.uber.org/fx"
)

var Module = fx.Module("business.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
