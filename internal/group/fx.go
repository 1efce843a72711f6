package group

import (
	"github.com/greensupply/greensupply/internal/group/repository"
	"github.com/greensupply/greensupply/internal/group/service"
	"go.uber.org/fx"
)

var Module = fx.Module("group.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
