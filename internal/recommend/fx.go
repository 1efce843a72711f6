package recommend

import "go.uber.org/fx"

var Module = fx.Module("recommend.service",
	fx.Provide(NewService),
)
