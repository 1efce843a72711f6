package route

import "go.uber.org/fx"

var Module = fx.Module("route",
	fx.Provide(NewPlanner),
)
