package directions

import (
	"time"

	"github.com/greensupply/greensupply/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.directions",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.Route.GoogleMapsAPIKey == "" {
		return DisabledProvider{}
	}
	return NewGoogle(cfg.Route.GoogleMapsAPIKey, time.Duration(cfg.Route.RequestTimeoutSec)*time.Second)
}
