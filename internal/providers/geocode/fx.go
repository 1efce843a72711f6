package geocode

import (
	"time"

	"github.com/greensupply/greensupply/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.geocode",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.Geocode.GoogleMapsAPIKey == "" {
		return DisabledProvider{}
	}
	return NewGoogle(cfg.Geocode.GoogleMapsAPIKey, time.Duration(cfg.Geocode.RequestTimeoutSec)*time.Second)
}
