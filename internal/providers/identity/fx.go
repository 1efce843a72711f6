package identity

import (
	"time"

	"github.com/greensupply/greensupply/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.identity",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.Identity.SupabaseURL == "" || cfg.Identity.SupabaseAnonKey == "" {
		return DisabledProvider{}
	}
	return NewSupabase(
		cfg.Identity.SupabaseURL,
		cfg.Identity.SupabaseAnonKey,
		time.Duration(cfg.Identity.RequestTimeoutSec)*time.Second,
	)
}
