package genai

import (
	"time"

	"github.com/greensupply/greensupply/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.genai",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.GenAI.APIKey == "" {
		return DisabledProvider{}
	}
	return NewGemini(cfg.GenAI.APIKey, cfg.GenAI.Model, time.Duration(cfg.GenAI.RequestTimeoutSec)*time.Second)
}
