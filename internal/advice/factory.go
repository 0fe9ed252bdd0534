package advice

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/metrics"
	"github.com/rs/zerolog"
)

// Supported providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config selects and configures the advice provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New builds the Advisor for cfg. Without an API key it returns Disabled.
func New(ctx context.Context, cfg Config, log zerolog.Logger, rec metrics.Recorder) (Advisor, error) {
	log = log.With().Str("component", "advice").Str("provider", cfg.Provider).Logger()

	if cfg.APIKey == "" {
		log.Warn().Msg("No advice API key configured - advice is disabled")
		return Disabled{}, nil
	}

	var gen Generator
	switch cfg.Provider {
	case ProviderGemini, "":
		g, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("advice.New: %w", err)
		}
		gen = g
	case ProviderOpenAI:
		gen = NewOpenAIGenerator(cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("advice.New: unknown provider %q", cfg.Provider)
	}

	breaker := DefaultBreakerConfig()
	if cfg.Timeout > 0 {
		breaker.Timeout = cfg.Timeout
	}

	return NewService(NewResilientGenerator(gen, breaker, log, rec), log, rec), nil
}
