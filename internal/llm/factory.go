package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/olytutor/internal/store"
)

// ErrNotConfigured is returned by NewProviderFromEnv when no provider
// settings or API keys are present in the environment.
var ErrNotConfigured = errors.New("no LLM provider configured")

// Options carries the optional collaborators of a provider chain.
type Options struct {
	EventRepo store.EventRepo    // nil disables event persistence
	Recorder  Recorder           // nil disables metrics
	Logger    logrus.FieldLogger // nil means the standard logger
}

// NewProvider creates a Provider from configuration, wrapped as
// caller → timeout → retry → metrics → logging → base.
func NewProvider(ctx context.Context, cfg Config, opts Options) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := WithLogging(base, opts.EventRepo, opts.Logger)
	if opts.Recorder != nil {
		p = WithMetrics(p, opts.Recorder)
	}
	p = WithRetry(p, cfg.Retry)
	return WithTimeout(p, cfg.Timeout), nil
}

// NewProviderFromEnv resolves configuration from OLYTUTOR_* variables,
// falling back to well-known vendor API key variables.
func NewProviderFromEnv(ctx context.Context, opts Options) (Provider, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
		}
		cfg.Provider = discovered.Provider
		cfg.Gemini.APIKey = discovered.Gemini.APIKey
		cfg.Anthropic.APIKey = discovered.Anthropic.APIKey
		cfg.OpenAI.APIKey = discovered.OpenAI.APIKey
		cfg.OpenRouter.APIKey = discovered.OpenRouter.APIKey
	}
	return NewProvider(ctx, cfg, opts)
}
