package llm

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/mezotv/skill-tree/internal/store"
)

// Options carries the optional collaborators of NewProvider.
type Options struct {
	Recorder store.LLMEventRecorder
	Logger   *log.Logger

	// Mock is used when the provider is "mock"; an empty MockProvider
	// otherwise.
	Mock *MockProvider
}

// NewProvider creates a Provider from configuration, wrapped as
// caller → breaker → retry → logging → base.
func NewProvider(ctx context.Context, cfg Config, opts Options) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		base = opts.Mock
		if opts.Mock == nil {
			base = NewMockProvider()
		}
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider, opts.Recorder, opts.Logger)
	retried := WithRetry(logged, cfg.Retry)
	return WithBreaker(retried, cfg.Breaker, opts.Logger), nil
}
