package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/dailytutor/internal/store"
)

// offlineAnswer is what the mock provider says when used outside tests. It
// opens with a positive marker so offline sessions can be completed.
const offlineAnswer = "Правильно! Это демонстрационный ответ: модель не подключена."

// NewProvider creates a Provider from configuration, wrapped with event
// logging. Retries are left to the caller.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		mock := NewMockProvider()
		mock.Fallback = offlineAnswer
		base = mock
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if eventRepo == nil {
		return base, nil
	}
	return WithLogging(base, eventRepo), nil
}
