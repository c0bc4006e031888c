// Package generation turns outline specifications into programme outlines
// through an LLM provider, conditioning the prompt on retrieved reference
// excerpts and a merged style profile.
package generation

import (
	"context"
	"fmt"
	"os"
)

// Client abstracts the model provider so generation logic can be exercised
// without network access.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest carries one prompt exchange to a provider
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
}

// Settings holds provider configuration, usually resolved from the
// environment.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// SettingsFromEnv reads provider settings from LLM_PROVIDER, LLM_MODEL,
// GEMINI_API_KEY / OPENAI_API_KEY, and OPENAI_BASE_URL. The provider
// defaults to gemini.
func SettingsFromEnv() Settings {
	return SettingsForProvider(os.Getenv("LLM_PROVIDER"), os.Getenv("LLM_MODEL"))
}

// SettingsForProvider resolves credentials from the environment for the
// named provider. An empty provider falls back to gemini.
func SettingsForProvider(provider, model string) Settings {
	cfg := Settings{
		Provider: provider,
		Model:    model,
	}
	if cfg.Provider == "" {
		cfg.Provider = "gemini"
	}

	switch cfg.Provider {
	case "openai":
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	default:
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return cfg
}

// EffectiveModel returns the model that will serve requests, applying the
// provider default when none is configured.
func (s Settings) EffectiveModel() string {
	if s.Model != "" {
		return s.Model
	}
	switch s.Provider {
	case "openai":
		return defaultOpenAIModel
	case "mock":
		return "mock"
	default:
		return defaultGeminiModel
	}
}

// NewClientFromSettings builds the provider client named by cfg.Provider.
// The mock provider needs no credentials and is meant for local runs.
func NewClientFromSettings(ctx context.Context, cfg Settings) (Client, error) {
	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiClient(ctx, cfg)
	case "openai":
		return NewOpenAIClient(cfg)
	case "mock":
		return MockClient{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
