package discovery

import (
	"fmt"
	"log/slog"
	"time"
)

// Supported generation providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Default models per provider.
const (
	DefaultAnthropicModel = "claude-3-5-haiku-20241022"
	DefaultOpenAIModel    = "gpt-4o-search-preview"
)

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultAnthropicModel
}

// ClientConfig holds generation settings shared by the provider searchers.
type ClientConfig struct {
	Provider    string
	APIKey      string
	Model       string
	MaxTokens   int
	MaxSearches int // web-search tool uses per query (Anthropic only)
	MaxEvents   int // events requested per query
	Timeout     time.Duration
}

// DefaultClientConfig returns the settings used for weekly discovery runs.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Provider:    ProviderAnthropic,
		Model:       DefaultAnthropicModel,
		MaxTokens:   4096,
		MaxSearches: 5,
		MaxEvents:   10,
		Timeout:     180 * time.Second,
	}
}

// NewSearcher builds the searcher for cfg.Provider.
func NewSearcher(cfg ClientConfig, logger *slog.Logger) (Searcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s api key not configured", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicSearcher(cfg, logger), nil
	case ProviderOpenAI:
		return NewOpenAISearcher(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// VerificationSource is the label stored on rows discovered through provider.
func VerificationSource(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "AI Discovery (OpenAI)"
	default:
		return "AI Discovery (Claude)"
	}
}
