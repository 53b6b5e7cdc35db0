package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAISearcher queries a search-capable chat completion model. It has no
// client tool, so events always come back as a JSON array in text.
type OpenAISearcher struct {
	client *openai.Client
	config ClientConfig
	now    func() time.Time
	logger *slog.Logger
}

// NewOpenAISearcher creates a searcher backed by the chat completions API.
func NewOpenAISearcher(cfg ClientConfig, logger *slog.Logger) *OpenAISearcher {
	return &OpenAISearcher{
		client: openai.NewClient(cfg.APIKey),
		config: cfg,
		now:    time.Now,
		logger: logger,
	}
}

// Name returns the provider name.
func (s *OpenAISearcher) Name() string {
	return ProviderOpenAI
}

// Search sends the discovery prompt for query as a single user message.
func (s *OpenAISearcher) Search(ctx context.Context, query string) ([]ContentBlock, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	prompt := BuildSearchPrompt(query, s.now(), s.config.MaxEvents)

	req := openai.ChatCompletionRequest{
		Model:               s.config.Model,
		MaxCompletionTokens: s.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	s.logger.Debug("openai response",
		"query", query,
		"model", s.config.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return []ContentBlock{{Type: BlockTypeText, Text: resp.Choices[0].Message.Content}}, nil
}
