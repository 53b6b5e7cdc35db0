package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicSearcher queries Claude with the server-side web search tool.
type AnthropicSearcher struct {
	client anthropic.Client
	config ClientConfig
	now    func() time.Time
	logger *slog.Logger
}

// NewAnthropicSearcher creates a searcher backed by the Messages API. SDK-level
// retries are disabled: a failed call forfeits the query for this run.
func NewAnthropicSearcher(cfg ClientConfig, logger *slog.Logger) *AnthropicSearcher {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	)

	return &AnthropicSearcher{
		client: client,
		config: cfg,
		now:    time.Now,
		logger: logger,
	}
}

// Name returns the provider name.
func (s *AnthropicSearcher) Name() string {
	return ProviderAnthropic
}

// Search asks the model to search the web for query and report matching events.
func (s *AnthropicSearcher) Search(ctx context.Context, query string) ([]ContentBlock, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	prompt := BuildSearchPrompt(query, s.now(), s.config.MaxEvents)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: []anthropic.ToolUnionParam{
			{OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
				MaxUses: anthropic.Int(int64(s.config.MaxSearches)),
			}},
			{OfTool: &anthropic.ToolParam{
				Name:        ReportToolName,
				Description: anthropic.String("Report the upcoming U.S. honey and beekeeping events found by searching."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: reportToolSchema(),
				},
			}},
		},
	}

	start := time.Now()
	message, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	s.logger.Debug("anthropic response",
		"query", query,
		"model", s.config.Model,
		"stop_reason", message.StopReason,
		"input_tokens", message.Usage.InputTokens,
		"output_tokens", message.Usage.OutputTokens,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	blocks := make([]ContentBlock, 0, len(message.Content))
	for _, b := range message.Content {
		switch b.Type {
		case BlockTypeText:
			blocks = append(blocks, ContentBlock{Type: BlockTypeText, Text: b.Text})
		case BlockTypeToolUse:
			blocks = append(blocks, ContentBlock{Type: BlockTypeToolUse, Name: b.Name, Input: b.Input})
		default:
			blocks = append(blocks, ContentBlock{Type: b.Type})
		}
	}

	return blocks, nil
}
