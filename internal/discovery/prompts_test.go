package discovery

import (
	"strings"
	"testing"
	"time"
)

func TestBuildSearchPrompt(t *testing.T) {
	today := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)
	prompt := BuildSearchPrompt("honey tasting event 2026 United States", today, 10)

	mustContain := []string{
		`matching: "honey tasting event 2026 United States"`,
		"Start after today (2026-10-16)",
		"FESTIVAL|MARKET|CLASS|TASTING|TOUR|FAIR|EXPO|CONFERENCE",
		"Return up to 10 events maximum",
		ReportToolName,
	}
	for _, s := range mustContain {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt missing %q", s)
		}
	}
}

func TestVerificationSource(t *testing.T) {
	if got := VerificationSource(ProviderAnthropic); got != "AI Discovery (Claude)" {
		t.Errorf("anthropic label = %q", got)
	}
	if got := VerificationSource(ProviderOpenAI); got != "AI Discovery (OpenAI)" {
		t.Errorf("openai label = %q", got)
	}
}

func TestNewSearcher(t *testing.T) {
	cfg := DefaultClientConfig()

	if _, err := NewSearcher(cfg, discardLogger()); err == nil {
		t.Error("expected error without api key")
	}

	cfg.APIKey = "sk-ant-test"
	s, err := NewSearcher(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewSearcher returned error: %v", err)
	}
	if s.Name() != ProviderAnthropic {
		t.Errorf("expected anthropic searcher, got %s", s.Name())
	}

	cfg.Provider = ProviderOpenAI
	s, err = NewSearcher(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewSearcher returned error: %v", err)
	}
	if s.Name() != ProviderOpenAI {
		t.Errorf("expected openai searcher, got %s", s.Name())
	}

	cfg.Provider = "gemini"
	if _, err := NewSearcher(cfg, discardLogger()); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestDefaultModel(t *testing.T) {
	if got := DefaultModel(ProviderAnthropic); got != "claude-3-5-haiku-20241022" {
		t.Errorf("anthropic default = %q", got)
	}
	if got := DefaultModel(ProviderOpenAI); got != DefaultOpenAIModel {
		t.Errorf("openai default = %q", got)
	}
	if DefaultClientConfig().Model != DefaultAnthropicModel {
		t.Error("client config should default to the anthropic model")
	}
}
