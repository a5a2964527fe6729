package agent

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
vendors:
  sentiment:
    provider: mock
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Fatalf("expected logging defaults, got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Sentiment.MLWeight != 0.7 || cfg.Sentiment.KeywordWeight != 0.3 {
		t.Fatalf("expected blend defaults, got %v/%v", cfg.Sentiment.MLWeight, cfg.Sentiment.KeywordWeight)
	}
	if cfg.Escalation.NegativeTurnThreshold != 2 || cfg.Escalation.ClarificationThreshold != 2 {
		t.Fatalf("expected escalation defaults, got %+v", cfg.Escalation)
	}
	if cfg.Languages.Default != "hinglish" {
		t.Fatalf("expected hinglish default, got %q", cfg.Languages.Default)
	}
	if cfg.Languages.DetectConfidenceGate != 0.8 || cfg.Languages.ASRConfidenceFloor != 0.6 {
		t.Fatalf("expected confidence defaults, got %+v", cfg.Languages)
	}
	if !cfg.Privacy.RedactPII {
		t.Fatalf("expected pii redaction on by default")
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("TEST_SENTIMENT_KEY", "sk-123")
	path := writeConfig(t, `
vendors:
  sentiment:
    provider: openai
    settings:
      api_key: ${TEST_SENTIMENT_KEY}
      model: gpt-4o-mini
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if got := cfg.Vendors.Sentiment.Settings["api_key"]; got != "sk-123" {
		t.Fatalf("expected env-expanded api key, got %v", got)
	}
}

func TestLoadConfigRejectsMissingProvider(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error without sentiment provider")
	}
}

func TestLoadConfigRejectsUnknownLanguage(t *testing.T) {
	path := writeConfig(t, `
vendors:
  sentiment:
    provider: mock
languages:
  default: french
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unsupported default language")
	}
}

func TestBuildSentimentProvider(t *testing.T) {
	if _, err := buildSentimentProvider(VendorConfig{Provider: "nope"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}

	p, err := buildSentimentProvider(VendorConfig{
		Provider: "mock",
		Settings: map[string]any{"score": -0.8},
	})
	if err != nil {
		t.Fatalf("build mock provider: %v", err)
	}
	if p.Name() != "mock" {
		t.Fatalf("expected mock provider, got %q", p.Name())
	}

	if _, err := buildSentimentProvider(VendorConfig{
		Provider: "openai",
		Settings: map[string]any{"model": "gpt-4o-mini"},
	}); err == nil {
		t.Fatalf("expected error without api key")
	}

	o, err := buildSentimentProvider(VendorConfig{
		Provider: "openai",
		Settings: map[string]any{"api_key": "sk-1", "model": "gpt-4o-mini"},
	})
	if err != nil {
		t.Fatalf("build openai provider: %v", err)
	}
	if o.Name() != "openai" {
		t.Fatalf("expected openai provider, got %q", o.Name())
	}
}
