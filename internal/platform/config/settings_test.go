package config_test

import (
	"path/filepath"
	"testing"

	"atheneum/internal/platform/config"
)

func TestSettingsProviderPersistsUpdates(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ATHENEUM_MODEL", "")
	path := filepath.Join(t.TempDir(), "atheneum", "settings.yaml")

	p, err := config.NewFileSettingsProvider(path)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if p.Configured() {
		t.Fatalf("fresh settings should not be configured")
	}
	if got := p.SummaryStyle(); got != "fiction" {
		t.Fatalf("default style = %q", got)
	}

	if err := p.SetAPIKey("  key-123 "); err != nil {
		t.Fatalf("set key: %v", err)
	}
	if err := p.SetSummaryStyle("technical"); err != nil {
		t.Fatalf("set style: %v", err)
	}
	if err := p.SetSummaryStyle("poetry"); err == nil {
		t.Fatalf("unknown style should be rejected")
	}

	reopened, err := config.NewFileSettingsProvider(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reopened.Configured() || reopened.APIKey() != "key-123" {
		t.Fatalf("key not persisted: %+v", reopened.Settings())
	}
	if reopened.SummaryStyle() != "technical" {
		t.Fatalf("style = %q, want technical", reopened.SummaryStyle())
	}
}

func TestOpenAICompatNeedsBaseURL(t *testing.T) {
	t.Parallel()
	s := config.DefaultSettings()
	s.Provider = config.ProviderOpenAICompat
	if err := s.Validate(); err == nil {
		t.Fatalf("openai-compat without baseURL should fail")
	}
	s.BaseURL = "http://localhost:11434/v1"
	if err := s.Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}
}

func TestAppearanceIsClampedAndPersisted(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	p, err := config.NewFileSettingsProvider(path)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if got := p.Appearance(); got != config.DefaultAppearance() {
		t.Fatalf("default appearance = %+v", got)
	}

	if err := p.SetAppearance(config.Appearance{Theme: config.ThemeSepia, FontSize: 500, Flow: config.FlowScrolled}); err != nil {
		t.Fatalf("set appearance: %v", err)
	}
	if err := p.SetAppearance(config.Appearance{Theme: "neon"}); err == nil {
		t.Fatalf("unknown theme should be rejected")
	}

	reopened, err := config.NewFileSettingsProvider(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	want := config.Appearance{Theme: config.ThemeSepia, FontSize: config.MaxFontSize, Flow: config.FlowScrolled}
	if got := reopened.Appearance(); got != want {
		t.Fatalf("appearance = %+v, want %+v", got, want)
	}
}
