package out

import (
	"context"
	"net/http"
	"time"

	assistout "atheneum/internal/modules/assist/port/out"
	"atheneum/internal/platform/config"
)

const requestTimeout = 90 * time.Second

// SettingsSource hands out the current settings on every call.
type SettingsSource interface {
	Settings() config.Settings
}

// ConfiguredGenerator routes each request to the provider selected in the
// settings at call time, so a key saved from the settings screen applies
// to the next request.
type ConfiguredGenerator struct {
	settings   SettingsSource
	httpClient *http.Client
	geminiURL  string
}

func NewConfiguredGenerator(settings SettingsSource, httpClient *http.Client) *ConfiguredGenerator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &ConfiguredGenerator{settings: settings, httpClient: httpClient, geminiURL: DefaultGeminiBaseURL}
}

var _ assistout.Generator = (*ConfiguredGenerator)(nil)

func (g *ConfiguredGenerator) Generate(ctx context.Context, req assistout.Request) (string, error) {
	s := g.settings.Settings()
	if s.Provider == config.ProviderOpenAICompat {
		return NewOpenAICompatGenerator(s.BaseURL, s.GeminiAPIKey, s.Model, g.httpClient).Generate(ctx, req)
	}
	baseURL := g.geminiURL
	if s.BaseURL != "" {
		baseURL = s.BaseURL
	}
	return NewGeminiGenerator(baseURL, s.GeminiAPIKey, s.Model, g.httpClient).Generate(ctx, req)
}
