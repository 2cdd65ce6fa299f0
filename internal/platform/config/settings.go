package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini       = "gemini"
	ProviderOpenAICompat = "openai-compat"

	DefaultGeminiModel = "gemini-2.5-flash"
)

// Settings is the user-editable YAML settings file.
type Settings struct {
	Provider     string     `yaml:"provider"`
	GeminiAPIKey string     `yaml:"geminiAPIKey"`
	Model        string     `yaml:"model"`
	BaseURL      string     `yaml:"baseURL"`
	SummaryStyle string     `yaml:"summaryStyle"`
	LogLevel     string     `yaml:"logLevel"`
	Appearance   Appearance `yaml:"appearance"`
}

// Appearance is how the reading screen lays out text. FontSize is a
// percentage; the terminal cannot scale glyphs, so it sets the column width.
type Appearance struct {
	Theme    string `yaml:"theme"`
	FontSize int    `yaml:"fontSize"`
	Flow     string `yaml:"flow"`
}

const (
	ThemeLight = "light"
	ThemeSepia = "sepia"
	ThemeDark  = "dark"

	FlowPaginated = "paginated"
	FlowScrolled  = "scrolled"

	MinFontSize     = 50
	MaxFontSize     = 200
	DefaultFontSize = 100
)

// Themes lists the reading themes in the order the appearance panel offers them.
var Themes = []string{ThemeLight, ThemeSepia, ThemeDark}

func DefaultAppearance() Appearance {
	return Appearance{Theme: ThemeDark, FontSize: DefaultFontSize, Flow: FlowPaginated}
}

func (a *Appearance) fillDefaults() {
	d := DefaultAppearance()
	if strings.TrimSpace(a.Theme) == "" {
		a.Theme = d.Theme
	}
	if a.FontSize == 0 {
		a.FontSize = d.FontSize
	}
	a.FontSize = max(MinFontSize, min(MaxFontSize, a.FontSize))
	if strings.TrimSpace(a.Flow) == "" {
		a.Flow = d.Flow
	}
}

func (a Appearance) Validate() error {
	switch a.Theme {
	case ThemeLight, ThemeSepia, ThemeDark:
	default:
		return fmt.Errorf("settings: unsupported appearance theme %q", a.Theme)
	}
	switch a.Flow {
	case FlowPaginated, FlowScrolled:
	default:
		return fmt.Errorf("settings: unsupported appearance flow %q", a.Flow)
	}
	return nil
}

func DefaultSettings() Settings {
	return Settings{
		Provider:     ProviderGemini,
		Model:        DefaultGeminiModel,
		SummaryStyle: "fiction",
		LogLevel:     "info",
		Appearance:   DefaultAppearance(),
	}
}

// LoadSettings reads settings from path. A missing file yields defaults.
func LoadSettings(path string) (Settings, error) {
	cfg := DefaultSettings()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read settings: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("ATHENEUM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("ATHENEUM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (s *Settings) fillDefaults() {
	if strings.TrimSpace(s.Provider) == "" {
		s.Provider = ProviderGemini
	}
	if strings.TrimSpace(s.Model) == "" && s.Provider == ProviderGemini {
		s.Model = DefaultGeminiModel
	}
	if strings.TrimSpace(s.SummaryStyle) == "" {
		s.SummaryStyle = "fiction"
	}
	s.Appearance.fillDefaults()
}

func (s Settings) Validate() error {
	switch s.Provider {
	case ProviderGemini:
	case ProviderOpenAICompat:
		if strings.TrimSpace(s.BaseURL) == "" {
			return errors.New("settings: baseURL is required for the openai-compat provider")
		}
	default:
		return fmt.Errorf("settings: unsupported provider %q", s.Provider)
	}
	switch s.SummaryStyle {
	case "fiction", "non-fiction", "technical":
	default:
		return fmt.Errorf("settings: unsupported summaryStyle %q", s.SummaryStyle)
	}
	return s.Appearance.Validate()
}

// SaveSettings writes settings as YAML, creating the parent directory.
func SaveSettings(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	raw, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// FileSettingsProvider serves settings from disk and caches them until
// Reload or Update is called.
type FileSettingsProvider struct {
	path string

	mu       sync.RWMutex
	settings Settings
}

func NewFileSettingsProvider(path string) (*FileSettingsProvider, error) {
	s, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	return &FileSettingsProvider{path: path, settings: s}, nil
}

func (p *FileSettingsProvider) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

func (p *FileSettingsProvider) APIKey() string {
	return strings.TrimSpace(p.Settings().GeminiAPIKey)
}

// Configured reports whether the selected provider has what it needs to
// send a request. Local OpenAI-compatible servers may run without a key.
func (p *FileSettingsProvider) Configured() bool {
	s := p.Settings()
	switch s.Provider {
	case ProviderOpenAICompat:
		return strings.TrimSpace(s.BaseURL) != ""
	default:
		return strings.TrimSpace(s.GeminiAPIKey) != ""
	}
}

func (p *FileSettingsProvider) SummaryStyle() string {
	return p.Settings().SummaryStyle
}

func (p *FileSettingsProvider) Reload() error {
	s, err := LoadSettings(p.path)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.settings = s
	p.mu.Unlock()
	return nil
}

// Update applies fn to a copy of the settings, validates and persists it.
func (p *FileSettingsProvider) Update(fn func(*Settings)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.settings
	fn(&next)
	next.fillDefaults()
	if err := next.Validate(); err != nil {
		return err
	}
	if err := SaveSettings(p.path, next); err != nil {
		return err
	}
	p.settings = next
	return nil
}

func (p *FileSettingsProvider) SetAPIKey(key string) error {
	return p.Update(func(s *Settings) { s.GeminiAPIKey = strings.TrimSpace(key) })
}

func (p *FileSettingsProvider) SetSummaryStyle(style string) error {
	return p.Update(func(s *Settings) { s.SummaryStyle = strings.TrimSpace(style) })
}

func (p *FileSettingsProvider) Appearance() Appearance {
	return p.Settings().Appearance
}

func (p *FileSettingsProvider) SetAppearance(a Appearance) error {
	return p.Update(func(s *Settings) { s.Appearance = a })
}
