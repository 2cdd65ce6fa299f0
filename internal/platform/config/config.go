package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	DataDir      string
	DBPath       string
	StreakPath   string
	ActivePath   string
	NotesDir     string
	CacheDir     string
	LogPath      string
	SettingsPath string
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, "atheneum.db"),
		StreakPath:   filepath.Join(dataDir, "streak.json"),
		ActivePath:   filepath.Join(dataDir, "active-session.json"),
		NotesDir:     filepath.Join(dataDir, "notes"),
		CacheDir:     filepath.Join(dataDir, "cache"),
		LogPath:      filepath.Join(dataDir, "atheneum.log"),
		SettingsPath: filepath.Join(XDGConfigHome(), "atheneum", "settings.yaml"),
	}, nil
}

// DefaultDataDir returns XDG_DATA_HOME/atheneum or ~/.local/share/atheneum.
func DefaultDataDir() string {
	return filepath.Join(XDGDataHome(), "atheneum")
}

func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}
