package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the top-level application configuration.
type Config struct {
	Fillback FillbackConfig `toml:"fillback"`
	Log      LogConfig      `toml:"log"`
}

// FillbackConfig holds settings for reverse-engineering specs from sources.
type FillbackConfig struct {
	// OutputDir is relative to the project root unless absolute.
	OutputDir        string   `toml:"output_dir"`
	Concurrency      int      `toml:"concurrency"`
	RespectGitignore bool     `toml:"respect_gitignore"`
	Exclude          []string `toml:"exclude"`
	History          bool     `toml:"history"`
	Strategy         string   `toml:"strategy"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text, json
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Fillback: FillbackConfig{
			OutputDir:        "specs",
			RespectGitignore: true,
			History:          true,
			Strategy:         "auto",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file
// yields the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	return f.Close()
}
