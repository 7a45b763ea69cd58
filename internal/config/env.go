package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables that override the config file.
const (
	EnvLogLevel    = "AGENTD_LOG_LEVEL"
	EnvOutputDir   = "AGENTD_OUTPUT_DIR"
	EnvConcurrency = "AGENTD_CONCURRENCY"
)

// ApplyEnv overrides cfg with any set AGENTD_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.Fillback.OutputDir = v
	}
	if v := os.Getenv(EnvConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("environment variable %s must be a non-negative integer, got %q", EnvConcurrency, v)
		}
		cfg.Fillback.Concurrency = n
	}
	return nil
}
