// internal/runner/input.go
package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// clarificationFiles are looked up in the project's .agentd directory
// when no clarifications file is given explicitly.
var clarificationFiles = []string{"clarifications.yaml", "clarifications.yml", "clarifications.json"}

// ResolveSource returns the absolute source path for a fillback run.
// Priority: the first positional argument > the working directory.
func ResolveSource(args []string) (string, error) {
	path := "."
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		path = strings.TrimSpace(args[0])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving source path: %w", err)
	}
	return abs, nil
}

// ResolveClarifications determines the clarifications file to load.
// Priority: flagPath > clarifications.{yaml,yml,json} in stateDir. An
// empty result means no clarifications.
func ResolveClarifications(flagPath, stateDir string) (string, error) {
	if path := strings.TrimSpace(flagPath); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("reading clarifications file: %w", err)
		}
		return path, nil
	}

	if stateDir == "" {
		return "", nil
	}
	for _, name := range clarificationFiles {
		path := filepath.Join(stateDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}
