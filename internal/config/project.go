package config

import (
	"os"
	"path/filepath"
)

// Dir is the per-project directory holding agentd state.
const Dir = ".agentd"

// Path returns the config file location for a project root.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, Dir, "config.toml")
}

// HistoryPath returns the run history database location for a project root.
func HistoryPath(projectRoot string) string {
	return filepath.Join(projectRoot, Dir, "history.db")
}

// FindProjectRoot walks up from start looking for a directory that holds
// .agentd or .git. It returns the absolute start when neither is found.
func FindProjectRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}
	for dir := abs; ; {
		for _, marker := range []string{Dir, ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}
