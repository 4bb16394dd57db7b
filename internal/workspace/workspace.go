package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const BaseDirName = "WritingCoach"

// Layout names the files and directories inside a workspace root.
type Layout struct {
	Root       string
	ConfigPath string
	EnvPath    string
	Database   string
	Reports    string
}

func At(base string) Layout {
	return Layout{
		Root:       base,
		ConfigPath: filepath.Join(base, "configs", "config.yaml"),
		EnvPath:    filepath.Join(base, "configs", ".env"),
		Database:   filepath.Join(base, "sessions", "coach.db"),
		Reports:    filepath.Join(base, "reports"),
	}
}

func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, BaseDirName), nil
}

// EnsureAt creates the workspace directories and writes defaultConfig to the
// config file when none exists yet. An existing config is never touched.
func EnsureAt(base string, defaultConfig []byte) (Layout, error) {
	l := At(base)
	paths := []string{
		filepath.Dir(l.ConfigPath),
		filepath.Dir(l.Database),
		l.Reports,
	}
	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return Layout{}, fmt.Errorf("mkdir %s: %w", p, err)
		}
	}

	if _, err := os.Stat(l.ConfigPath); os.IsNotExist(err) && len(defaultConfig) > 0 {
		if writeErr := os.WriteFile(l.ConfigPath, defaultConfig, 0o644); writeErr != nil {
			return Layout{}, fmt.Errorf("write config: %w", writeErr)
		}
	}
	return l, nil
}
