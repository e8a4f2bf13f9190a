package config

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// ProjectConfigFile is the project-level config filename
	ProjectConfigFile = "semlix.yaml"
	// UserConfigDir is the user config directory (relative to home)
	UserConfigDir = ".config/semlix"
	// UserConfigFile is the user-level config filename
	UserConfigFile = "config.yaml"
)

// Loader handles layered configuration loading
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Defaults (lowest)
// 2. User config (~/.config/semlix/config.yaml)
// 3. Project config (semlix.yaml in project root or parents)
// 4. Explicit path (highest, if provided)
func (l *Loader) Load(explicitPath string) (*Config, error) {
	config := DefaultConfig()

	// Layer 2: User config
	userPath, err := l.userConfigPath()
	if err == nil {
		if userConfig, err := LoadFromFile(userPath); err == nil {
			config.Merge(userConfig)
			l.logger.Debug("loaded user config", "path", userPath)
		}
	}

	// Layer 3: Project config
	if projectPath := l.findProjectConfig(); projectPath != "" {
		projectConfig, err := LoadFromFile(projectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load project config %s: %w", projectPath, err)
		}
		config.Merge(projectConfig)
		l.logger.Debug("loaded project config", "path", projectPath)

		// Auto-detect project path from config location if not set
		if config.Project.Path == "" {
			config.Project.Path = filepath.Dir(projectPath)
		}
	}

	// Layer 4: Explicit config
	if explicitPath != "" {
		explicitConfig, err := LoadFromFile(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", explicitPath, err)
		}
		config.Merge(explicitConfig)
		l.logger.Debug("loaded explicit config", "path", explicitPath)
	}

	// Auto-detect project path from git if still not set
	if config.Project.Path == "" {
		if gitRoot := detectGitRoot(); gitRoot != "" {
			config.Project.Path = gitRoot
			l.logger.Debug("detected project path from git", "path", gitRoot)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() (string, error) {
	path, err := l.userConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	config := DefaultConfig()
	if err := config.SaveToFile(path); err != nil {
		return "", fmt.Errorf("failed to create user config: %w", err)
	}

	l.logger.Info("created user config", "path", path)
	return path, nil
}

func (l *Loader) userConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile), nil
}

// findProjectConfig walks up from the current directory looking for semlix.yaml
func (l *Loader) findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// detectGitRoot returns the git repository root, or empty if not in a repo
func detectGitRoot() string {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
