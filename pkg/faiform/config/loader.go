package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the per-project config file name.
	ProjectConfigFile = "faiform.yaml"
	// UserConfigDir is the user-level config directory under $HOME.
	UserConfigDir = ".config/faiform"
	// UserConfigFile is the user-level config file name.
	UserConfigFile = "config.yaml"
)

// Loader loads configuration with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load applies defaults, then the user config, then the project config
// found in the working directory, and validates the result.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	userPath := l.userConfigPath()
	if user, err := LoadFromFile(userPath); err == nil {
		l.logger.Debug("loaded user config", slog.String("path", userPath))
		cfg.Merge(user)
	} else if !os.IsNotExist(err) {
		l.logger.Warn("failed to load user config",
			slog.String("path", userPath), slog.String("error", err.Error()))
	}

	if project, err := LoadFromFile(ProjectConfigFile); err == nil {
		l.logger.Debug("loaded project config", slog.String("path", ProjectConfigFile))
		cfg.Merge(project)
	} else if !os.IsNotExist(err) {
		l.logger.Warn("failed to load project config",
			slog.String("path", ProjectConfigFile), slog.String("error", err.Error()))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(UserConfigDir, UserConfigFile)
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}
