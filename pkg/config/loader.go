package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/speakeasy-api/contractcompat/compat"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "contractcompat.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/contractcompat"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger compat.Logger

	// home and dir override os.UserHomeDir and os.Getwd when set.
	home string
	dir  string
}

// NewLoader creates a new configuration loader
func NewLoader(logger compat.Logger) *Loader {
	if logger == nil {
		logger = compat.NopLogger()
	}
	return &Loader{logger: logger}
}

// WithDirs returns a loader that searches the given home and working
// directories instead of the process's own.
func (l *Loader) WithDirs(home, dir string) *Loader {
	c := *l
	c.home, c.dir = home, dir
	return &c
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/contractcompat/config.yaml)
// 3. Project config (contractcompat.yaml in current or parent directories)
// 4. An explicit file passed with --config
//
// Command line flags are applied by the caller afterwards.
func (l *Loader) Load(explicit string) (*Config, error) {
	config := DefaultConfig()

	if userConfigPath := l.userConfigPath(); userConfigPath != "" {
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debugf("loaded user config %s", userConfigPath)
			config.Merge(userConfig)
		} else if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warnf("failed to load user config %s: %v", userConfigPath, err)
		}
	}

	if projectConfigPath := l.findProjectConfig(); projectConfigPath != "" {
		projectConfig, err := LoadFromFile(projectConfigPath)
		if err != nil {
			return nil, err
		}
		l.logger.Debugf("loaded project config %s", projectConfigPath)
		config.Merge(projectConfig)
	} else {
		l.logger.Debugf("no project config found")
	}

	if explicit != "" {
		explicitConfig, err := LoadFromFile(explicit)
		if err != nil {
			return nil, err
		}
		l.logger.Debugf("loaded config %s", explicit)
		config.Merge(explicitConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() (string, error) {
	userConfigPath := l.userConfigPath()
	if _, err := os.Stat(userConfigPath); err == nil {
		return userConfigPath, nil
	}

	if err := DefaultConfig().SaveToFile(userConfigPath); err != nil {
		return "", err
	}

	l.logger.Infof("created default user config %s", userConfigPath)
	return userConfigPath, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home := l.home
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for contractcompat.yaml in the working
// directory and its parents
func (l *Loader) findProjectConfig() string {
	dir := l.dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}

	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
