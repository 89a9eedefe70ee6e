package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvDataDir overrides the XDG data directory for linkvault
	EnvDataDir = "LINKVAULT_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for linkvault
	EnvConfigDir = "LINKVAULT_CONFIG_DIR"

	// EnvConfigFile points at an explicit config file
	EnvConfigFile = "LINKVAULT_CONFIG"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files. These are not user-configurable; the
// database location itself can be moved through the store.path setting.
const (
	// AppDirName is the directory name used under every XDG base directory
	AppDirName = "linkvault"

	// DatabaseDir is the subdirectory of the data dir holding the record store
	DatabaseDir = "db"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "linkvault.log"
)

// Paths provides centralized path management for linkvault
type Paths interface {
	DataDir() string
	ConfigDir() string
	StateDir() string
	DatabasePath() string
	ConfigFilePath() string
	LogFilePath() string
}

type paths struct {
	xdgData   string
	xdgConfig string
	xdgState  string
}

// New creates a new Paths instance, respecting environment overrides.
func New() (Paths, error) {
	// Pick up XDG_* changes made since process start.
	xdg.Reload()

	p := &paths{}

	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = ExpandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, AppDirName)
	}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = ExpandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	p.xdgState = filepath.Join(xdg.StateHome, AppDirName)

	return p, nil
}

// DataDir returns the XDG data directory for linkvault
func (p *paths) DataDir() string {
	return p.xdgData
}

// ConfigDir returns the XDG config directory for linkvault
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// StateDir returns the XDG state directory for linkvault
func (p *paths) StateDir() string {
	return p.xdgState
}

// DatabasePath returns the default location of the record store
func (p *paths) DatabasePath() string {
	return filepath.Join(p.xdgData, DatabaseDir)
}

// ConfigFilePath returns the user config file, honoring LINKVAULT_CONFIG
func (p *paths) ConfigFilePath() string {
	if file := os.Getenv(EnvConfigFile); file != "" {
		return ExpandHome(file)
	}
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

// LogFilePath returns the path of the log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// ExpandHome expands ~ to the home directory
func ExpandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}
