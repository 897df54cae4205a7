// Package paths resolves the workbench configuration and data directories
// and the folders a session keeps inside them.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// AppName is the directory name used under the platform config and data roots.
const AppName = "workbench"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "WORKBENCH_CONFIG_DIR"
	EnvDataDir   = "WORKBENCH_DATA_DIR"
)

// Folder names kept inside the data directory, and the step descriptor
// folder kept inside the config directory.
const (
	WorkspacesDirName = "workspaces"
	LogsDirName       = "logs"
	TrashDirName      = "trash"
	StepsDirName      = "steps"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/workbench (fallback ~/.config/workbench)
// macOS:   ~/Library/Application Support/workbench
// Windows: %APPDATA%/workbench
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/workbench (fallback ~/.local/share/workbench)
// macOS:   ~/Library/Application Support/workbench
// Windows: %APPDATA%/workbench
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

func xdgDir(env, fallback string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > WORKBENCH_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configValue > WORKBENCH_DATA_DIR env > DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}

// StepsDir returns the folder holding step descriptors for configDir.
func StepsDir(configDir string) string {
	return filepath.Join(configDir, StepsDirName)
}

// Apply fills the empty directory fields of cfg with folders under dataDir.
// Relative paths already set in cfg are resolved against dataDir.
func Apply(cfg types.Config, dataDir string) types.Config {
	cfg.WorkspacesDir = under(dataDir, cfg.WorkspacesDir, WorkspacesDirName)
	cfg.LogsDir = under(dataDir, cfg.LogsDir, LogsDirName)
	cfg.TrashDir = under(dataDir, cfg.TrashDir, TrashDirName)
	return cfg
}

func under(dataDir, value, name string) string {
	switch {
	case value == "":
		return filepath.Join(dataDir, name)
	case filepath.IsAbs(value):
		return value
	default:
		return filepath.Join(dataDir, value)
	}
}
