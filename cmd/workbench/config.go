// Config loading for the workbench CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir       = "data_dir"
	cfgKeyWorkspace     = "workspace"
	cfgKeyLogLevel      = "log_level"
	cfgKeyLangNone      = "lang_none"
	cfgKeyRefTypes      = "ref_types"
	cfgKeyFormats       = "formats"
	cfgKeyRootSuffixes  = "root_suffixes"
	cfgKeyTrashDir      = "trash_dir"
	cfgKeyLogsDir       = "logs_dir"
	cfgKeyWorkspacesDir = "workspaces_dir"

	defaultLogLevel = "info"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Workbench configuration

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# Workspace used when --workspace is not given (optional)
# workspace:

# Folders; relative values are resolved against the data directory
# workspaces_dir: workspaces
# logs_dir: logs
# trash_dir: trash

log_level: info
lang_none: und

ref_types:
  - STANDALONE
  - SPEAKER
  - INTERACTION

formats:
  transcription: [.xra, .TextGrid, .eaf, .antx, .csv, .txt]
  image: [.png, .jpg]
  audio: [.wav]

# Suffixes stripped from a file stem before grouping files into roots
# root_suffixes: [-palign, -phon, -token]
`

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. A missing config.yaml
// is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := types.DefaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLangNone, def.LangNone)
	v.SetDefault(cfgKeyRefTypes, def.RefTypes)
	v.SetDefault(cfgKeyFormats, def.Formats)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in configDir.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// sessionConfig decodes the session record from v and validates it.
func sessionConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.Config{
		LangNone:      v.GetString(cfgKeyLangNone),
		RefTypes:      v.GetStringSlice(cfgKeyRefTypes),
		Formats:       make(map[string][]string),
		RootSuffixes:  v.GetStringSlice(cfgKeyRootSuffixes),
		TrashDir:      v.GetString(cfgKeyTrashDir),
		LogsDir:       v.GetString(cfgKeyLogsDir),
		WorkspacesDir: v.GetString(cfgKeyWorkspacesDir),
	}
	if err := v.UnmarshalKey(cfgKeyFormats, &cfg.Formats); err != nil {
		return types.Config{}, fmt.Errorf("decode %s: %w", cfgKeyFormats, err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
