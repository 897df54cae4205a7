package paths

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// stubPlatform replaces the home and user config lookups for one test.
func stubPlatform(t *testing.T, home, userConfig string, err error) {
	t.Helper()
	saved := platformDir
	platformDir.homeDir = func() (string, error) { return home, err }
	platformDir.userConfigDir = func() (string, error) { return userConfig, err }
	t.Cleanup(func() { platformDir = saved })
}

func TestDefaultDirs(t *testing.T) {
	tests := []struct {
		name       string
		xdgConfig  string
		xdgData    string
		wantConfig string
		wantData   string
	}{
		{
			name:       "xdg variables",
			xdgConfig:  "/xdg/config",
			xdgData:    "/xdg/data",
			wantConfig: "/xdg/config/workbench",
			wantData:   "/xdg/data/workbench",
		},
		{
			name:       "home fallback",
			wantConfig: "/home/ann/.config/workbench",
			wantData:   "/home/ann/.local/share/workbench",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubPlatform(t, "/home/ann", "/home/ann/Library/Application Support", nil)
			t.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)
			t.Setenv("XDG_DATA_HOME", tt.xdgData)

			cfg, err := DefaultConfigDir()
			require.NoError(t, err)
			data, err := DefaultDataDir()
			require.NoError(t, err)

			if runtime.GOOS != "linux" {
				want := filepath.Join("/home/ann/Library/Application Support", AppName)
				assert.Equal(t, want, cfg)
				assert.Equal(t, want, data)
				return
			}
			assert.Equal(t, tt.wantConfig, cfg)
			assert.Equal(t, tt.wantData, data)
		})
	}
}

func TestDefaultDirsLookupFailure(t *testing.T) {
	boom := errors.New("no home")
	stubPlatform(t, "", "", boom)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	_, err := DefaultConfigDir()
	assert.ErrorIs(t, err, boom)
	_, err = DefaultDataDir()
	assert.ErrorIs(t, err, boom)
}

func TestResolveConfigDir(t *testing.T) {
	stubPlatform(t, "/home/ann", "/home/ann/Library/Application Support", nil)
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	def, err := DefaultConfigDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{name: "flag", flag: "/flag/config", env: "/env/config", want: "/flag/config"},
		{name: "env", env: "/env/config", want: "/env/config"},
		{name: "platform default", want: def},
		{name: "relative flag", flag: "cfg", want: abs(t, "cfg")},
		{name: "relative env", env: "env/cfg", want: abs(t, "env/cfg")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.env)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	stubPlatform(t, "/home/ann", "/home/ann/Library/Application Support", nil)
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	def, err := DefaultDataDir()
	require.NoError(t, err)

	tests := []struct {
		name   string
		flag   string
		config string
		env    string
		want   string
	}{
		{name: "flag", flag: "/flag/data", config: "/config/data", env: "/env/data", want: "/flag/data"},
		{name: "config value", config: "/config/data", env: "/env/data", want: "/config/data"},
		{name: "env", env: "/env/data", want: "/env/data"},
		{name: "platform default", want: def},
		{name: "relative config value", config: "data", want: abs(t, "data")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.env)
			got, err := ResolveDataDir(tt.flag, tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func abs(t *testing.T, p string) string {
	t.Helper()
	a, err := filepath.Abs(p)
	require.NoError(t, err)
	return a
}

func TestSessionFolders(t *testing.T) {
	data, err := ResolveDataDir("", "/srv/wb")
	require.NoError(t, err)
	cfg := Apply(types.Config{WorkspacesDir: "ws", TrashDir: "/tmp/trash"}, data)

	assert.Equal(t, "/srv/wb/ws", cfg.WorkspacesDir)
	assert.Equal(t, "/srv/wb/logs", cfg.LogsDir)
	assert.Equal(t, "/tmp/trash", cfg.TrashDir)
	assert.Equal(t, "/etc/workbench/steps", StepsDir("/etc/workbench"))
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		in   types.Config
		want types.Config
	}{
		{
			name: "empty fields go under the data dir",
			want: types.Config{
				WorkspacesDir: "/data/workspaces",
				LogsDir:       "/data/logs",
				TrashDir:      "/data/trash",
			},
		},
		{
			name: "absolute fields are kept",
			in:   types.Config{LogsDir: "/var/log/wb"},
			want: types.Config{
				WorkspacesDir: "/data/workspaces",
				LogsDir:       "/var/log/wb",
				TrashDir:      "/data/trash",
			},
		},
		{
			name: "relative fields resolve against the data dir",
			in:   types.Config{TrashDir: "bin"},
			want: types.Config{
				WorkspacesDir: "/data/workspaces",
				LogsDir:       "/data/logs",
				TrashDir:      "/data/bin",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.in, "/data"))
		})
	}
}
