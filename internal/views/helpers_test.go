package views

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/workbench/internal/bus"
	"github.com/mesh-intelligence/workbench/internal/catalog"
	"github.com/mesh-intelligence/workbench/internal/param"
	"github.com/mesh-intelligence/workbench/pkg/types"
)

// testConfig returns a configuration whose folders live under /wb, except
// the workspaces folder which also holds the on-disk index database.
func testConfig(t *testing.T) types.Config {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.TrashDir = "/wb/trash"
	cfg.LogsDir = "/wb/logs"
	cfg.WorkspacesDir = t.TempDir()
	return cfg
}

// newTestSession opens a session over an in-memory file system holding
// the given files.
func newTestSession(t *testing.T, steps []param.Step, files ...string) (*Session, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("data"), 0o644))
	}
	cfg := testConfig(t)
	c, err := catalog.Open(cfg, catalog.WithFs(fs))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	params, err := param.New(cfg, steps)
	require.NoError(t, err)
	return NewSession(cfg, WithFs(fs), WithCatalog(c), WithParams(params)), fs
}

// recorder counts the DataChanged events seen by a foreign emitter.
type recorder struct {
	events []bus.DataChanged
}

func record(s *Session) *recorder {
	r := &recorder{}
	s.Bus().Subscribe(bus.NewEmitterID(), func(e bus.Event) {
		if dc, ok := e.(bus.DataChanged); ok {
			r.events = append(r.events, dc)
		}
	})
	return r
}
