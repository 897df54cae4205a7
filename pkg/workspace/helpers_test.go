package workspace

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// newTestWorkspace returns a workspace over an in-memory file system that
// already holds the given files (not yet added to the workspace).
func newTestWorkspace(t *testing.T, files ...string) (*Workspace, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("data"), 0o644))
	}
	return New(types.DefaultConfig(), WithFs(fs)), fs
}

// populated returns a workspace with the given files added.
func populated(t *testing.T, files ...string) *Workspace {
	t.Helper()
	w, _ := newTestWorkspace(t, files...)
	for _, f := range files {
		_, err := w.AddFile(f)
		require.NoError(t, err)
	}
	return w
}

// addRef creates and adds a reference.
func addRef(t *testing.T, w *Workspace, id, typ string) *Reference {
	t.Helper()
	ref, err := NewReference(id, typ)
	require.NoError(t, err)
	require.NoError(t, w.AddRef(ref))
	return ref
}
