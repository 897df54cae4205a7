package workspace

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// FileName is a leaf of the file tree: one file on disk.
type FileName struct {
	id      string
	ext     string
	size    int64
	modTime time.Time
	state   types.State
}

func newFileName(id string) *FileName {
	return &FileName{
		id:    id,
		ext:   filepath.Ext(id),
		state: types.StateUnused,
	}
}

// ID returns the absolute filename.
func (f *FileName) ID() string { return f.id }

// State returns the primary state of the file.
func (f *FileName) State() types.State { return f.state }

// Ext returns the extension including its leading dot.
func (f *FileName) Ext() string { return f.ext }

// Name returns the basename without the final extension.
func (f *FileName) Name() string {
	base := filepath.Base(f.id)
	return strings.TrimSuffix(base, f.ext)
}

// Dir returns the folder that contains the file.
func (f *FileName) Dir() string { return filepath.Dir(f.id) }

// Size returns the size in bytes seen at the last probe.
func (f *FileName) Size() int64 { return f.size }

// ModTime returns the modification time seen at the last probe.
func (f *FileName) ModTime() time.Time { return f.modTime }

// Kind returns the display category derived from the extension.
func (f *FileName) Kind() types.FileKind { return types.KindOf(f.ext) }

// setState applies an explicit transition. Forbidden transitions are a
// no-op. Reports whether the state changed.
func (f *FileName) setState(to types.State) bool {
	if f.state == to || !types.CanTransition(f.state, to) {
		return false
	}
	f.state = to
	return true
}
