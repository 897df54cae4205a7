package workspace

import (
	"path/filepath"
	"sort"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// FileRoot groups the files of a folder that share a stem.
type FileRoot struct {
	id    string
	stem  string
	files []*FileName
}

func newFileRoot(dir, stem string) *FileRoot {
	return &FileRoot{id: filepath.Join(dir, stem), stem: stem}
}

// ID returns the absolute path of the stem.
func (r *FileRoot) ID() string { return r.id }

// Stem returns the basename part shared by the files of the root.
func (r *FileRoot) Stem() string { return r.stem }

// Files returns the files of the root sorted by identifier.
// The slice is a copy; the entries are live.
func (r *FileRoot) Files() []*FileName {
	out := make([]*FileName, len(r.files))
	copy(out, r.files)
	return out
}

// State derives the root state from its files.
func (r *FileRoot) State() types.State {
	states := make([]types.State, len(r.files))
	for i, f := range r.files {
		states[i] = f.state
	}
	return types.Derive(states)
}

func (r *FileRoot) file(id string) *FileName {
	for _, f := range r.files {
		if f.id == id {
			return f
		}
	}
	return nil
}

func (r *FileRoot) addFile(f *FileName) {
	i := sort.Search(len(r.files), func(i int) bool { return r.files[i].id >= f.id })
	r.files = append(r.files, nil)
	copy(r.files[i+1:], r.files[i:])
	r.files[i] = f
}

func (r *FileRoot) removeFile(id string) {
	for i, f := range r.files {
		if f.id == id {
			r.files = append(r.files[:i], r.files[i+1:]...)
			return
		}
	}
}

func (r *FileRoot) hasLocked() bool {
	for _, f := range r.files {
		if f.state == types.StateLocked {
			return true
		}
	}
	return false
}
