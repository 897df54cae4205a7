package workspace

import (
	"sort"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// FilePath is a folder of the file tree. It owns the roots found in it.
type FilePath struct {
	id    string
	roots []*FileRoot
}

// ID returns the absolute folder name.
func (p *FilePath) ID() string { return p.id }

// Roots returns the roots of the folder sorted by identifier.
func (p *FilePath) Roots() []*FileRoot {
	out := make([]*FileRoot, len(p.roots))
	copy(out, p.roots)
	return out
}

// Files returns every file of the folder in tree order.
func (p *FilePath) Files() []*FileName {
	var out []*FileName
	for _, r := range p.roots {
		out = append(out, r.files...)
	}
	return out
}

// State derives the folder state from its roots.
func (p *FilePath) State() types.State {
	states := make([]types.State, len(p.roots))
	for i, r := range p.roots {
		states[i] = r.State()
	}
	return types.Derive(states)
}

func (p *FilePath) root(stem string) *FileRoot {
	for _, r := range p.roots {
		if r.stem == stem {
			return r
		}
	}
	return nil
}

func (p *FilePath) rootByID(id string) *FileRoot {
	for _, r := range p.roots {
		if r.id == id {
			return r
		}
	}
	return nil
}

func (p *FilePath) addRoot(r *FileRoot) {
	i := sort.Search(len(p.roots), func(i int) bool { return p.roots[i].id >= r.id })
	p.roots = append(p.roots, nil)
	copy(p.roots[i+1:], p.roots[i:])
	p.roots[i] = r
}

func (p *FilePath) removeRoot(id string) {
	for i, r := range p.roots {
		if r.id == id {
			p.roots = append(p.roots[:i], p.roots[i+1:]...)
			return
		}
	}
}

func (p *FilePath) hasLocked() bool {
	for _, r := range p.roots {
		if r.hasLocked() {
			return true
		}
	}
	return false
}
