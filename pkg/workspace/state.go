// State operations: explicit transitions on leaves, selection queries and
// the bulk association over the current selection.
package workspace

import (
	"fmt"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// selected is the mask of roots and references that take part in
// Associate and Dissociate.
const selected = types.StateChecked | types.StateAtLeastOneChecked

// SetObjectState moves target to state and returns every object whose
// effective state changed, leaves first. An empty target applies to every
// file and every reference. Forbidden transitions are skipped per leaf.
// Returns ErrInvalidState for a derived state and ErrNotFound for an
// unknown target.
func (w *Workspace) SetObjectState(state types.State, target string) ([]Object, error) {
	if !state.IsLeaf() {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidState, state)
	}

	var files []*FileName
	var refs []*Reference
	switch obj := w.GetObject(target); {
	case target == "":
		files = w.Files()
		refs = w.refs
	case obj == nil:
		w.log.Warn().Str("id", target).Msg("set state: unknown identifier")
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, target)
	default:
		switch o := obj.(type) {
		case *FilePath:
			files = o.Files()
		case *FileRoot:
			files = o.files
		case *FileName:
			files = []*FileName{o}
		case *Reference:
			refs = []*Reference{o}
		}
	}

	watch := w.watch(files, refs)
	for _, f := range files {
		f.setState(state)
	}
	for _, r := range refs {
		r.setState(state)
	}
	return watch.changed(), nil
}

// SetAttributeState moves one attribute to state. Returns the attribute
// and its reference when their state changed.
func (w *Workspace) SetAttributeState(state types.State, refID, attrID string) ([]Object, error) {
	if !state.IsLeaf() {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidState, state)
	}
	ref := w.GetRef(refID)
	if ref == nil {
		return nil, fmt.Errorf("%w: reference %s", types.ErrNotFound, refID)
	}
	a := ref.Attribute(attrID)
	if a == nil {
		return nil, fmt.Errorf("%w: attribute %s:%s", types.ErrNotFound, refID, attrID)
	}
	refBefore := ref.State()
	if !a.setState(state) {
		return nil, nil
	}
	out := []Object{a}
	if ref.State() != refBefore {
		out = append(out, ref)
	}
	return out, nil
}

// Unlock moves locked files of the targets back to checked. No target
// means the whole workspace. Returns the number of unlocked files.
func (w *Workspace) Unlock(targets ...string) int {
	var files []*FileName
	if len(targets) == 0 {
		files = w.Files()
	}
	for _, t := range targets {
		switch o := w.GetObject(t).(type) {
		case *FilePath:
			files = append(files, o.Files()...)
		case *FileRoot:
			files = append(files, o.files...)
		case *FileName:
			files = append(files, o)
		}
	}
	n := 0
	for _, f := range files {
		if f.state == types.StateLocked {
			f.state = types.StateChecked
			n++
		}
	}
	return n
}

// RestoreStates puts files back into recorded states, bypassing the
// transition table. It is the way out of a lock taken for external work.
// Unknown identifiers are ignored. Returns the objects that changed.
func (w *Workspace) RestoreStates(prev map[string]types.State) []Object {
	var files []*FileName
	for id := range prev {
		if f := w.file(id); f != nil {
			files = append(files, f)
		}
	}
	watch := w.watch(files, nil)
	for _, f := range files {
		if s := prev[f.id]; s.IsLeaf() {
			f.state = s
		}
	}
	return watch.changed()
}

// FilesWithState returns the files whose state matches mask, in tree order.
func (w *Workspace) FilesWithState(mask types.State) []*FileName {
	var out []*FileName
	for _, f := range w.Files() {
		if f.state.Is(mask) {
			out = append(out, f)
		}
	}
	return out
}

// RootsWithState returns the roots whose derived state matches mask.
func (w *Workspace) RootsWithState(mask types.State) []*FileRoot {
	var out []*FileRoot
	for _, r := range w.Roots() {
		if r.State().Is(mask) {
			out = append(out, r)
		}
	}
	return out
}

// RefsWithState returns the references whose state matches mask.
func (w *Workspace) RefsWithState(mask types.State) []*Reference {
	var out []*Reference
	for _, r := range w.refs {
		if r.State().Is(mask) {
			out = append(out, r)
		}
	}
	return out
}

// Associate links every selected root to every selected reference.
// Returns the number of edges inserted.
func (w *Workspace) Associate() int {
	n := 0
	refs := w.RefsWithState(selected)
	for _, root := range w.RootsWithState(selected) {
		for _, ref := range refs {
			if w.links.Add(root.id, ref.id) {
				n++
			}
		}
	}
	return n
}

// Dissociate removes the edges between selected roots and selected
// references. Returns the number of edges removed.
func (w *Workspace) Dissociate() int {
	n := 0
	refs := w.RefsWithState(selected)
	for _, root := range w.RootsWithState(selected) {
		for _, ref := range refs {
			if w.links.Remove(root.id, ref.id) {
				n++
			}
		}
	}
	return n
}

// stateWatch records the states of leaves and their ancestors so that the
// objects whose effective state changed can be listed afterwards.
type stateWatch struct {
	objs   []Object
	before []types.State
}

func (w *Workspace) watch(files []*FileName, refs []*Reference) *stateWatch {
	sw := &stateWatch{}
	add := func(o Object) {
		sw.objs = append(sw.objs, o)
		sw.before = append(sw.before, o.State())
	}
	roots := make(map[*FileRoot]bool)
	paths := make(map[*FilePath]bool)
	var rootOrder []*FileRoot
	var pathOrder []*FilePath
	for _, f := range files {
		add(f)
		p, r, _ := w.locate(f.id)
		if r != nil && !roots[r] {
			roots[r] = true
			rootOrder = append(rootOrder, r)
		}
		if p != nil && !paths[p] {
			paths[p] = true
			pathOrder = append(pathOrder, p)
		}
	}
	for _, r := range rootOrder {
		add(r)
	}
	for _, p := range pathOrder {
		add(p)
	}
	for _, r := range refs {
		for _, a := range r.attrs {
			add(a)
		}
		add(r)
	}
	return sw
}

func (sw *stateWatch) changed() []Object {
	var out []Object
	for i, o := range sw.objs {
		if o.State() != sw.before[i] {
			out = append(out, o)
		}
	}
	return out
}
