package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// BlankID names the workspace that is never persisted.
const BlankID = "Blank"

// Workspace is the aggregate root: the path tree, the reference catalog
// and the association between roots and references.
type Workspace struct {
	id    string
	cfg   types.Config
	fs    afero.Fs
	log   zerolog.Logger
	paths []*FilePath
	refs  []*Reference
	links *Links
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithFs sets the file system probed by AddFile and Update.
func WithFs(fs afero.Fs) Option {
	return func(w *Workspace) { w.fs = fs }
}

// WithLogger sets the logger used to report skipped and not-found work.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Workspace) { w.log = l }
}

// WithID names the workspace.
func WithID(id string) Option {
	return func(w *Workspace) { w.id = id }
}

// New returns an empty workspace named Blank unless WithID says otherwise.
func New(cfg types.Config, opts ...Option) *Workspace {
	w := &Workspace{
		id:    BlankID,
		cfg:   cfg,
		fs:    afero.NewOsFs(),
		log:   zerolog.Nop(),
		links: NewLinks(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// ID returns the workspace name.
func (w *Workspace) ID() string { return w.id }

// SetID renames the workspace.
func (w *Workspace) SetID(id string) { w.id = id }

// Config returns the configuration the workspace was built with.
func (w *Workspace) Config() types.Config { return w.cfg }

// Fs returns the file system the workspace probes.
func (w *Workspace) Fs() afero.Fs { return w.fs }

// Paths returns the folders sorted by identifier.
func (w *Workspace) Paths() []*FilePath {
	out := make([]*FilePath, len(w.paths))
	copy(out, w.paths)
	return out
}

// Files returns every file in tree order.
func (w *Workspace) Files() []*FileName {
	var out []*FileName
	for _, p := range w.paths {
		out = append(out, p.Files()...)
	}
	return out
}

// Roots returns every root in tree order.
func (w *Workspace) Roots() []*FileRoot {
	var out []*FileRoot
	for _, p := range w.paths {
		out = append(out, p.roots...)
	}
	return out
}

// Refs returns the reference catalog in insertion order.
func (w *Workspace) Refs() []*Reference {
	out := make([]*Reference, len(w.refs))
	copy(out, w.refs)
	return out
}

// IsEmpty reports whether the workspace has neither files nor references.
func (w *Workspace) IsEmpty() bool {
	return len(w.paths) == 0 && len(w.refs) == 0
}

// HasLockedFiles reports whether any file is locked.
func (w *Workspace) HasLockedFiles() bool {
	for _, p := range w.paths {
		if p.hasLocked() {
			return true
		}
	}
	return false
}

// AddFile inserts a file, creating its folder and root when needed. It
// does not read the file content. Returns the newly created objects in
// the order path, root, file.
func (w *Workspace) AddFile(name string) ([]Object, error) {
	if hasParentRef(name) {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidID, name)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidID, name)
	}
	info, err := w.fs.Stat(abs)
	if err != nil {
		w.log.Error().Str("file", abs).Err(err).Msg("cannot add file")
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, abs)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a folder", types.ErrInvalidID, abs)
	}
	if w.file(abs) != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrDuplicate, abs)
	}
	created := w.insert(abs, types.StateUnused)
	f := w.file(abs)
	f.size = info.Size()
	f.modTime = info.ModTime()
	return created, nil
}

// AddPath adds a file, or every regular non-hidden file directly under a
// folder. Files already present are skipped.
func (w *Workspace) AddPath(name string) ([]Object, error) {
	if hasParentRef(name) {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidID, name)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidID, name)
	}
	info, err := w.fs.Stat(abs)
	if err != nil {
		w.log.Error().Str("path", abs).Err(err).Msg("cannot add path")
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, abs)
	}
	if !info.IsDir() {
		return w.AddFile(abs)
	}
	entries, err := afero.ReadDir(w.fs, abs)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", abs, err)
	}
	var created []Object
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		objs, err := w.AddFile(filepath.Join(abs, e.Name()))
		if err != nil {
			w.log.Debug().Str("file", e.Name()).Err(err).Msg("skipped during folder scan")
			continue
		}
		created = append(created, objs...)
	}
	return created, nil
}

// insert places a file in the tree without probing the file system.
func (w *Workspace) insert(abs string, state types.State) []Object {
	var created []Object
	dir, base := filepath.Split(abs)
	dir = filepath.Clean(dir)

	p := w.path(dir)
	if p == nil {
		p = &FilePath{id: dir}
		i := sort.Search(len(w.paths), func(i int) bool { return w.paths[i].id >= dir })
		w.paths = append(w.paths, nil)
		copy(w.paths[i+1:], w.paths[i:])
		w.paths[i] = p
		created = append(created, p)
	}

	stem := RootStem(base, w.cfg.RootSuffixes)
	r := p.root(stem)
	if r == nil {
		r = newFileRoot(dir, stem)
		p.addRoot(r)
		created = append(created, r)
	}

	f := newFileName(abs)
	f.state = state
	r.addFile(f)
	return append(created, f)
}

// Remove deletes a folder, a root or a file, then cascades upward: a root
// with no file left is removed, and so is a folder with no root. Fails
// with ErrLocked, removing nothing, when a file under the target is locked.
// The target is resolved as GetObject does. Returns the removed
// identifiers, files first.
func (w *Workspace) Remove(id string) ([]string, error) {
	switch o := w.GetObject(id).(type) {
	case *FileName:
		if o.state == types.StateLocked {
			return nil, fmt.Errorf("%w: %s", types.ErrLocked, id)
		}
		p, r, _ := w.locate(o.id)
		r.removeFile(o.id)
		removed := []string{o.id}
		if len(r.files) == 0 {
			removed = append(removed, w.dropRoot(p, r)...)
		}
		return removed, nil
	case *FileRoot:
		if o.hasLocked() {
			return nil, fmt.Errorf("%w: %s", types.ErrLocked, id)
		}
		var removed []string
		for _, f := range o.files {
			removed = append(removed, f.id)
		}
		p, _ := w.root(o.id)
		return append(removed, w.dropRoot(p, o)...), nil
	case *FilePath:
		if o.hasLocked() {
			return nil, fmt.Errorf("%w: %s", types.ErrLocked, id)
		}
		var removed []string
		for _, r := range o.roots {
			for _, f := range r.files {
				removed = append(removed, f.id)
			}
		}
		for _, r := range o.roots {
			w.links.DropRoot(r.id)
			removed = append(removed, r.id)
		}
		w.dropPath(o.id)
		return append(removed, o.id), nil
	}
	w.log.Warn().Str("id", id).Msg("remove: unknown identifier")
	return nil, fmt.Errorf("%w: %s", types.ErrNotFound, id)
}

// RemoveFiles removes every non-locked file whose state matches mask.
// Returns the number of files removed.
func (w *Workspace) RemoveFiles(mask types.State) int {
	n := 0
	for _, f := range w.FilesWithState(mask &^ types.StateLocked) {
		if _, err := w.Remove(f.id); err == nil {
			n++
		}
	}
	return n
}

func (w *Workspace) dropRoot(p *FilePath, r *FileRoot) []string {
	w.links.DropRoot(r.id)
	p.removeRoot(r.id)
	removed := []string{r.id}
	if len(p.roots) == 0 {
		w.dropPath(p.id)
		removed = append(removed, p.id)
	}
	return removed
}

func (w *Workspace) dropPath(id string) {
	for i, p := range w.paths {
		if p.id == id {
			w.paths = append(w.paths[:i], w.paths[i+1:]...)
			return
		}
	}
}

// AddRef appends a reference to the catalog after normalizing its type.
// Returns ErrDuplicate or ErrInvalidRefType.
func (w *Workspace) AddRef(ref *Reference) error {
	if ref == nil || !types.ValidRefID(ref.id) {
		return types.ErrInvalidID
	}
	if w.GetRef(ref.id) != nil {
		return fmt.Errorf("%w: reference %s", types.ErrDuplicate, ref.id)
	}
	typ, err := w.cfg.NormalizeRefType(ref.typ)
	if err != nil {
		return fmt.Errorf("%w: %q", err, ref.typ)
	}
	ref.typ = typ
	w.refs = append(w.refs, ref)
	return nil
}

// RemoveRefs removes the references whose state matches mask. Locked
// references and references with a locked attribute are kept.
// Returns the number removed.
func (w *Workspace) RemoveRefs(mask types.State) int {
	kept := w.refs[:0]
	n := 0
	for _, r := range w.refs {
		if r.State().Is(mask) && !r.hasLocked() {
			w.links.DropRef(r.id)
			n++
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(w.refs); i++ {
		w.refs[i] = nil
	}
	w.refs = kept
	return n
}

// GetRef returns the reference with the given id, or nil.
func (w *Workspace) GetRef(id string) *Reference {
	for _, r := range w.refs {
		if r.id == id {
			return r
		}
	}
	return nil
}

// GetObject resolves an identifier to a file, root, folder or reference,
// in that order: a file without extension shares its id with its root and
// a root may share its id with a subfolder. An id ending with a separator
// names a folder only. Returns nil when nothing matches.
func (w *Workspace) GetObject(id string) Object {
	if isFolderID(id) {
		if p := w.Folder(id); p != nil {
			return p
		}
		return nil
	}
	if f := w.file(id); f != nil {
		return f
	}
	if _, r := w.root(id); r != nil {
		return r
	}
	if p := w.path(id); p != nil {
		return p
	}
	if r := w.GetRef(id); r != nil {
		return r
	}
	return nil
}

// File returns the file with the given id, or nil.
func (w *Workspace) File(id string) *FileName { return w.file(id) }

// Root returns the root with the given id, or nil.
func (w *Workspace) Root(id string) *FileRoot {
	_, r := w.root(id)
	return r
}

// Folder returns the folder with the given id, with or without a trailing
// separator, or nil.
func (w *Workspace) Folder(id string) *FilePath {
	if id == "" {
		return nil
	}
	return w.path(filepath.Clean(id))
}

func isFolderID(id string) bool {
	return len(id) > 1 && strings.HasSuffix(id, string(filepath.Separator))
}

// RootOf returns the root that owns a file, or nil.
func (w *Workspace) RootOf(fileID string) *FileRoot {
	_, r, _ := w.locate(fileID)
	return r
}

// PathOf returns the folder that owns a root, or nil.
func (w *Workspace) PathOf(rootID string) *FilePath {
	p, _ := w.root(rootID)
	return p
}

// RefsOf returns the references associated with a root.
func (w *Workspace) RefsOf(rootID string) []*Reference {
	var out []*Reference
	for _, id := range w.links.RefsOf(rootID) {
		if r := w.GetRef(id); r != nil {
			out = append(out, r)
		}
	}
	return out
}

// RootsOf returns the identifiers of the roots associated with a reference.
func (w *Workspace) RootsOf(refID string) []string {
	return w.links.RootsOf(refID)
}

// Edges returns the association edges sorted by root then reference.
func (w *Workspace) Edges() []Edge {
	return w.links.Edges()
}

func (w *Workspace) path(id string) *FilePath {
	for _, p := range w.paths {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (w *Workspace) root(id string) (*FilePath, *FileRoot) {
	p := w.path(filepath.Dir(id))
	if p == nil {
		return nil, nil
	}
	return p, p.rootByID(id)
}

func (w *Workspace) locate(fileID string) (*FilePath, *FileRoot, *FileName) {
	p := w.path(filepath.Dir(fileID))
	if p == nil {
		return nil, nil, nil
	}
	for _, r := range p.roots {
		if f := r.file(fileID); f != nil {
			return p, r, f
		}
	}
	return nil, nil, nil
}

func (w *Workspace) file(id string) *FileName {
	_, _, f := w.locate(id)
	return f
}

// exists reports whether name is present on the workspace file system.
func (w *Workspace) exists(name string) bool {
	_, err := w.fs.Stat(name)
	return err == nil || !os.IsNotExist(err)
}
