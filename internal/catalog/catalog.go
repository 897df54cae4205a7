// Package catalog manages the list of workspaces shown by the workspaces
// bar. Index 0 is always the Blank workspace, which lives in memory only;
// the other entries are the workspace files of the workspaces folder,
// sorted by name and indexed by internal/sqlite.
package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/mesh-intelligence/workbench/internal/sqlite"
	"github.com/mesh-intelligence/workbench/internal/wio"
	"github.com/mesh-intelligence/workbench/pkg/types"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

// Catalog tracks the workspaces folder and the current workspace.
type Catalog struct {
	cfg     types.Config
	dir     string
	fs      afero.Fs
	log     zerolog.Logger
	reg     *sqlite.Registry
	wsOpts  []workspace.Option
	names   []string
	index   int
	blank   *workspace.Workspace
	current *workspace.Workspace
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithFs sets the file system for workspace files.
func WithFs(fs afero.Fs) Option {
	return func(c *Catalog) { c.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Catalog) { c.log = l }
}

// WithWorkspaceOptions adds options applied to every workspace the
// catalog creates or loads.
func WithWorkspaceOptions(opts ...workspace.Option) Option {
	return func(c *Catalog) { c.wsOpts = append(c.wsOpts, opts...) }
}

// Open attaches the index of cfg.WorkspacesDir and starts on Blank.
func Open(cfg types.Config, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		cfg: cfg,
		dir: cfg.WorkspacesDir,
		fs:  afero.NewOsFs(),
		log: zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.reg = sqlite.NewRegistry(sqlite.WithFs(c.fs), sqlite.WithLogger(c.log))
	if err := c.reg.Attach(c.dir); err != nil {
		return nil, fmt.Errorf("opening workspaces folder: %w", err)
	}
	if err := c.reload(); err != nil {
		c.reg.Detach()
		return nil, err
	}
	c.blank = c.newWorkspace()
	c.current = c.blank
	return c, nil
}

// Close saves the current workspace unless it is Blank and detaches the
// index.
func (c *Catalog) Close() error {
	var saveErr error
	if c.index != 0 {
		saveErr = c.Save()
	}
	if err := c.reg.Detach(); err != nil {
		return err
	}
	return saveErr
}

// Registry exposes the index for read-only queries.
func (c *Catalog) Registry() *sqlite.Registry { return c.reg }

// List returns Blank followed by the persisted workspace names.
func (c *Catalog) List() []string {
	return append([]string{workspace.BlankID}, c.names...)
}

// Index returns the position of the current workspace in List.
func (c *Catalog) Index() int { return c.index }

// Current returns the live current workspace.
func (c *Catalog) Current() *workspace.Workspace { return c.current }

// Save writes the current workspace to its file.
// Returns ErrBlankWorkspace when the current workspace is Blank.
func (c *Catalog) Save() error {
	if c.index == 0 {
		return types.ErrBlankWorkspace
	}
	name := c.names[c.index-1]
	if err := wio.Save(c.fs, wio.PathFor(c.dir, name), c.current); err != nil {
		return err
	}
	return c.reg.Refresh(name)
}

// Pin persists the current workspace under a new name and makes that
// entry current. Pinning Blank leaves a fresh empty Blank behind.
func (c *Catalog) Pin(name string) (int, error) {
	if err := c.available(name); err != nil {
		return c.index, err
	}
	if c.index != 0 {
		// The previous entry keeps its last saved content.
		if err := c.Save(); err != nil {
			return c.index, err
		}
	}
	c.current.SetID(name)
	if err := wio.Save(c.fs, wio.PathFor(c.dir, name), c.current); err != nil {
		return c.index, err
	}
	if err := c.reg.Refresh(name); err != nil {
		return c.index, err
	}
	if c.current == c.blank {
		c.blank = c.newWorkspace()
	}
	if err := c.reload(); err != nil {
		return c.index, err
	}
	c.index = c.position(name)
	c.log.Info().Str("workspace", name).Msg("workspace pinned")
	return c.index, nil
}

// Rename gives the current workspace a new name.
func (c *Catalog) Rename(newName string) error {
	if c.index == 0 {
		return types.ErrBlankWorkspace
	}
	old := c.names[c.index-1]
	if newName == old {
		return nil
	}
	if err := c.available(newName); err != nil {
		return err
	}
	c.current.SetID(newName)
	if err := wio.Save(c.fs, wio.PathFor(c.dir, newName), c.current); err != nil {
		c.current.SetID(old)
		return err
	}
	if err := c.fs.Remove(wio.PathFor(c.dir, old)); err != nil {
		c.log.Warn().Str("workspace", old).Err(err).Msg("old workspace file left behind")
	}
	if err := c.reg.Rename(old, newName); err != nil {
		return err
	}
	if err := c.reload(); err != nil {
		return err
	}
	c.index = c.position(newName)
	return nil
}

// Switch saves the current workspace and makes entry i current.
func (c *Catalog) Switch(i int) (*workspace.Workspace, error) {
	if i < 0 || i > len(c.names) {
		return nil, fmt.Errorf("%w: workspace index %d", types.ErrNotFound, i)
	}
	if i == c.index {
		return c.current, nil
	}
	if i == 0 {
		if err := c.Save(); err != nil {
			return nil, err
		}
		c.index, c.current = 0, c.blank
		return c.current, nil
	}

	name := c.names[i-1]
	ws, err := wio.Load(c.fs, wio.PathFor(c.dir, name), c.cfg, c.loadOpts()...)
	if err != nil {
		return nil, err
	}
	ws.SetID(name)
	ws.Update()
	if c.index != 0 {
		if err := c.Save(); err != nil {
			return nil, err
		}
	}
	c.index, c.current = i, ws
	return ws, nil
}

// Import copies a workspace file into the workspaces folder under its
// basename, numbered on collision. Returns the index of the new entry.
func (c *Catalog) Import(path string) (int, error) {
	ws, err := wio.Load(c.fs, path, c.cfg, c.loadOpts()...)
	if err != nil {
		return 0, err
	}
	base := wio.Name(path)
	if base == workspace.BlankID {
		base += "-imported"
	}
	name, err := wio.UniqueName(c.fs, c.dir, base)
	if err != nil {
		return 0, err
	}
	ws.SetID(name)
	if err := wio.Save(c.fs, wio.PathFor(c.dir, name), ws); err != nil {
		return 0, err
	}
	if err := c.reg.Refresh(name); err != nil {
		return 0, err
	}
	currentName := c.currentName()
	if err := c.reload(); err != nil {
		return 0, err
	}
	c.index = c.position(currentName)
	c.log.Info().Str("file", path).Str("workspace", name).Msg("workspace imported")
	return c.position(name), nil
}

// Export writes the current workspace to path.
func (c *Catalog) Export(path string) error {
	if c.index == 0 {
		return types.ErrBlankWorkspace
	}
	if filepath.Ext(path) == "" {
		path += wio.Ext
	}
	return wio.Save(c.fs, path, c.current)
}

// Remove deletes entry i and its file. Removing the current entry makes
// Blank current.
func (c *Catalog) Remove(i int) error {
	if i == 0 {
		return types.ErrBlankWorkspace
	}
	if i < 0 || i > len(c.names) {
		return fmt.Errorf("%w: workspace index %d", types.ErrNotFound, i)
	}
	name := c.names[i-1]
	if err := c.fs.Remove(wio.PathFor(c.dir, name)); err != nil {
		return fmt.Errorf("removing workspace %s: %w", name, err)
	}
	if err := c.reg.Remove(name); err != nil {
		return err
	}
	currentName := c.currentName()
	if i == c.index {
		c.current, currentName = c.blank, ""
	}
	if err := c.reload(); err != nil {
		return err
	}
	c.index = c.position(currentName)
	return nil
}

func (c *Catalog) newWorkspace() *workspace.Workspace {
	return workspace.New(c.cfg, append([]workspace.Option{workspace.WithFs(c.fs)}, c.loadOpts()...)...)
}

func (c *Catalog) loadOpts() []workspace.Option {
	return append([]workspace.Option{workspace.WithLogger(c.log)}, c.wsOpts...)
}

func (c *Catalog) reload() error {
	names, err := c.reg.Names()
	if err != nil {
		return err
	}
	c.names = names
	return nil
}

func (c *Catalog) currentName() string {
	if c.index == 0 {
		return ""
	}
	return c.names[c.index-1]
}

// position returns the List index of name, or 0 when absent.
func (c *Catalog) position(name string) int {
	for i, n := range c.names {
		if n == name {
			return i + 1
		}
	}
	return 0
}

// available checks that name can be used for a new entry.
func (c *Catalog) available(name string) error {
	if name == "" || name == workspace.BlankID || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: workspace name %q", types.ErrInvalidID, name)
	}
	if c.position(name) != 0 {
		return fmt.Errorf("%w: workspace %s", types.ErrDuplicate, name)
	}
	return nil
}
