package views

import (
	"errors"

	"github.com/mesh-intelligence/workbench/internal/catalog"
)

// ErrNoCatalog is returned by the workspaces bar of a session opened
// without a catalog.
var ErrNoCatalog = errors.New("session has no workspaces catalog")

// WorkspacesBar lists and switches the persisted workspaces.
type WorkspacesBar struct {
	view
}

// NewWorkspacesBar returns the workspaces bar of s.
func NewWorkspacesBar(s *Session) *WorkspacesBar {
	return &WorkspacesBar{view: newView(s)}
}

func (v *WorkspacesBar) catalog() (*catalog.Catalog, error) {
	if v.s.catalog == nil {
		return nil, ErrNoCatalog
	}
	return v.s.catalog, nil
}

// List returns Blank followed by the persisted workspaces.
func (v *WorkspacesBar) List() []string {
	if v.s.catalog == nil {
		return []string{v.ws().ID()}
	}
	return v.s.catalog.List()
}

// Index returns the position of the current workspace in List.
func (v *WorkspacesBar) Index() int {
	if v.s.catalog == nil {
		return 0
	}
	return v.s.catalog.Index()
}

// Save writes the current workspace to its file.
func (v *WorkspacesBar) Save() error {
	c, err := v.catalog()
	if err != nil {
		return err
	}
	return c.Save()
}

// Pin persists the current workspace under name.
func (v *WorkspacesBar) Pin(name string) (int, error) {
	c, err := v.catalog()
	if err != nil {
		return 0, err
	}
	i, err := c.Pin(name)
	if err != nil {
		return i, err
	}
	v.publish(true)
	return i, nil
}

// Rename renames the current workspace.
func (v *WorkspacesBar) Rename(newName string) error {
	c, err := v.catalog()
	if err != nil {
		return err
	}
	return c.Rename(newName)
}

// Switch makes entry i current and announces the new workspace.
func (v *WorkspacesBar) Switch(i int) error {
	c, err := v.catalog()
	if err != nil {
		return err
	}
	before := c.Index()
	if _, err := c.Switch(i); err != nil {
		return err
	}
	v.publish(c.Index() != before)
	return nil
}

// Import copies a workspace file into the list. Returns its index.
func (v *WorkspacesBar) Import(path string) (int, error) {
	c, err := v.catalog()
	if err != nil {
		return 0, err
	}
	return c.Import(path)
}

// Export writes the current workspace to path.
func (v *WorkspacesBar) Export(path string) error {
	c, err := v.catalog()
	if err != nil {
		return err
	}
	return c.Export(path)
}

// Remove deletes entry i. Removing the current entry switches to Blank.
func (v *WorkspacesBar) Remove(i int) error {
	c, err := v.catalog()
	if err != nil {
		return err
	}
	before := c.Index()
	if err := c.Remove(i); err != nil {
		return err
	}
	v.publish(i == before)
	return nil
}
