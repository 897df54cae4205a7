package views

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/workbench/pkg/types"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

// ErrNoTrash is returned by DeleteChecked when no trash folder is configured.
var ErrNoTrash = errors.New("no trash folder configured")

// Files is the view of the path tree.
type Files struct {
	view
}

// NewFiles returns the files view of s.
func NewFiles(s *Session) *Files {
	return &Files{view: newView(s)}
}

// Add adds files or folders. Folders contribute the regular files directly
// under them. Unknown paths and files already present are logged and
// skipped. Returns the identifiers of the added files.
func (v *Files) Add(paths ...string) []string {
	ws := v.ws()
	var added []string
	for _, p := range paths {
		objs, err := ws.AddPath(p)
		if err != nil {
			v.s.log.Warn().Str("path", p).Err(err).Msg("add skipped")
			continue
		}
		for _, o := range objs {
			if _, ok := o.(*workspace.FileName); ok {
				added = append(added, o.ID())
			}
		}
	}
	v.publish(len(added) > 0)
	return added
}

// RemoveChecked removes the checked files from the workspace, leaving
// them on disk. Returns the number removed.
func (v *Files) RemoveChecked() int {
	n := v.ws().RemoveFiles(types.StateChecked)
	v.publish(n > 0)
	return n
}

// DeleteChecked moves the checked files into the trash folder, then
// removes them from the workspace. A file that cannot be moved stays in
// the workspace and its error is returned joined with the others.
// Returns the trash names of the moved files.
func (v *Files) DeleteChecked() ([]string, error) {
	ws := v.ws()
	if v.s.cfg.TrashDir == "" {
		return nil, ErrNoTrash
	}
	var moved []string
	var errs []error
	for _, f := range ws.FilesWithState(types.StateChecked) {
		dst, err := moveToTrash(v.s.fs, v.s.cfg.TrashDir, f.ID())
		if err != nil {
			v.s.log.Error().Str("file", f.ID()).Err(err).Msg("cannot move to trash")
			errs = append(errs, err)
			continue
		}
		if _, err := ws.Remove(f.ID()); err != nil {
			errs = append(errs, err)
			continue
		}
		moved = append(moved, dst)
	}
	v.publish(len(moved) > 0)
	return moved, errors.Join(errs...)
}

// Check checks the targets, or every file when none is given. Locked
// files are left alone. Returns the number of objects whose state changed.
func (v *Files) Check(targets ...string) int {
	return v.setState(types.StateChecked, targets)
}

// Lock locks the targets, or every file when none is given.
func (v *Files) Lock(targets ...string) int {
	return v.setState(types.StateLocked, targets)
}

// Unlock turns locked files of the targets back to checked.
func (v *Files) Unlock(targets ...string) int {
	n := v.ws().Unlock(targets...)
	v.publish(n > 0)
	return n
}

// ChangeState moves one folder, root or file to the named state.
// Returns ErrInvalidState for an unknown or derived state and ErrNotFound
// for an unknown target.
func (v *Files) ChangeState(target, state string) error {
	s, err := types.ParseState(state)
	if err != nil {
		return err
	}
	ws := v.ws()
	if _, ok := ws.GetObject(target).(*workspace.Reference); ok {
		return fmt.Errorf("%w: %s is a reference", types.ErrNotFound, target)
	}
	changed, err := ws.SetObjectState(s, target)
	if err != nil {
		return err
	}
	v.publish(len(changed) > 0)
	return nil
}

// Update probes the files on disk. Returns the number of objects whose
// state changed.
func (v *Files) Update() int {
	n := len(v.ws().Update())
	v.publish(n > 0)
	return n
}

func (v *Files) setState(state types.State, targets []string) int {
	ws := v.ws()
	if len(targets) == 0 {
		for _, f := range ws.Files() {
			targets = append(targets, f.ID())
		}
	}
	n := 0
	for _, t := range targets {
		if _, ok := ws.GetObject(t).(*workspace.Reference); ok {
			v.s.log.Warn().Str("id", t).Msg("not a file target")
			continue
		}
		changed, err := ws.SetObjectState(state, t)
		if err != nil {
			v.s.log.Warn().Str("id", t).Err(err).Msg("state change skipped")
			continue
		}
		n += len(changed)
	}
	v.publish(n > 0)
	return n
}
