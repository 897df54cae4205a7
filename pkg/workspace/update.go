package workspace

import "github.com/mesh-intelligence/workbench/pkg/types"

// Update probes every file on the file system. A vanished file becomes
// missing unless it is locked; a missing file that reappeared becomes
// unused. Size and modification time are refreshed. Returns the objects
// whose state changed.
func (w *Workspace) Update() []Object {
	files := w.Files()
	watch := w.watch(files, nil)
	for _, f := range files {
		info, err := w.fs.Stat(f.id)
		if err != nil {
			if !w.exists(f.id) && f.state != types.StateLocked {
				f.state = types.StateMissing
			}
			continue
		}
		f.size = info.Size()
		f.modTime = info.ModTime()
		if f.state == types.StateMissing {
			f.state = types.StateUnused
		}
	}
	changed := watch.changed()
	if len(changed) > 0 {
		w.log.Debug().Int("changed", len(changed)).Msg("workspace update")
	}
	return changed
}
