// Document form of a workspace: the tagged hierarchical record written by
// internal/wio. Selection is not durable, so checked and locked leaves are
// recorded as unused.
package workspace

import (
	"fmt"
	"path/filepath"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// DocumentVersion is the schema version written by Document.
const DocumentVersion = 1

// Document is the persisted form of a workspace.
type Document struct {
	Workspace WorkspaceDoc `json:"workspace"`
}

// WorkspaceDoc holds the persisted content of a workspace.
type WorkspaceDoc struct {
	ID           string         `json:"id"`
	Version      int            `json:"version"`
	Paths        []PathDoc      `json:"paths"`
	References   []ReferenceDoc `json:"references"`
	Associations [][2]string    `json:"associations"`
}

// PathDoc is a persisted folder.
type PathDoc struct {
	ID    string    `json:"id"`
	State string    `json:"state"`
	Roots []RootDoc `json:"roots"`
}

// RootDoc is a persisted root.
type RootDoc struct {
	ID    string    `json:"id"`
	State string    `json:"state"`
	Files []FileDoc `json:"files"`
}

// FileDoc is a persisted file.
type FileDoc struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// ReferenceDoc is a persisted reference.
type ReferenceDoc struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	State      string         `json:"state"`
	Attributes []AttributeDoc `json:"attributes"`
}

// AttributeDoc is a persisted attribute.
type AttributeDoc struct {
	ID          string `json:"id"`
	Value       string `json:"value"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// durable maps a state to the value that survives persistence.
func durable(s types.State) types.State {
	switch s {
	case types.StateChecked, types.StateLocked:
		return types.StateUnused
	case types.StateAtLeastOneChecked, types.StateAtLeastOneLocked:
		return types.StateUnused
	}
	return s
}

// Document returns the persisted form of the workspace.
func (w *Workspace) Document() Document {
	doc := WorkspaceDoc{
		ID:           w.id,
		Version:      DocumentVersion,
		Paths:        make([]PathDoc, 0, len(w.paths)),
		References:   make([]ReferenceDoc, 0, len(w.refs)),
		Associations: make([][2]string, 0, w.links.Len()),
	}
	for _, p := range w.paths {
		pd := PathDoc{ID: p.id, Roots: make([]RootDoc, 0, len(p.roots))}
		var pathStates []types.State
		for _, r := range p.roots {
			rd := RootDoc{ID: r.id, Files: make([]FileDoc, 0, len(r.files))}
			var rootStates []types.State
			for _, f := range r.files {
				s := durable(f.state)
				rootStates = append(rootStates, s)
				rd.Files = append(rd.Files, FileDoc{ID: f.id, State: s.String()})
			}
			rs := types.Derive(rootStates)
			rd.State = rs.String()
			pathStates = append(pathStates, rs)
			pd.Roots = append(pd.Roots, rd)
		}
		pd.State = types.Derive(pathStates).String()
		doc.Paths = append(doc.Paths, pd)
	}
	for _, r := range w.refs {
		rd := ReferenceDoc{
			ID:         r.id,
			Type:       r.typ,
			State:      durable(r.State()).String(),
			Attributes: make([]AttributeDoc, 0, len(r.attrs)),
		}
		for _, a := range r.attrs {
			rd.Attributes = append(rd.Attributes, AttributeDoc{
				ID:          a.id,
				Value:       a.value,
				Type:        a.valueType,
				Description: a.description,
			})
		}
		doc.References = append(doc.References, rd)
	}
	for _, e := range w.links.Edges() {
		doc.Associations = append(doc.Associations, [2]string{e.RootID, e.RefID})
	}
	return Document{Workspace: doc}
}

// FromDocument builds a new workspace from its persisted form. It checks
// that every file sits in its root and every root in its folder, that root
// stems are disjoint, that reference and attribute identifiers are unique,
// and that every association resolves. The file system is not probed;
// call Update for that.
func FromDocument(doc Document, cfg types.Config, opts ...Option) (*Workspace, error) {
	wd := doc.Workspace
	w := New(cfg, opts...)
	if wd.ID != "" {
		w.id = wd.ID
	}

	for _, pd := range wd.Paths {
		if pd.ID == "" || !filepath.IsAbs(pd.ID) {
			return nil, fmt.Errorf("%w: folder %q is not absolute", types.ErrInvalidDocument, pd.ID)
		}
		if w.path(pd.ID) != nil {
			return nil, fmt.Errorf("%w: folder %s listed twice", types.ErrInvalidDocument, pd.ID)
		}
		if len(pd.Roots) == 0 {
			return nil, fmt.Errorf("%w: folder %s has no root", types.ErrInvalidDocument, pd.ID)
		}
		for _, rd := range pd.Roots {
			if filepath.Dir(rd.ID) != pd.ID {
				return nil, fmt.Errorf("%w: root %s is not under %s", types.ErrInvalidDocument, rd.ID, pd.ID)
			}
			if len(rd.Files) == 0 {
				return nil, fmt.Errorf("%w: root %s has no file", types.ErrInvalidDocument, rd.ID)
			}
			if _, r := w.root(rd.ID); r != nil {
				return nil, fmt.Errorf("%w: root %s listed twice", types.ErrInvalidDocument, rd.ID)
			}
			for _, fd := range rd.Files {
				if filepath.Dir(fd.ID) != pd.ID {
					return nil, fmt.Errorf("%w: file %s is not under %s", types.ErrInvalidDocument, fd.ID, pd.ID)
				}
				if w.file(fd.ID) != nil {
					return nil, fmt.Errorf("%w: file %s listed twice", types.ErrInvalidDocument, fd.ID)
				}
				stem := RootStem(fd.ID, cfg.RootSuffixes)
				if filepath.Join(pd.ID, stem) != rd.ID {
					return nil, fmt.Errorf("%w: file %s does not belong to root %s", types.ErrInvalidDocument, fd.ID, rd.ID)
				}
				state, err := leafState(fd.State)
				if err != nil {
					return nil, fmt.Errorf("%w: file %s: %v", types.ErrInvalidDocument, fd.ID, err)
				}
				w.insert(fd.ID, state)
			}
		}
	}

	for _, rd := range wd.References {
		ref, err := NewReference(rd.ID, rd.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: reference %q: %v", types.ErrInvalidDocument, rd.ID, err)
		}
		state, err := leafState(rd.State)
		if err != nil {
			return nil, fmt.Errorf("%w: reference %s: %v", types.ErrInvalidDocument, rd.ID, err)
		}
		ref.state = state
		for _, ad := range rd.Attributes {
			if ref.Attribute(ad.ID) != nil {
				return nil, fmt.Errorf("%w: attribute %s:%s listed twice", types.ErrInvalidDocument, rd.ID, ad.ID)
			}
			a, err := NewAttribute(ad.ID, ad.Value, ad.Type, ad.Description)
			if err != nil {
				return nil, fmt.Errorf("%w: attribute %s:%s: %v", types.ErrInvalidDocument, rd.ID, ad.ID, err)
			}
			ref.attrs = append(ref.attrs, a)
		}
		if err := w.AddRef(ref); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidDocument, err)
		}
	}

	for _, edge := range wd.Associations {
		if _, r := w.root(edge[0]); r == nil {
			return nil, fmt.Errorf("%w: association to unknown root %s", types.ErrInvalidDocument, edge[0])
		}
		if w.GetRef(edge[1]) == nil {
			return nil, fmt.Errorf("%w: association to unknown reference %s", types.ErrInvalidDocument, edge[1])
		}
		w.links.Add(edge[0], edge[1])
	}
	return w, nil
}

// leafState parses a persisted state; only missing and unused are durable.
// An empty value means unused.
func leafState(name string) (types.State, error) {
	if name == "" {
		return types.StateUnused, nil
	}
	s, err := types.ParseState(name)
	if err != nil {
		return 0, err
	}
	return durable(s), nil
}
