package views

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/workbench/internal/filter"
	"github.com/mesh-intelligence/workbench/pkg/types"
)

// Scope selects the candidates of a filter or a bulk check.
type Scope int

// Scopes.
const (
	ScopeFiles Scope = iota
	ScopeRefs
)

// String returns "files" or "refs".
func (s Scope) String() string {
	if s == ScopeRefs {
		return "refs"
	}
	return "files"
}

// ParseScope reads "files" or "refs".
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(s) {
	case "files", "file":
		return ScopeFiles, nil
	case "refs", "ref", "references":
		return ScopeRefs, nil
	}
	return ScopeFiles, fmt.Errorf("%w: unknown scope %q", types.ErrInvalidFilter, s)
}

// AssociationBar is the toolbar that selects by filter and links the
// selected roots to the selected references.
type AssociationBar struct {
	view
}

// NewAssociationBar returns the association toolbar of s.
func NewAssociationBar(s *Session) *AssociationBar {
	return &AssociationBar{view: newView(s)}
}

// CheckByFilter checks the candidates of scope selected by triples under
// mode. Malformed triples are skipped and reported in the result; an
// invalid regular expression aborts before any state changes.
func (v *AssociationBar) CheckByFilter(scope Scope, triples []filter.Triple, mode filter.Mode) (filter.Result, error) {
	ws := v.ws()
	var res filter.Result
	var err error
	if scope == ScopeRefs {
		res, err = v.s.filter.Refs(ws, triples, mode)
	} else {
		res, err = v.s.filter.Files(ws, triples, mode)
	}
	if err != nil {
		return res, err
	}
	changed := 0
	for _, id := range res.IDs {
		objs, err := ws.SetObjectState(types.StateChecked, id)
		if err != nil {
			v.s.log.Warn().Str("id", id).Err(err).Msg("filter match not checked")
			continue
		}
		changed += len(objs)
	}
	v.publish(changed > 0)
	return res, nil
}

// CheckAll checks every candidate of scope.
func (v *AssociationBar) CheckAll(scope Scope) int {
	return v.setAll(scope, types.StateChecked)
}

// UncheckAll moves every checked candidate of scope back to unused.
func (v *AssociationBar) UncheckAll(scope Scope) int {
	return v.setAll(scope, types.StateUnused)
}

// Link associates every selected root with every selected reference.
// Returns the number of edges inserted.
func (v *AssociationBar) Link() int {
	n := v.ws().Associate()
	v.publish(n > 0)
	return n
}

// Unlink removes the edges between the selected roots and references.
// Returns the number of edges removed.
func (v *AssociationBar) Unlink() int {
	n := v.ws().Dissociate()
	v.publish(n > 0)
	return n
}

func (v *AssociationBar) setAll(scope Scope, state types.State) int {
	ws := v.ws()
	// Unchecking only touches checked candidates so that missing files
	// stay missing.
	mask := types.StateAny
	if state == types.StateUnused {
		mask = types.StateChecked | types.StateAtLeastOneChecked
	}
	var ids []string
	if scope == ScopeRefs {
		for _, r := range ws.RefsWithState(mask) {
			ids = append(ids, r.ID())
		}
	} else {
		for _, f := range ws.FilesWithState(mask) {
			ids = append(ids, f.ID())
		}
	}
	n := 0
	for _, id := range ids {
		objs, err := ws.SetObjectState(state, id)
		if err != nil {
			continue
		}
		n += len(objs)
	}
	v.publish(n > 0)
	return n
}
