package workspace

import "github.com/mesh-intelligence/workbench/pkg/types"

// Object is any addressable entity of a workspace.
type Object interface {
	ID() string
	State() types.State
}

// Compile-time checks.
var (
	_ Object = (*FilePath)(nil)
	_ Object = (*FileRoot)(nil)
	_ Object = (*FileName)(nil)
	_ Object = (*Reference)(nil)
	_ Object = (*Attribute)(nil)
)

// IDs returns the identifiers of objs in order.
func IDs(objs []Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.ID()
	}
	return out
}
