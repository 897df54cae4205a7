package workspace

import "github.com/mesh-intelligence/workbench/pkg/types"

// Reference is a named bag of typed attributes, independent of the file
// tree. Without attributes it carries its own primary state; with
// attributes its state is derived from theirs.
type Reference struct {
	id    string
	typ   string
	state types.State
	attrs []*Attribute
}

// NewReference returns a detached reference. The type tag is checked
// against the workspace configuration when the reference is added.
// Returns ErrInvalidID if id is not 2-12 alphanumeric or underscore characters.
func NewReference(id, refType string) (*Reference, error) {
	if !types.ValidRefID(id) {
		return nil, types.ErrInvalidID
	}
	return &Reference{id: id, typ: refType, state: types.StateUnused}, nil
}

// ID returns the reference identifier.
func (r *Reference) ID() string { return r.id }

// Type returns the reference type tag.
func (r *Reference) Type() string { return r.typ }

// State returns the own state of an attribute-less reference, otherwise
// the state derived from its attributes.
func (r *Reference) State() types.State {
	if len(r.attrs) == 0 {
		return r.state
	}
	states := make([]types.State, len(r.attrs))
	for i, a := range r.attrs {
		states[i] = a.state
	}
	return types.Derive(states)
}

// Attributes returns the attributes in insertion order.
func (r *Reference) Attributes() []*Attribute {
	out := make([]*Attribute, len(r.attrs))
	copy(out, r.attrs)
	return out
}

// Attribute returns the attribute with the given id, or nil.
func (r *Reference) Attribute(id string) *Attribute {
	for _, a := range r.attrs {
		if a.id == id {
			return a
		}
	}
	return nil
}

// SetAttribute creates or overwrites an attribute. A new attribute is
// checked when the reference is checked, unused otherwise.
// Returns ErrLocked when the attribute, or the reference receiving a new
// attribute, is locked.
func (r *Reference) SetAttribute(id, value, valueType, description string) (*Attribute, error) {
	fresh, err := NewAttribute(id, value, valueType, description)
	if err != nil {
		return nil, err
	}
	if a := r.Attribute(id); a != nil {
		if a.state == types.StateLocked {
			return nil, types.ErrLocked
		}
		a.value = fresh.value
		a.valueType = fresh.valueType
		a.description = fresh.description
		return a, nil
	}
	if r.State() == types.StateLocked {
		return nil, types.ErrLocked
	}
	if r.State() == types.StateChecked {
		fresh.state = types.StateChecked
	}
	r.attrs = append(r.attrs, fresh)
	return fresh, nil
}

// RemoveAttribute deletes an attribute.
// Returns ErrNotFound or ErrLocked.
func (r *Reference) RemoveAttribute(id string) error {
	for i, a := range r.attrs {
		if a.id != id {
			continue
		}
		if a.state == types.StateLocked {
			return types.ErrLocked
		}
		r.attrs = append(r.attrs[:i], r.attrs[i+1:]...)
		return nil
	}
	return types.ErrNotFound
}

// setState moves the reference and every attribute to the given state,
// each through the transition table. Reports whether anything changed.
func (r *Reference) setState(to types.State) bool {
	changed := false
	if r.state != to && types.CanTransition(r.state, to) {
		r.state = to
		changed = true
	}
	for _, a := range r.attrs {
		if a.setState(to) {
			changed = true
		}
	}
	return changed
}

func (r *Reference) hasLocked() bool {
	s := r.State()
	return s == types.StateLocked || s == types.StateAtLeastOneLocked
}
