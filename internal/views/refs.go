package views

import (
	"fmt"

	"github.com/mesh-intelligence/workbench/pkg/types"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

// References is the view of the reference catalog.
type References struct {
	view
}

// NewReferences returns the references view of s.
func NewReferences(s *Session) *References {
	return &References{view: newView(s)}
}

// CreateRef adds a new reference. Returns ErrInvalidID, ErrDuplicate or
// ErrInvalidRefType.
func (v *References) CreateRef(name, refType string) (*workspace.Reference, error) {
	ref, err := workspace.NewReference(name, refType)
	if err != nil {
		return nil, fmt.Errorf("reference %q: %w", name, err)
	}
	if err := v.ws().AddRef(ref); err != nil {
		return nil, err
	}
	v.publish(true)
	return ref, nil
}

// EditAttribute creates or overwrites an attribute of a reference.
// An empty valueType means str.
func (v *References) EditAttribute(refID, attrID, value, valueType, description string) error {
	ref, err := v.ref(refID)
	if err != nil {
		return err
	}
	if _, err := ref.SetAttribute(attrID, value, valueType, description); err != nil {
		return fmt.Errorf("attribute %s:%s: %w", refID, attrID, err)
	}
	v.publish(true)
	return nil
}

// RemoveAttribute deletes an attribute. Returns ErrLocked for a locked
// attribute.
func (v *References) RemoveAttribute(refID, attrID string) error {
	ref, err := v.ref(refID)
	if err != nil {
		return err
	}
	if err := ref.RemoveAttribute(attrID); err != nil {
		return fmt.Errorf("attribute %s:%s: %w", refID, attrID, err)
	}
	v.publish(true)
	return nil
}

// RemoveCheckedRefs drops the checked references and their edges.
// Returns the number removed.
func (v *References) RemoveCheckedRefs() int {
	n := v.ws().RemoveRefs(types.StateChecked)
	v.publish(n > 0)
	return n
}

// CheckRef checks or unchecks a reference and all its attributes.
func (v *References) CheckRef(id string, on bool) error {
	if _, err := v.ref(id); err != nil {
		return err
	}
	state := types.StateUnused
	if on {
		state = types.StateChecked
	}
	changed, err := v.ws().SetObjectState(state, id)
	if err != nil {
		return err
	}
	v.publish(len(changed) > 0)
	return nil
}

// CheckAttribute checks or unchecks one attribute.
func (v *References) CheckAttribute(refID, attrID string, on bool) error {
	state := types.StateUnused
	if on {
		state = types.StateChecked
	}
	changed, err := v.ws().SetAttributeState(state, refID, attrID)
	if err != nil {
		return err
	}
	v.publish(len(changed) > 0)
	return nil
}

func (v *References) ref(id string) (*workspace.Reference, error) {
	ref := v.ws().GetRef(id)
	if ref == nil {
		v.s.log.Warn().Str("ref", id).Msg("unknown reference")
		return nil, fmt.Errorf("%w: reference %s", types.ErrNotFound, id)
	}
	return ref, nil
}
