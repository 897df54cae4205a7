package workspace

import "github.com/mesh-intelligence/workbench/pkg/types"

// Attribute is a typed value inside a reference.
type Attribute struct {
	id          string
	value       string
	valueType   string
	description string
	state       types.State
}

// NewAttribute validates and returns a detached attribute in state unused.
// Returns ErrInvalidID, ErrInvalidValueType or ErrTypeMismatch.
func NewAttribute(id, value, valueType, description string) (*Attribute, error) {
	if !types.ValidAttributeID(id) {
		return nil, types.ErrInvalidID
	}
	if valueType == "" {
		valueType = types.ValueTypeStr
	}
	if _, err := types.Coerce(valueType, value); err != nil {
		return nil, err
	}
	return &Attribute{
		id:          id,
		value:       value,
		valueType:   valueType,
		description: description,
		state:       types.StateUnused,
	}, nil
}

// ID returns the attribute identifier, unique within its reference.
func (a *Attribute) ID() string { return a.id }

// State returns the primary state of the attribute.
func (a *Attribute) State() types.State { return a.state }

// Value returns the raw value.
func (a *Attribute) Value() string { return a.value }

// ValueType returns the declared value type.
func (a *Attribute) ValueType() string { return a.valueType }

// Description returns the optional free-text description.
func (a *Attribute) Description() string { return a.description }

// Typed returns the value coerced to its declared type.
func (a *Attribute) Typed() (any, error) {
	return types.Coerce(a.valueType, a.value)
}

func (a *Attribute) setState(to types.State) bool {
	if a.state == to || !types.CanTransition(a.state, to) {
		return false
	}
	a.state = to
	return true
}
