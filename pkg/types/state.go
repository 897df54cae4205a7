// Object states and the transition/derivation rules shared by every entity
// of a workspace.
package types

import "strings"

// State is the selection state of a workspace object. Values are bit flags
// so that several states can be combined into a mask.
type State int

// Leaf states. Files, attributes and attribute-less references carry one
// of these as their primary state.
const (
	StateMissing State = 1 << iota
	StateUnused
	StateChecked
	StateLocked

	// Derived-only states of containers.
	StateAtLeastOneChecked
	StateAtLeastOneLocked
)

// StateAny matches every state.
const StateAny = StateMissing | StateUnused | StateChecked | StateLocked |
	StateAtLeastOneChecked | StateAtLeastOneLocked

var stateNames = map[State]string{
	StateMissing:           "missing",
	StateUnused:            "unused",
	StateChecked:           "checked",
	StateLocked:            "locked",
	StateAtLeastOneChecked: "at_least_one_checked",
	StateAtLeastOneLocked:  "at_least_one_locked",
}

// String returns the lower-case name of a single state.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "invalid"
}

// Is reports whether s belongs to mask.
func (s State) Is(mask State) bool {
	return s&mask != 0
}

// IsLeaf reports whether s can be held as a primary state.
func (s State) IsLeaf() bool {
	switch s {
	case StateMissing, StateUnused, StateChecked, StateLocked:
		return true
	}
	return false
}

// ParseState converts a state name back to a State.
// Returns ErrInvalidState if the name is not recognized.
func ParseState(name string) (State, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	for s, sn := range stateNames {
		if sn == n {
			return s, nil
		}
	}
	return 0, ErrInvalidState
}

// transitions lists the permitted explicit transitions of a leaf.
var transitions = map[State]State{
	StateUnused:  StateUnused | StateChecked | StateLocked | StateMissing,
	StateChecked: StateUnused | StateChecked | StateLocked | StateMissing,
	StateLocked:  StateLocked | StateMissing,
	StateMissing: StateUnused | StateMissing,
}

// CanTransition reports whether a leaf in state from may be moved to to.
// Derived states are never valid on either side.
func CanTransition(from, to State) bool {
	if !to.IsLeaf() {
		return false
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	return to.Is(allowed)
}

// Derive computes the state of a container from the states of its
// children. Locked wins over checked; a container with no children is
// unused.
func Derive(children []State) State {
	if len(children) == 0 {
		return StateUnused
	}
	var locked, anyLocked, checked, anyChecked, missing int
	for _, c := range children {
		switch c {
		case StateLocked:
			locked++
			anyLocked++
		case StateAtLeastOneLocked:
			anyLocked++
		case StateChecked:
			checked++
			anyChecked++
		case StateAtLeastOneChecked:
			anyChecked++
		case StateMissing:
			missing++
		}
	}
	n := len(children)
	switch {
	case locked == n:
		return StateLocked
	case anyLocked > 0:
		return StateAtLeastOneLocked
	case checked == n:
		return StateChecked
	case anyChecked > 0:
		return StateAtLeastOneChecked
	case missing == n:
		return StateMissing
	default:
		return StateUnused
	}
}
