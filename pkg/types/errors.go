package types

import "errors"

// Validation errors.
var (
	ErrInvalidID            = errors.New("invalid identifier")
	ErrInvalidState         = errors.New("invalid state value")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrDuplicate            = errors.New("identifier already exists")
	ErrInvalidRefType       = errors.New("unknown reference type")
	ErrInvalidValueType     = errors.New("unknown attribute value type")
	ErrTypeMismatch         = errors.New("value does not match declared type")
	ErrInvalidFilter        = errors.New("malformed filter triple")
	ErrInvalidPattern       = errors.New("invalid regular expression")
	ErrUnsupportedExtension = errors.New("extension not supported by format family")
	ErrUnknownFamily        = errors.New("unknown output format family")
	ErrInvalidLang          = errors.New("language not supported by step")
	ErrInvalidOption        = errors.New("unknown step option")
)

// Lookup and ownership errors.
var (
	ErrNotFound = errors.New("object not found")
	ErrLocked   = errors.New("object is locked")
)

// Persistence and session errors.
var (
	ErrInvalidDocument = errors.New("invalid workspace document")
	ErrBlankWorkspace  = errors.New("blank workspace cannot be persisted or removed")
	ErrNotRunnable     = errors.New("pipeline is not runnable")
	ErrAlreadyAttached = errors.New("registry already attached")
	ErrDetached        = errors.New("registry is detached")
)
