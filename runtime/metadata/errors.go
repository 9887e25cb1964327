package metadata

import "errors"

// Registration errors. They are wrapped with the offending type or member
// name, so compare with errors.Is.
var (
	ErrAlreadyDefined     = errors.New("type already reflected")
	ErrNotStruct          = errors.New("reflected type must be a struct")
	ErrInvalidBase        = errors.New("invalid base class")
	ErrBaseNotReflected   = errors.New("base class is not reflected")
	ErrSubtypeWithoutBase = errors.New("subtype declared without a base class")
	ErrDuplicateFact      = errors.New("duplicate registration")
	ErrUnknownField       = errors.New("unknown field")
	ErrNotMethod          = errors.New("value is not a method of the type")
	ErrNotReflected       = errors.New("type is not reflected")
)

// Access errors returned by Fact.
var (
	ErrInvalidInstance = errors.New("instance does not derive from owner")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrNotCallable     = errors.New("fact is not callable")
	ErrNotAddressable  = errors.New("fact has no storage")
)
