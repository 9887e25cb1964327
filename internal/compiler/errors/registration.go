package errors

import (
	"fmt"
	"go/token"
)

// Registration error codes (TRF200-299)
const (
	// ErrUnknownBase indicates a base that is not a reflected type
	ErrUnknownBase ErrorCode = "TRF200"
	// ErrInvalidBase indicates a base that is not embedded in the type
	ErrInvalidBase ErrorCode = "TRF201"
	// ErrSubtypeWithoutBase indicates a subtype marker on a root type
	ErrSubtypeWithoutBase ErrorCode = "TRF202"
	// ErrDuplicateName indicates two registrations with one name
	ErrDuplicateName ErrorCode = "TRF203"
	// ErrUnknownMember indicates a field or method that does not exist
	ErrUnknownMember ErrorCode = "TRF204"
	// ErrInvalidEnum indicates an enum on a non-integer type
	ErrInvalidEnum ErrorCode = "TRF205"
	// ErrUnknownOwner indicates a static whose owner is not reflected
	ErrUnknownOwner ErrorCode = "TRF206"
	// ErrImportConflict indicates one import name bound to two paths
	ErrImportConflict ErrorCode = "TRF207"
	// ErrReflectedTwice indicates a type reflected by two declarations
	ErrReflectedTwice ErrorCode = "TRF208"
	// ErrUnknownPackage indicates a qualified name whose package is not imported
	ErrUnknownPackage ErrorCode = "TRF209"
)

// NewUnknownBase creates a TRF200 error
func NewUnknownBase(pos token.Position, typeName, base string) *CompilerError {
	return newError(
		ErrUnknownBase,
		"unknown_base",
		CategoryRegistration,
		SeverityError,
		fmt.Sprintf("Base '%s' of '%s' is not a reflected type", base, typeName),
		pos,
	).WithSuggestion(fmt.Sprintf("Add //tref:type to %s or declare %s with //tref:root", base, typeName))
}

// NewInvalidBase creates a TRF201 error
func NewInvalidBase(pos token.Position, typeName, base string) *CompilerError {
	return newError(
		ErrInvalidBase,
		"invalid_base",
		CategoryRegistration,
		SeverityError,
		fmt.Sprintf("invalid base class: '%s' does not embed '%s'", typeName, base),
		pos,
	).WithSuggestion(fmt.Sprintf("Embed %s in %s or remove base=%s", base, typeName, base))
}

// NewSubtypeWithoutBase creates a TRF202 error
func NewSubtypeWithoutBase(pos token.Position, typeName string) *CompilerError {
	return newError(
		ErrSubtypeWithoutBase,
		"subtype_without_base",
		CategoryRegistration,
		SeverityError,
		fmt.Sprintf("'%s' is marked subtype but has no reflected base", typeName),
		pos,
	).WithSuggestion("Embed the reflected base type, or use //tref:type")
}

// NewDuplicateName creates a TRF203 error
func NewDuplicateName(pos token.Position, typeName, name string, first token.Position) *CompilerError {
	return newError(
		ErrDuplicateName,
		"duplicate_name",
		CategoryRegistration,
		SeverityError,
		fmt.Sprintf("'%s' is registered twice on '%s'", name, typeName),
		pos,
	).WithExpected(fmt.Sprintf("a single registration (first at %s)", first)).
		WithSuggestion("Use name= to register the second one under another name")
}

// NewUnknownMember creates a TRF204 error
func NewUnknownMember(pos token.Position, typeName, member string) *CompilerError {
	return newError(
		ErrUnknownMember,
		"unknown_member",
		CategoryRegistration,
		SeverityError,
		fmt.Sprintf("'%s' has no field or method '%s'", typeName, member),
		pos,
	)
}

// NewInvalidEnum creates a TRF205 error
func NewInvalidEnum(pos token.Position, typeName, underlying string) *CompilerError {
	return newError(
		ErrInvalidEnum,
		"invalid_enum",
		CategoryRegistration,
		SeverityError,
		fmt.Sprintf("Enum '%s' must be declared on an integer type", typeName),
		pos,
	).WithActual(underlying).
		WithExpected("int, int8-int64, uint, uint8-uint64, uintptr, byte or rune")
}

// NewUnknownOwner creates a TRF206 error
func NewUnknownOwner(pos token.Position, name, owner string) *CompilerError {
	return newError(
		ErrUnknownOwner,
		"unknown_owner",
		CategoryRegistration,
		SeverityError,
		fmt.Sprintf("Static '%s' names owner '%s', which is not a reflected type in this package", name, owner),
		pos,
	)
}

// NewImportConflict creates a TRF207 error
func NewImportConflict(pos token.Position, name, path, other string) *CompilerError {
	return newError(
		ErrImportConflict,
		"import_conflict",
		CategoryRegistration,
		SeverityError,
		fmt.Sprintf("Import name '%s' refers to both %q and %q", name, path, other),
		pos,
	).WithSuggestion("Use the same import alias in every annotated file")
}

// NewReflectedTwice creates a TRF208 error
func NewReflectedTwice(pos token.Position, typeName string, first token.Position) *CompilerError {
	return newError(
		ErrReflectedTwice,
		"reflected_twice",
		CategoryRegistration,
		SeverityError,
		fmt.Sprintf("'%s' is already reflected at %s", typeName, first),
		pos,
	)
}

// NewUnknownPackage creates a TRF209 error
func NewUnknownPackage(pos token.Position, target string) *CompilerError {
	return newError(
		ErrUnknownPackage,
		"unknown_package",
		CategoryRegistration,
		SeverityError,
		fmt.Sprintf("The package of '%s' is not imported by this file", target),
		pos,
	).WithSuggestion("Import the package in the file that declares the registrar")
}
