package errors

import (
	"fmt"
	"go/token"
)

// Directive error codes (TRF100-199)
const (
	// ErrMalformedDirective indicates a directive that cannot be tokenized
	ErrMalformedDirective ErrorCode = "TRF100"
	// ErrUnknownVerb indicates an unknown //tref: verb
	ErrUnknownVerb ErrorCode = "TRF101"
	// ErrInvalidMetaExpr indicates a meta= value that is not a Go expression
	ErrInvalidMetaExpr ErrorCode = "TRF102"
	// ErrMisplacedDirective indicates a directive attached to the wrong declaration
	ErrMisplacedDirective ErrorCode = "TRF103"
)

// NewMalformedDirective creates a TRF100 error
func NewMalformedDirective(pos token.Position, raw, reason string) *CompilerError {
	return newError(
		ErrMalformedDirective,
		"malformed_directive",
		CategoryDirective,
		SeverityError,
		fmt.Sprintf("Malformed directive: %s", reason),
		pos,
	).WithActual(raw).
		WithSuggestion("Parenthesize metadata expressions that contain spaces: meta=(a + b)")
}

// NewUnknownVerb creates a TRF101 error
func NewUnknownVerb(pos token.Position, raw, verb string) *CompilerError {
	return newError(
		ErrUnknownVerb,
		"unknown_verb",
		CategoryDirective,
		SeverityError,
		fmt.Sprintf("Unknown directive verb '%s'", verb),
		pos,
	).WithActual(raw).
		WithExpected("type, root, subtype, external, field, method, static, membertype, enum, item, instantiate")
}

// NewInvalidMetaExpr creates a TRF102 error
func NewInvalidMetaExpr(pos token.Position, expr string, cause error) *CompilerError {
	return newError(
		ErrInvalidMetaExpr,
		"invalid_meta_expr",
		CategoryDirective,
		SeverityError,
		fmt.Sprintf("Metadata '%s' is not a Go expression: %v", expr, cause),
		pos,
	).WithExamples(`meta="label"`, "meta=Range{Min: 0, Max: 10}", "meta=(1 << 3)")
}

// NewMisplacedDirective creates a TRF103 error
func NewMisplacedDirective(pos token.Position, verb, where string) *CompilerError {
	return newError(
		ErrMisplacedDirective,
		"misplaced_directive",
		CategoryDirective,
		SeverityError,
		fmt.Sprintf("Directive '%s' cannot be used on %s", verb, where),
		pos,
	)
}
