package errors

import (
	"fmt"
	"go/token"
)

// Code generation error codes (TRF600-699)
const (
	// ErrCodeGenFailed indicates a general code generation failure
	ErrCodeGenFailed ErrorCode = "TRF600"
)

// NewCodeGenFailed creates a TRF600 error
func NewCodeGenFailed(pos token.Position, reason string) *CompilerError {
	return newError(
		ErrCodeGenFailed,
		"codegen_failed",
		CategoryCodeGen,
		SeverityError,
		fmt.Sprintf("Code generation failed: %s", reason),
		pos,
	).WithSuggestion("Check that every metadata expression and signature is valid Go")
}
