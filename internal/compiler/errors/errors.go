// Package errors provides structured diagnostics for the tref generator.
// It defines error codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON (tref generate --json).
package errors

import (
	"fmt"
	"go/token"
)

// ErrorCode represents a unique diagnostic code
type ErrorCode string

// ErrorCategory represents the category of a diagnostic
type ErrorCategory string

const (
	// CategoryDirective represents malformed or misplaced directives (TRF100-199)
	CategoryDirective ErrorCategory = "directive"
	// CategoryRegistration represents invalid type or member registrations (TRF200-299)
	CategoryRegistration ErrorCategory = "registration"
	// CategoryCodeGen represents code generation errors (TRF600-699)
	CategoryCodeGen ErrorCategory = "codegen"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError indicates an error that prevents generation
	SeverityError ErrorSeverity = "error"
	// SeverityWarning indicates a directive that was ignored
	SeverityWarning ErrorSeverity = "warning"
	// SeverityInfo indicates informational messages
	SeverityInfo ErrorSeverity = "info"
)

// Location is a position in a Go source file.
type Location struct {
	Line   int `json:"line"`   // 1-indexed
	Column int `json:"column"` // 1-indexed
}

// LocationOf converts a token position.
func LocationOf(pos token.Position) Location {
	return Location{Line: pos.Line, Column: pos.Column}
}

// ErrorContext provides source code context for an error
type ErrorContext struct {
	// Current is the line of code where the error occurred
	Current string `json:"current"`
	// SourceLines is a snippet of source code (before, error line, after)
	SourceLines []string `json:"source_lines"`
}

// CompilerError is a structured generator diagnostic
type CompilerError struct {
	// Code is the unique error code (e.g., "TRF201")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type     string        `json:"type"`
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Location Location      `json:"location"`
	// File is the source file name (optional)
	File    string        `json:"file,omitempty"`
	Context *ErrorContext `json:"context,omitempty"`
	// Expected describes what was expected (optional)
	Expected string `json:"expected,omitempty"`
	// Actual describes what was actually found (optional)
	Actual string `json:"actual,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string   `json:"suggestion,omitempty"`
	Examples   []string `json:"examples,omitempty"`
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	return FormatCompact(e)
}

// Format returns a human-readable error message for terminal output
func (e *CompilerError) Format() string {
	return FormatError(e)
}

// At sets the file and position of the error
func (e *CompilerError) At(pos token.Position) *CompilerError {
	e.File = pos.Filename
	e.Location = LocationOf(pos)
	return e
}

// WithContext sets the source code context for the error
func (e *CompilerError) WithContext(current string, sourceLines []string) *CompilerError {
	e.Context = &ErrorContext{
		Current:     current,
		SourceLines: sourceLines,
	}
	return e
}

// WithExpected sets the expected value for the error
func (e *CompilerError) WithExpected(expected string) *CompilerError {
	e.Expected = expected
	return e
}

// WithActual sets the actual value for the error
func (e *CompilerError) WithActual(actual string) *CompilerError {
	e.Actual = actual
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

// WithExamples sets example fixes for the error
func (e *CompilerError) WithExamples(examples ...string) *CompilerError {
	e.Examples = examples
	return e
}

// ErrorList is a collection of diagnostics
type ErrorList []*CompilerError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", el[0].Error(), len(el)-1)
}

// HasErrors returns true if the list contains any errors (excludes warnings/info)
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Codes returns the codes in list order
func (el ErrorList) Codes() []ErrorCode {
	codes := make([]ErrorCode, len(el))
	for i, err := range el {
		codes[i] = err.Code
	}
	return codes
}

// ErrorCount returns the number of errors by severity
func (el ErrorList) ErrorCount() (errors, warnings, info int) {
	for _, err := range el {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			info++
		}
	}
	return
}

// newError creates a new CompilerError with the given parameters
func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	severity ErrorSeverity,
	message string,
	pos token.Position,
) *CompilerError {
	return (&CompilerError{
		Code:     code,
		Type:     typ,
		Category: category,
		Severity: severity,
		Message:  message,
	}).At(pos)
}
