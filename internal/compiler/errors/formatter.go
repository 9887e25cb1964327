package errors

import (
	"fmt"
	"strings"
)

// FormatError returns a human-readable error message for terminal output
func FormatError(e *CompilerError) string {
	var b strings.Builder

	file := e.File
	if file == "" {
		file = "<source>"
	}

	fmt.Fprintf(&b, "%s %s [%s] in %s:%d:%d\n",
		severityIcon(e.Severity), categoryDisplayName(e.Category), e.Code,
		file, e.Location.Line, e.Location.Column)

	if e.Context != nil && len(e.Context.SourceLines) > 0 {
		for i, line := range e.Context.SourceLines {
			lineNum := e.Location.Line - 1 + i
			if i == 1 {
				fmt.Fprintf(&b, "%s  %s <- %s\n", formatLineNumber(lineNum), line, e.Message)
			} else {
				fmt.Fprintf(&b, "%s  %s\n", formatLineNumber(lineNum), line)
			}
		}
	} else {
		fmt.Fprintf(&b, "  %s\n", e.Message)
	}

	if e.Expected != "" || e.Actual != "" {
		b.WriteString("\n")
		if e.Expected != "" {
			fmt.Fprintf(&b, "  Expected: %s\n", e.Expected)
		}
		if e.Actual != "" {
			fmt.Fprintf(&b, "  Actual:   %s\n", e.Actual)
		}
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  hint: %s\n", e.Suggestion)
	}

	if len(e.Examples) > 0 {
		b.WriteString("\n  e.g.\n")
		for _, example := range e.Examples {
			fmt.Fprintf(&b, "    %s\n", example)
		}
	}

	return b.String()
}

// FormatCompact returns a compact one-line error format, as used by go vet
func FormatCompact(e *CompilerError) string {
	file := e.File
	if file == "" {
		file = "<source>"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]",
		file, e.Location.Line, e.Location.Column,
		e.Severity, e.Message, e.Code)
}

func severityIcon(severity ErrorSeverity) string {
	switch severity {
	case SeverityError:
		return "✗"
	case SeverityWarning:
		return "!"
	default:
		return "i"
	}
}

func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategoryDirective:
		return "Directive Error"
	case CategoryRegistration:
		return "Registration Error"
	case CategoryCodeGen:
		return "Code Generation Error"
	default:
		return "Error"
	}
}

func formatLineNumber(lineNum int) string {
	return fmt.Sprintf("%3d |", lineNum)
}
