package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	cerrors "github.com/conduit-lang/tref/internal/compiler/errors"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

func palette(level ErrorLevel, noColor bool) (header, body *color.Color, symbol string) {
	switch level {
	case ErrorLevelWarning:
		header, body, symbol = color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "⚠️"
	case ErrorLevelInfo:
		header, body, symbol = color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "ℹ️"
	default:
		header, body, symbol = color.New(color.FgRed, color.Bold), color.New(color.FgRed), "❌"
	}
	if noColor {
		header.DisableColor()
		body.DisableColor()
	}
	return header, body, symbol
}

// FormatError renders a message with optional suggestions and help commands.
//
//	❌ TYPE NOT FOUND: Shap
//	   No reflected type named 'Shap' in ./shapes.
//
//	   Did you mean: Shape?
//
//	   → List reflected types: tref inspect ./shapes
func FormatError(opts ErrorOptions) string {
	var b strings.Builder
	header, body, symbol := palette(opts.Level, opts.NoColor)

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
		body.Fprintf(&b, "   %s\n", opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		body.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// TypeNotFoundError reports an unknown type name given to tref inspect.
// Close matches among known are offered as suggestions.
func TypeNotFoundError(name, dir string, known []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "TYPE NOT FOUND",
		Problem:     fmt.Sprintf("No reflected type named '%s' in %s.", name, dir),
		Suggestions: FindSimilar(name, known, nil),
		HelpCommands: []string{
			"List reflected types: tref inspect " + dir,
			"Get help: tref inspect --help",
		},
		NoColor: noColor,
	})
}

// GenerateError summarizes a failed tref generate run.
func GenerateError(failed, total int, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "GENERATE FAILED",
		Problem:     fmt.Sprintf("%d of %d package(s) could not be generated.", failed, total),
		Consequence: "Existing generated files in those packages were left untouched.",
		HelpCommands: []string{
			"Machine-readable diagnostics: tref generate --json",
			"Get help: tref generate --help",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat tref.yaml",
			"Recreate it: tref init --force",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelInfo, Problem: message, NoColor: noColor})
}

// WriteDiagnostics prints generator diagnostics, colored by severity, followed
// by a count line.
func WriteDiagnostics(w io.Writer, diags cerrors.ErrorList, noColor bool) {
	if len(diags) == 0 {
		return
	}
	for _, d := range diags {
		level := ErrorLevelError
		switch d.Severity {
		case cerrors.SeverityWarning:
			level = ErrorLevelWarning
		case cerrors.SeverityInfo:
			level = ErrorLevelInfo
		}
		_, body, _ := palette(level, noColor)
		body.Fprint(w, d.Format())
		fmt.Fprintln(w)
	}
	errs, warns, _ := diags.ErrorCount()
	fmt.Fprintf(w, "%d error(s), %d warning(s)\n", errs, warns)
}
