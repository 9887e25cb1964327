package ui

import (
	"bytes"
	"go/token"
	"strings"
	"testing"

	cerrors "github.com/conduit-lang/tref/internal/compiler/errors"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
		excludes []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "type not found",
				Problem: "No reflected type named 'Shap'.",
			},
			contains: []string{"❌", "TYPE NOT FOUND", "No reflected type named 'Shap'."},
			excludes: []string{"Did you mean"},
		},
		{
			name: "suggestions",
			opts: ErrorOptions{
				Problem:     "unknown",
				Suggestions: []string{"Shape", "Shapes"},
			},
			contains: []string{"Did you mean: Shape, Shapes?"},
		},
		{
			name: "help commands",
			opts: ErrorOptions{
				Problem:      "failed",
				HelpCommands: []string{"Get help: tref generate --help"},
			},
			contains: []string{"→ Get help: tref generate --help"},
		},
		{
			name:     "warning",
			opts:     ErrorOptions{Level: ErrorLevelWarning, Problem: "careful"},
			contains: []string{"⚠️ careful"},
		},
		{
			name:     "info with consequence",
			opts:     ErrorOptions{Level: ErrorLevelInfo, Problem: "note", Consequence: "nothing changed"},
			contains: []string{"ℹ️ note", "   nothing changed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			out := FormatError(tt.opts)
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in output:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(out, unwanted) {
					t.Errorf("did not expect %q in output:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestTypeNotFoundError(t *testing.T) {
	out := TypeNotFoundError("Shap", "./shapes", []string{"Shape", "Circle", "Square"}, true)

	for _, want := range []string{
		"TYPE NOT FOUND",
		"'Shap' in ./shapes",
		"Did you mean: Shape?",
		"tref inspect ./shapes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestGenerateAndConfigErrors(t *testing.T) {
	out := GenerateError(1, 3, true)
	if !strings.Contains(out, "1 of 3 package(s)") || !strings.Contains(out, "tref generate --json") {
		t.Errorf("unexpected generate error:\n%s", out)
	}

	out = ConfigError("generate.jobs must be at least 1", true)
	if !strings.Contains(out, "CONFIGURATION ERROR") || !strings.Contains(out, "tref.yaml") {
		t.Errorf("unexpected config error:\n%s", out)
	}
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "3 packages generated", true)
	if buf.String() != "✓ 3 packages generated\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	pos := token.Position{Filename: "shapes.go", Line: 3, Column: 1}
	diags := cerrors.ErrorList{
		cerrors.NewSubtypeWithoutBase(pos, "Lone"),
	}

	WriteDiagnostics(&buf, diags, true)
	out := buf.String()
	if !strings.Contains(out, string(cerrors.ErrSubtypeWithoutBase)) {
		t.Errorf("expected diagnostic code in output:\n%s", out)
	}
	if !strings.HasSuffix(out, "1 error(s), 0 warning(s)\n") {
		t.Errorf("expected count line, got:\n%s", out)
	}

	buf.Reset()
	WriteDiagnostics(&buf, nil, true)
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty list, got %q", buf.String())
	}
}
