package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/covenant-lang/covenant/internal/compiler/ast"
	compilererrors "github.com/covenant-lang/covenant/internal/compiler/errors"
)

func loc(file string, line, column int) ast.SourceLocation {
	return ast.SourceLocation{File: file, Line: line, Column: column}
}

func TestFormatError(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "E001",
				Problem: "body mutates 'account.flag' but it is not declared",
			},
			contains: []string{
				"❌",
				"E001",
				"body mutates 'account.flag' but it is not declared",
			},
		},
		{
			name: "error with suggestions",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Context:     "E001",
				Problem:     "body mutates 'account.flag' but it is not declared",
				Suggestions: []string{"modifies [account.flag]"},
			},
			contains: []string{
				"Did you mean: modifies [account.flag]?",
			},
		},
		{
			name: "error with help commands",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "PARSE",
				Problem: "unexpected token",
				HelpCommands: []string{
					"Run: covenant parse withdraw.cov",
				},
			},
			contains: []string{
				"→ Run: covenant parse withdraw.cov",
			},
		},
		{
			name: "warning message",
			opts: ErrorOptions{
				Level:   ErrorLevelWarning,
				Problem: "no precondition declared",
			},
			contains: []string{
				"⚠️",
				"no precondition declared",
			},
		},
		{
			name: "info message",
			opts: ErrorOptions{
				Level:   ErrorLevelInfo,
				Problem: "contract contains recursive self-calls",
			},
			contains: []string{
				"ℹ️",
				"contract contains recursive self-calls",
			},
		},
		{
			name: "error with consequence",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Context:     "E002",
				Problem:     "touches_nothing_else violated",
				Consequence: "the contract's isolation guarantee no longer holds",
			},
			contains: []string{
				"touches_nothing_else violated",
				"the contract's isolation guarantee no longer holds",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatError(tt.opts)

			for _, expected := range tt.contains {
				assert.Contains(t, result, expected)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "TEST ERROR",
		Problem: "This is a test",
	}

	WriteError(&buf, opts)

	assert.Contains(t, buf.String(), "TEST ERROR")
}

func TestFormatSuccess(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := FormatSuccess("Build completed", true)

	assert.Contains(t, result, "✓")
	assert.Contains(t, result, "Build completed")
}

func TestWriteSuccess(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	WriteSuccess(&buf, "Test success", true)

	output := buf.String()
	assert.Contains(t, output, "✓")
	assert.Contains(t, output, "Test success")
}

func TestWarning(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := Warning("Deprecated capability syntax", []string{"Use dotted capability paths"}, true)

	expected := []string{
		"⚠️",
		"Deprecated capability syntax",
		"Did you mean: Use dotted capability paths?",
	}

	for _, exp := range expected {
		assert.Contains(t, result, exp)
	}
}

func TestInfo(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := Info("verification starting", true)

	expected := []string{
		"ℹ️",
		"verification starting",
	}

	for _, exp := range expected {
		assert.Contains(t, result, exp)
	}
}

func TestRenderDiagnostic(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	d := compilererrors.New(
		compilererrors.SeverityError,
		"E001",
		"body mutates 'account.flag' but it is not declared",
		loc("withdraw.cov", 12, 5),
	).WithContract("withdraw").WithSuggestion("add 'modifies [account.flag]' to the effects block")

	result := RenderDiagnostic(d, true)

	expected := []string{
		"❌",
		"E001",
		"withdraw",
		"withdraw.cov:12:5",
		"body mutates 'account.flag' but it is not declared",
		"add 'modifies [account.flag]' to the effects block",
	}
	for _, exp := range expected {
		assert.Contains(t, result, exp)
	}
}

func TestRenderDiagnostics_RendersEachEntry(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	dl := compilererrors.DiagnosticList{
		compilererrors.New(compilererrors.SeverityError, "E001", "first finding", loc("a.cov", 1, 1)),
		compilererrors.New(compilererrors.SeverityWarning, "W003", "second finding", loc("a.cov", 2, 1)),
	}

	result := RenderDiagnostics(dl, true)
	assert.Contains(t, result, "first finding")
	assert.Contains(t, result, "second finding")
}
