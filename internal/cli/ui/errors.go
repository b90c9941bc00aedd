package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	compilererrors "github.com/covenant-lang/covenant/internal/compiler/errors"
)

// ErrorLevel represents the severity of a rendered message.
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

// FormatError creates a standardized, color-coded message with an
// optional suggestion and help-command trailer.
//
// Example output, for Context "E001", a Problem, one suggestion and one
// help command (when Context is set, the Problem is printed both in the
// header and on the line below it):
//
//	❌ E001: body mutates 'account.flag' but it is not declared
//	   body mutates 'account.flag' but it is not declared
//
//	   Did you mean: modifies [account.flag]?
//
//	   → Run 'covenant check withdraw.cov' for the full report
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelError:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	}

	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Problem != "" && opts.Context != "" {
		bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
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

// Warning creates a standardized warning message
func Warning(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelWarning,
		Problem:     message,
		Suggestions: suggestions,
		NoColor:     noColor,
	})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}

// RenderDiagnostic renders a single compiler diagnostic through the
// same colored-terminal machinery as FormatError. The CLI subcommands
// do not call it; their default (non-JSON) output goes through
// RenderVerificationResults.
func RenderDiagnostic(d compilererrors.Diagnostic, noColor bool) string {
	level := levelForSeverity(d.Severity)

	context := d.Code
	if d.ContractName != "" {
		context = fmt.Sprintf("%s in contract '%s'", d.Code, d.ContractName)
	}

	var suggestions []string
	if d.Suggestion != "" {
		suggestions = []string{d.Suggestion}
	}

	return FormatError(ErrorOptions{
		Level:       level,
		Context:     context,
		Problem:     fmt.Sprintf("%s:%d:%d: %s", d.Location.File, d.Location.Line, d.Location.Column, d.Message),
		Suggestions: suggestions,
		NoColor:     noColor,
	})
}

// RenderDiagnostics renders a full diagnostic list, one block per
// finding, in the order produced.
func RenderDiagnostics(dl compilererrors.DiagnosticList, noColor bool) string {
	var b strings.Builder
	for _, d := range dl {
		b.WriteString(RenderDiagnostic(d, noColor))
	}
	return b.String()
}

func levelForSeverity(s compilererrors.Severity) ErrorLevel {
	switch s {
	case compilererrors.SeverityError:
		return ErrorLevelError
	case compilererrors.SeverityInfo:
		return ErrorLevelInfo
	default:
		return ErrorLevelWarning
	}
}
