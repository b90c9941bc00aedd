// Package errors provides a structured diagnostic envelope into which
// findings from any stage of the Covenant pipeline — lexing, parsing,
// and the Intent Verification Engine — can be normalized for a single
// consistent report. The lexer, parser and checker return their own
// types (LexError, ParseError, VerificationResult) and do not build
// Diagnostics themselves, and the CLI subcommands do not render them.
package errors

import (
	"encoding/json"
	"fmt"

	"github.com/covenant-lang/covenant/internal/compiler/ast"
)

// Severity indicates how serious a diagnostic is.
type Severity string

const (
	// SeverityError indicates a finding that should fail the run (a
	// syntax error, or a verification finding at Error/Critical level).
	SeverityError Severity = "error"
	// SeverityWarning indicates a finding worth surfacing but that does
	// not, by itself, fail the run.
	SeverityWarning Severity = "warning"
	// SeverityInfo indicates a purely informational finding.
	SeverityInfo Severity = "info"
)

// Diagnostic is a single structured finding: a syntax error from the
// lexer/parser, or a verification result from the checker, normalized
// into one shape for rendering and JSON export.
type Diagnostic struct {
	// Severity classifies how serious the diagnostic is.
	Severity Severity `json:"severity"`
	// Code is a short machine-readable identifier, e.g. "E001" or
	// "PARSE".
	Code string `json:"code"`
	// Message is the primary diagnostic text.
	Message string `json:"message"`
	// Location is where in the source the diagnostic applies.
	Location ast.SourceLocation `json:"location"`
	// ContractName names the contract the diagnostic concerns, if any.
	ContractName string `json:"contract_name,omitempty"`
	// Suggestion is an optional hint for how to fix the finding.
	Suggestion string `json:"suggestion,omitempty"`
}

// Error implements the error interface so a Diagnostic can be returned
// anywhere a plain error is expected.
func (d Diagnostic) Error() string {
	return FormatCompact(d)
}

// DiagnosticList is a collection of diagnostics produced by a single
// run over one source file.
type DiagnosticList []Diagnostic

// HasErrors reports whether any diagnostic in the list is at Error
// severity.
func (dl DiagnosticList) HasErrors() bool {
	for _, d := range dl {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Counts returns the number of diagnostics at each severity.
func (dl DiagnosticList) Counts() (errs, warnings, infos int) {
	for _, d := range dl {
		switch d.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			infos++
		}
	}
	return
}

// ToJSON renders the list as an indented JSON array.
func (dl DiagnosticList) ToJSON() (string, error) {
	b, err := json.MarshalIndent(dl, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling diagnostics: %w", err)
	}
	return string(b), nil
}

// New constructs a Diagnostic, the entry point used by callers that
// already have a located finding (a ParseError or a
// checker.VerificationResult) and just need it normalized.
func New(severity Severity, code, message string, loc ast.SourceLocation) Diagnostic {
	return Diagnostic{Severity: severity, Code: code, Message: message, Location: loc}
}

// WithSuggestion returns a copy of the diagnostic carrying a fix hint.
func (d Diagnostic) WithSuggestion(suggestion string) Diagnostic {
	d.Suggestion = suggestion
	return d
}

// WithContract returns a copy of the diagnostic naming the contract it
// concerns.
func (d Diagnostic) WithContract(name string) Diagnostic {
	d.ContractName = name
	return d
}
