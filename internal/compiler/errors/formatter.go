package errors

import (
	"fmt"
	"strings"
)

// FormatCompact renders a diagnostic as a single line in the
// conventional "file:line:col: severity: message [code]" form used by
// editors and CI log parsers.
func FormatCompact(d Diagnostic) string {
	file := d.Location.File
	if file == "" {
		file = "<source>"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]",
		file, d.Location.Line, d.Location.Column, d.Severity, d.Message, d.Code)
}

// FormatHuman renders a diagnostic as a multi-line block for the
// default terminal report: a header line, the contract it concerns (if
// any), and a suggestion (if any).
func FormatHuman(d Diagnostic) string {
	var b strings.Builder

	file := d.Location.File
	if file == "" {
		file = "<source>"
	}

	fmt.Fprintf(&b, "%s %s\n", severityLabel(d.Severity), d.Code)
	fmt.Fprintf(&b, "  --> %s:%d:%d\n", file, d.Location.Line, d.Location.Column)
	if d.ContractName != "" {
		fmt.Fprintf(&b, "  contract '%s'\n", d.ContractName)
	}
	fmt.Fprintf(&b, "  %s\n", d.Message)
	if d.Suggestion != "" {
		fmt.Fprintf(&b, "  suggestion: %s\n", d.Suggestion)
	}

	return b.String()
}

// FormatList renders a full diagnostic list as a human-readable report
// with a summary header, in the order the diagnostics were produced.
func FormatList(dl DiagnosticList) string {
	if len(dl) == 0 {
		return "no diagnostics\n"
	}

	var b strings.Builder
	errs, warnings, infos := dl.Counts()
	fmt.Fprintf(&b, "%d error(s), %d warning(s), %d info\n\n", errs, warnings, infos)

	for i, d := range dl {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatHuman(d))
	}

	return b.String()
}

func severityLabel(s Severity) string {
	switch s {
	case SeverityError:
		return "error:"
	case SeverityWarning:
		return "warning:"
	case SeverityInfo:
		return "info:"
	default:
		return "unknown:"
	}
}
