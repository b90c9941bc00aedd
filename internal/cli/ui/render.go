package ui

import (
	"fmt"
	"io"

	"github.com/covenant-lang/covenant/internal/compiler/checker"
	"github.com/covenant-lang/covenant/internal/compiler/hasher"
)

// RenderVerificationResults prints one row per finding: severity, code,
// contract, and message. Used by `covenant check` and `covenant
// verify-batch` for their default (non-JSON) report.
func RenderVerificationResults(w io.Writer, results []checker.VerificationResult, noColor bool) {
	table := NewTable(w, []string{"SEVERITY", "CODE", "CONTRACT", "LOCATION", "MESSAGE"}, &TableOptions{NoColor: noColor})
	for _, r := range results {
		loc := fmt.Sprintf("%s:%d", r.File, r.Line)
		table.AddRow(r.Severity.String(), r.Code, r.ContractName, loc, r.Message)
	}
	table.Render()
}

// RenderIntentComparison prints a hash comparison as a key-value table
// showing whether intent and behavior changed and whether that is drift.
func RenderIntentComparison(w io.Writer, cmp hasher.IntentHashComparison, noColor bool) {
	kv := NewKeyValueTable(w, noColor)
	kv.AddRow("contract", cmp.ContractName)
	kv.AddRow("intent changed", fmt.Sprintf("%t", cmp.IntentChanged))
	kv.AddRow("behavior changed", fmt.Sprintf("%t", cmp.BehaviorChanged))
	kv.AddRow("drift", fmt.Sprintf("%t", cmp.IsDrift()))
	kv.AddRow("consistent", fmt.Sprintf("%t", cmp.IsConsistent()))
	kv.Render()
}

// SuggestCapability finds the closest known capability path to an
// unrecognized one, e.g. suggesting "payments.refunds" for a typo'd
// "payments.refund". Returns "" when nothing is close enough to guess.
func SuggestCapability(unknown string, known []string) string {
	return FindBestMatch(unknown, known, &FuzzyMatchOptions{MaxDistance: 3, MaxSuggestions: 1})
}

// SuggestContractName finds the closest declared contract name to one
// referenced (e.g. in a CLI argument or a call expression) but not
// found, so the CLI can offer a "did you mean" hint.
func SuggestContractName(unknown string, known []string) string {
	return FindBestMatch(unknown, known, &FuzzyMatchOptions{MaxDistance: 4, MaxSuggestions: 1})
}
