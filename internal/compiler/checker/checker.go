// Package checker implements the intent-behavior consistency checker.
//
// It compares a contract's behavioral fingerprint (what the code
// actually does) against what it declares — effects, preconditions,
// postconditions, and the file header's required capabilities and risk
// level — and produces structured VerificationResults with severity
// levels.
//
// Checks performed:
//  1. Effect Completeness — every mutation in the body matches the
//     effects modifies declaration
//  2. Effect Soundness — every declared modifies effect actually
//     occurs in the body
//  3. Emit Completeness — every emitted event matches an emits
//     declaration
//  4. Emit Soundness — every declared emits effect actually occurs in
//     the body
//  5. touches_nothing_else — no undeclared mutations or calls exist
//  6. Precondition Relevance — preconditions reference state used in
//     the body
//  7. Postcondition Achievability — old() references in postconditions
//     reference state the body actually modifies
//  8. Intent Scope — the body doesn't check capabilities beyond what
//     the file header requires
//  9. Structural completeness — body, precondition, postcondition, and
//     effects are all present
package checker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/covenant-lang/covenant/internal/compiler/ast"
	"github.com/covenant-lang/covenant/internal/compiler/fingerprint"
)

// Severity classifies how serious a verification finding is.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Critical
)

// String returns the upper-case name used in diagnostic output.
func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// VerificationResult is a single finding from the intent verification
// engine.
type VerificationResult struct {
	Severity     Severity
	Code         string // machine-readable code, e.g. "E001"
	Message      string
	ContractName string
	File         string
	Line         int
}

// String formats the result as "[SEV] CODE: file:line: contract 'name': message".
func (r VerificationResult) String() string {
	loc := ""
	if r.File != "" {
		loc = fmt.Sprintf("%s:%d", r.File, r.Line)
	}
	return fmt.Sprintf("[%s] %s: %s: contract '%s': %s", r.Severity, r.Code, loc, r.ContractName, r.Message)
}

// Verification codes.
//
// E001 — Undeclared mutation (effect completeness)
// E002 — touches_nothing_else violated by mutation
// E003 — touches_nothing_else violated by external call
// E004 — Missing body
// E005 — Undeclared event emission
// W001 — Declared effect not observed in body (effect soundness)
// W002 — Declared emits not observed in body (emit soundness)
// W003 — Missing precondition
// W004 — Missing postcondition
// W005 — Missing effects declaration
// W006 — Precondition references state not used in body
// W007 — Postcondition uses old() for state not modified
// W008 — Capability used beyond declared requires scope
// I001 — Contract has recursion
// I002 — Contract has high nesting depth

// VerifyContract runs all consistency checks on a single contract. If
// fp is nil it is computed from the contract. declaredCapabilities and
// riskLevel normally come from the enclosing file's header.
func VerifyContract(
	contract *ast.ContractDef,
	fp *fingerprint.BehavioralFingerprint,
	file string,
	declaredCapabilities []string,
	riskLevel ast.RiskLevel,
) []VerificationResult {
	if fp == nil {
		fp = fingerprint.FingerprintContract(contract)
	}

	var results []VerificationResult
	line := contract.Loc.Line
	name := contract.Name

	add := func(sev Severity, code, message string) {
		results = append(results, VerificationResult{
			Severity: sev, Code: code, Message: message,
			ContractName: name, File: file, Line: line,
		})
	}

	// -- Structural completeness ----------------------------------------

	if contract.Body == nil {
		add(Error, "E004", "contract has no body")
		return results // can't check further without a body
	}

	highRisk := riskLevel == ast.RiskHigh || riskLevel == ast.RiskCritical

	if contract.Precondition == nil {
		sev := Warning
		if highRisk {
			sev = Error
		}
		add(sev, "W003", "no precondition — every contract should declare what must be true before execution")
	}

	if contract.Postcondition == nil {
		sev := Warning
		if highRisk {
			sev = Error
		}
		add(sev, "W004", "no postcondition — every contract should declare what will be true after execution")
	}

	if contract.Effects == nil {
		sev := Warning
		if highRisk {
			sev = Error
		}
		add(sev, "W005", "no effects declaration — every contract must declare its side effects")
	}

	declaredModifies := extractDeclaredModifies(contract.Effects)
	declaredReads := extractDeclaredReads(contract.Effects)
	declaredEmits := extractDeclaredEmits(contract.Effects)
	hasTouchesNothing := hasTouchesNothingElse(contract.Effects)

	// -- Effect Completeness (E001/E002) ---------------------------------

	for _, mutation := range sortedSet(fp.Mutations) {
		if !isCoveredBy(mutation, declaredModifies) {
			if hasTouchesNothing {
				add(Error, "E002", fmt.Sprintf(
					"touches_nothing_else violated: body mutates '%s' which is not in the modifies declaration", mutation))
			} else {
				add(Warning, "E001", fmt.Sprintf(
					"body mutates '%s' but it is not listed in the effects modifies declaration", mutation))
			}
		}
	}

	// -- Effect Soundness (W001) ------------------------------------------

	for _, declared := range sortedBoolSet(declaredModifies) {
		if !isObservedIn(declared, fp.Mutations) {
			add(Warning, "W001", fmt.Sprintf(
				"effects declares modifies '%s' but the body does not appear to mutate it", declared))
		}
	}

	// -- Emit Completeness (E005) -----------------------------------------

	for _, event := range sortedSet(fp.EmittedEvents) {
		if !declaredEmits[event] {
			sev := Warning
			if hasTouchesNothing {
				sev = Error
			}
			add(sev, "E005", fmt.Sprintf(
				"body emits '%s' but it is not declared in the effects block", event))
		}
	}

	// -- Emit Soundness (W002) --------------------------------------------

	for _, declaredEvent := range sortedBoolSet(declaredEmits) {
		if _, ok := fp.EmittedEvents[declaredEvent]; !ok {
			add(Warning, "W002", fmt.Sprintf(
				"effects declares emits '%s' but the body does not emit it", declaredEvent))
		}
	}

	// -- touches_nothing_else (E003) --------------------------------------

	if hasTouchesNothing {
		allowedCallPrefixes := make(map[string]bool)
		for m := range declaredModifies {
			allowedCallPrefixes[rootOf(m)] = true
		}
		for r := range declaredReads {
			allowedCallPrefixes[rootOf(r)] = true
		}
		for _, param := range contract.Params {
			allowedCallPrefixes[param.Name] = true
		}
		for _, cap := range declaredCapabilities {
			allowedCallPrefixes[rootOf(cap)] = true
		}

		for _, call := range sortedSet(fp.Calls) {
			root := rootOf(call)
			if allowedCallPrefixes[root] {
				continue
			}
			if root != "" && isUpper(root[0]) {
				continue // constructor/type call
			}
			if _, ok := fp.Mutations[root]; ok {
				continue // locally assigned
			}
			add(Error, "E003", fmt.Sprintf(
				"touches_nothing_else violated: body calls '%s' which is not covered by declared effects or parameters", call))
		}
	}

	// -- Precondition Relevance (W006) ------------------------------------

	if contract.Precondition != nil {
		paramNames := make(map[string]bool)
		for _, p := range contract.Params {
			paramNames[p.Name] = true
		}
		precondFp := fingerprint.FingerprintExpressions(contract.Precondition.Conditions)

		bodyRoots := make(map[string]bool)
		for r := range fp.Reads {
			bodyRoots[rootOf(r)] = true
		}
		for m := range fp.Mutations {
			bodyRoots[rootOf(m)] = true
		}

		for _, read := range sortedSet(precondFp.Reads) {
			root := rootOf(read)
			if root != "" && isUpper(root[0]) {
				continue // type/constructor reference
			}
			if !paramNames[root] && !bodyRoots[root] {
				add(Warning, "W006", fmt.Sprintf(
					"precondition references '%s' which is not a parameter and not used in the body", read))
			}
		}
	}

	// -- Postcondition Achievability (W007) -------------------------------

	if contract.Postcondition != nil {
		postcondFp := fingerprint.FingerprintExpressions(contract.Postcondition.Conditions)
		for _, oldRef := range sortedSet(postcondFp.OldReferences) {
			if !isMutationCovered(oldRef, fp.Mutations) {
				add(Warning, "W007", fmt.Sprintf(
					"postcondition uses old(%s) but the body does not appear to modify '%s'", oldRef, oldRef))
			}
		}
	}

	// -- Intent Scope (W008) -----------------------------------------------

	if len(declaredCapabilities) > 0 {
		capRoots := make(map[string]bool)
		for _, cap := range declaredCapabilities {
			capRoots[rootOf(cap)] = true
		}
		paramNames := make(map[string]bool)
		for _, p := range contract.Params {
			paramNames[p.Name] = true
		}

		for _, check := range sortedSet(fp.CapabilityChecks) {
			parts := strings.SplitN(check, " has ", 2)
			if len(parts) != 2 {
				continue
			}
			capPath := parts[1]
			capRoot := rootOf(capPath)
			if !capRoots[capRoot] && !paramNames[capRoot] {
				add(Warning, "W008", fmt.Sprintf(
					"body checks capability '%s' but the file header only requires: %s",
					capPath, strings.Join(declaredCapabilities, ", ")))
			}
		}
	}

	// -- Informational -------------------------------------------------------

	if fp.HasRecursion {
		add(Info, "I001", "contract contains recursive self-calls")
	}

	if fp.MaxNestingDepth >= 4 {
		add(Info, "I002", fmt.Sprintf(
			"contract has nesting depth %d — consider simplifying for auditability", fp.MaxNestingDepth))
	}

	return results
}

// VerifyProgram runs verification over every contract in a program,
// threading the file header's risk level and required capabilities
// through to each contract.
func VerifyProgram(program *ast.Program, file string) []VerificationResult {
	var results []VerificationResult

	riskLevel := ast.RiskLow
	var declaredCapabilities []string

	if program.Header != nil {
		if program.Header.Risk != nil {
			riskLevel = program.Header.Risk.Level
		}
		if program.Header.Requires != nil {
			declaredCapabilities = program.Header.Requires.Capabilities
		}
	}

	for _, contract := range program.Contracts {
		fp := fingerprint.FingerprintContract(contract)
		results = append(results, VerifyContract(contract, fp, file, declaredCapabilities, riskLevel)...)
	}

	return results
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func extractDeclaredModifies(effects *ast.Effects) map[string]bool {
	result := make(map[string]bool)
	if effects == nil {
		return result
	}
	for _, decl := range effects.Declarations {
		if m, ok := decl.(*ast.ModifiesEffect); ok {
			for _, t := range m.Targets {
				result[t] = true
			}
		}
	}
	return result
}

func extractDeclaredReads(effects *ast.Effects) map[string]bool {
	result := make(map[string]bool)
	if effects == nil {
		return result
	}
	for _, decl := range effects.Declarations {
		if r, ok := decl.(*ast.ReadsEffect); ok {
			for _, t := range r.Targets {
				result[t] = true
			}
		}
	}
	return result
}

func extractDeclaredEmits(effects *ast.Effects) map[string]bool {
	result := make(map[string]bool)
	if effects == nil {
		return result
	}
	for _, decl := range effects.Declarations {
		if e, ok := decl.(*ast.EmitsEffect); ok {
			result[e.EventType] = true
		}
	}
	return result
}

func hasTouchesNothingElse(effects *ast.Effects) bool {
	if effects == nil {
		return false
	}
	for _, decl := range effects.Declarations {
		if _, ok := decl.(*ast.TouchesNothingElse); ok {
			return true
		}
	}
	return false
}

// isCoveredBy reports whether an actual mutation/read path is covered
// by a set of declared paths. "from.balance" is covered by
// "from.balance" (exact match) or by "from" (parent covers children).
// Dotless local variables are always considered covered — they are
// local temporaries, not external state.
func isCoveredBy(actual string, declared map[string]bool) bool {
	if declared[actual] {
		return true
	}
	for d := range declared {
		if strings.HasPrefix(actual, d+".") {
			return true
		}
	}
	return !strings.Contains(actual, ".")
}

// isMutationCovered reports whether an old() reference path is covered
// by actual mutations. Unlike isCoveredBy, this does not auto-allow
// dotless names: old() specifically asserts that state was modified, so
// every referenced path must match an actual mutation (exactly, or by
// parent/child prefix in either direction).
func isMutationCovered(ref string, mutations map[string]struct{}) bool {
	if _, ok := mutations[ref]; ok {
		return true
	}
	for m := range mutations {
		if strings.HasPrefix(ref, m+".") || strings.HasPrefix(m, ref+".") {
			return true
		}
	}
	return false
}

// isObservedIn reports whether a declared effect path is observed among
// actual mutations, in either direction of prefix containment.
func isObservedIn(declared string, actual map[string]struct{}) bool {
	if _, ok := actual[declared]; ok {
		return true
	}
	for a := range actual {
		if strings.HasPrefix(a, declared+".") || strings.HasPrefix(declared, a+".") {
			return true
		}
	}
	return false
}

func rootOf(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedBoolSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
