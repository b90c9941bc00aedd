// Package fingerprint computes a deterministic behavioral fingerprint
// for a Covenant contract by walking its AST. The fingerprint captures
// what a contract's body actually does — what state it reads and
// mutates, what it calls, what events it emits, what old() references
// it makes, and its control-flow shape — entirely from the AST, with no
// execution required.
//
// Only Body and OnFailure are walked. Precondition, Postcondition, and
// Effects are declarations, not behavior, and are compared against the
// fingerprint by the checker package rather than folded into it.
package fingerprint

import (
	"sort"
	"strconv"

	"github.com/covenant-lang/covenant/internal/compiler/ast"
)

// BehavioralFingerprint captures the abstract behavior of a contract
// body. Set-valued fields are stored as maps for O(1) membership
// checks; ToCanonicalDict projects them into sorted slices for
// deterministic hashing.
type BehavioralFingerprint struct {
	Reads            map[string]struct{}
	Mutations        map[string]struct{}
	Calls            map[string]struct{}
	EmittedEvents    map[string]struct{}
	OldReferences    map[string]struct{}
	CapabilityChecks map[string]struct{}
	Operators        []string
	Literals         []string

	HasBranching bool
	HasLooping   bool
	HasRecursion bool

	ReturnCount     int
	MaxNestingDepth int
}

func newFingerprint() *BehavioralFingerprint {
	return &BehavioralFingerprint{
		Reads:            make(map[string]struct{}),
		Mutations:        make(map[string]struct{}),
		Calls:            make(map[string]struct{}),
		EmittedEvents:    make(map[string]struct{}),
		OldReferences:    make(map[string]struct{}),
		CapabilityChecks: make(map[string]struct{}),
	}
}

// CanonicalFingerprint is the deterministic, JSON-serializable
// projection of a BehavioralFingerprint used for hashing. Every
// set-valued field is sorted so that two structurally identical
// fingerprints always produce byte-identical JSON, and the struct's
// fields are declared in JSON-tag alphabetical order so that
// encoding/json — which marshals struct fields in declaration order,
// not alphabetically — produces the same key order as the original
// implementation's json.dumps(sort_keys=True).
type CanonicalFingerprint struct {
	Calls            []string `json:"calls"`
	CapabilityChecks []string `json:"capability_checks"`
	EmittedEvents    []string `json:"emitted_events"`
	HasBranching     bool     `json:"has_branching"`
	HasLooping       bool     `json:"has_looping"`
	HasRecursion     bool     `json:"has_recursion"`
	Literals         []string `json:"literals"`
	MaxNestingDepth  int      `json:"max_nesting_depth"`
	Mutations        []string `json:"mutations"`
	OldReferences    []string `json:"old_references"`
	Operators        []string `json:"operators"`
	Reads            []string `json:"reads"`
	ReturnCount      int      `json:"return_count"`
}

// ToCanonicalDict produces the deterministic projection used for
// hashing and diagnostic rendering.
func (fp *BehavioralFingerprint) ToCanonicalDict() CanonicalFingerprint {
	return CanonicalFingerprint{
		Calls:            sortedKeys(fp.Calls),
		CapabilityChecks: sortedKeys(fp.CapabilityChecks),
		EmittedEvents:    sortedKeys(fp.EmittedEvents),
		HasBranching:     fp.HasBranching,
		HasLooping:       fp.HasLooping,
		HasRecursion:     fp.HasRecursion,
		Literals:         sortedStrings(fp.Literals),
		MaxNestingDepth:  fp.MaxNestingDepth,
		Mutations:        sortedKeys(fp.Mutations),
		OldReferences:    sortedKeys(fp.OldReferences),
		Operators:        sortedStrings(fp.Operators),
		Reads:            sortedKeys(fp.Reads),
		ReturnCount:      fp.ReturnCount,
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}

// FingerprintContract computes the behavioral fingerprint for a
// contract, walking only its Body and OnFailure sections.
func FingerprintContract(contract *ast.ContractDef) *BehavioralFingerprint {
	fp := newFingerprint()
	w := &astWalker{fp: fp, contractName: contract.Name}

	if contract.Body != nil {
		w.walkStatements(contract.Body.Statements, 0)
	}
	if contract.OnFailure != nil {
		w.walkStatements(contract.OnFailure.Statements, 0)
	}

	return fp
}

// FingerprintExpressions builds a standalone mini-fingerprint from a
// list of expressions, used by the checker to analyze precondition and
// postcondition conditions independently of a contract's body.
func FingerprintExpressions(exprs []ast.Expr) *BehavioralFingerprint {
	fp := newFingerprint()
	w := &astWalker{fp: fp, contractName: ""}
	for _, e := range exprs {
		w.walkExpr(e)
	}
	return fp
}

// astWalker walks a contract's statements and expressions, populating a
// BehavioralFingerprint as it goes.
type astWalker struct {
	fp           *BehavioralFingerprint
	contractName string
}

func (w *astWalker) walkStatements(stmts []ast.Statement, depth int) {
	if depth > w.fp.MaxNestingDepth {
		w.fp.MaxNestingDepth = depth
	}
	for _, stmt := range stmts {
		w.walkStatement(stmt, depth)
	}
}

func (w *astWalker) walkStatement(stmt ast.Statement, depth int) {
	switch s := stmt.(type) {
	case *ast.Assignment:
		w.fp.Mutations[w.dottedPathFromExpr(s.Target)] = struct{}{}
		if s.Value != nil {
			w.walkExpr(s.Value)
		}

	case *ast.ReturnStmt:
		w.fp.ReturnCount++
		if s.Value != nil {
			w.walkExpr(s.Value)
		}

	case *ast.EmitStmt:
		if s.Event != nil {
			if name := w.extractEventName(s.Event); name != "" {
				w.fp.EmittedEvents[name] = struct{}{}
			}
			w.walkExpr(s.Event)
		}

	case *ast.ExprStmt:
		if s.Expr != nil {
			w.walkExpr(s.Expr)
		}

	case *ast.IfStmt:
		w.fp.HasBranching = true
		if s.Condition != nil {
			w.walkExpr(s.Condition)
		}
		w.walkStatements(s.ThenBody, depth+1)
		if s.ElseBody != nil {
			w.walkStatements(s.ElseBody, depth+1)
		}

	case *ast.ForStmt:
		w.fp.HasLooping = true
		if s.Iterable != nil {
			w.walkExpr(s.Iterable)
		}
		w.walkStatements(s.LoopBody, depth+1)

	case *ast.WhileStmt:
		w.fp.HasLooping = true
		if s.Condition != nil {
			w.walkExpr(s.Condition)
		}
		w.walkStatements(s.LoopBody, depth+1)
	}
}

func (w *astWalker) walkExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Identifier:
		w.fp.Reads[e.Name] = struct{}{}

	case *ast.FieldAccess:
		w.fp.Reads[w.dottedPath(e)] = struct{}{}

	case *ast.FunctionCall:
		if callName := w.extractCallName(e.Function); callName != "" {
			w.fp.Calls[callName] = struct{}{}
			if callName == w.contractName {
				w.fp.HasRecursion = true
			}
		}
		if e.Function != nil {
			w.walkExpr(e.Function)
		}
		for _, arg := range e.Arguments {
			w.walkExpr(arg.Value)
		}

	case *ast.MethodCall:
		objPath := ""
		if e.Object != nil {
			objPath = w.extractCallName(e.Object)
		}
		callName := e.Method
		if objPath != "" {
			callName = objPath + "." + e.Method
		}
		w.fp.Calls[callName] = struct{}{}
		if e.Object != nil {
			w.walkExpr(e.Object)
		}
		for _, arg := range e.Arguments {
			w.walkExpr(arg.Value)
		}

	case *ast.BinaryOp:
		if e.Operator != "" {
			w.fp.Operators = append(w.fp.Operators, e.Operator)
		}
		if e.Left != nil {
			w.walkExpr(e.Left)
		}
		if e.Right != nil {
			w.walkExpr(e.Right)
		}

	case *ast.UnaryOp:
		if e.Operator != "" {
			w.fp.Operators = append(w.fp.Operators, e.Operator)
		}
		if e.Operand != nil {
			w.walkExpr(e.Operand)
		}

	case *ast.OldExpr:
		if e.Inner != nil {
			w.fp.OldReferences[w.dottedPathFromExpr(e.Inner)] = struct{}{}
			w.walkExpr(e.Inner)
		}

	case *ast.HasExpr:
		if e.Subject != nil && e.Capability != nil {
			subj := w.dottedPathFromExpr(e.Subject)
			cap := w.dottedPathFromExpr(e.Capability)
			w.fp.CapabilityChecks[subj+" has "+cap] = struct{}{}
		}

	case *ast.ListLiteral:
		for _, elem := range e.Elements {
			w.walkExpr(elem)
		}

	case *ast.NumberLiteral:
		w.fp.Literals = append(w.fp.Literals, e.Value)

	case *ast.StringLiteral:
		w.fp.Literals = append(w.fp.Literals, strconv.Quote(e.Value))

	case *ast.BoolLiteral:
		w.fp.Literals = append(w.fp.Literals, strconv.FormatBool(e.Value))
	}
}

// dottedPath flattens a chain of FieldAccess nodes rooted in an
// Identifier into a dotted string, e.g. "account.balance.total".
func (w *astWalker) dottedPath(expr *ast.FieldAccess) string {
	var parts []string
	var current ast.Expr = expr
	for {
		fa, ok := current.(*ast.FieldAccess)
		if !ok {
			break
		}
		parts = append(parts, fa.FieldName)
		current = fa.Object
	}
	if id, ok := current.(*ast.Identifier); ok {
		parts = append(parts, id.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

// dottedPathFromExpr extracts a dotted path from any expression,
// falling back to a synthesized marker for call expressions and
// "<complex>" for anything else — mirroring the original grammar's
// behavior of treating complex sub-expressions as opaque for fingerprint
// comparison purposes.
func (w *astWalker) dottedPathFromExpr(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.FieldAccess:
		return w.dottedPath(e)
	case *ast.MethodCall:
		obj := ""
		if e.Object != nil {
			obj = w.extractCallName(e.Object)
		}
		if obj != "" {
			return obj + "." + e.Method + "()"
		}
		return e.Method + "()"
	case *ast.FunctionCall:
		name := ""
		if e.Function != nil {
			name = w.extractCallName(e.Function)
		}
		return name + "()"
	default:
		return "<complex>"
	}
}

// extractCallName extracts the name of a function/method being called.
func (w *astWalker) extractCallName(expr ast.Expr) string {
	if expr == nil {
		return ""
	}
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.FieldAccess:
		return w.dottedPath(e)
	default:
		return "<indirect>"
	}
}

// extractEventName extracts the event type name from an emit statement's
// event expression.
func (w *astWalker) extractEventName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.FunctionCall:
		if e.Function != nil {
			return w.extractCallName(e.Function)
		}
		return ""
	case *ast.Identifier:
		return e.Name
	default:
		return ""
	}
}
