// Package ast defines the Abstract Syntax Tree node types for the
// Covenant contract language. Nodes are immutable once constructed: the
// parser builds a tree bottom-up and nothing downstream mutates it.
// Analysis passes (fingerprint, checker, hasher) attach their own
// results in side tables keyed by SourceLocation rather than mutating
// nodes in place.
package ast

import "github.com/covenant-lang/covenant/internal/compiler/lexer"

// SourceLocation tracks the position of an AST node in source code.
type SourceLocation struct {
	Line   int
	Column int
	File   string
}

// Node is the base interface implemented by every AST node.
type Node interface {
	Location() SourceLocation
	node()
}

// TokenLocation creates a SourceLocation from a lexer token.
func TokenLocation(token lexer.Token) SourceLocation {
	return SourceLocation{Line: token.Line, Column: token.Column, File: token.File}
}

// Program is the root node of a parsed source file: an optional file
// header followed by any number of contract, type, and shared
// declarations, in the order they appeared in source.
type Program struct {
	Header    *FileHeader // nil if the file has no header block
	Contracts []*ContractDef
	TypeDefs  []*TypeDef
	Shared    []*SharedDecl
	Loc       SourceLocation
}

func (p *Program) node() {}

// Location returns the source location of the program node.
func (p *Program) Location() SourceLocation { return p.Loc }

// FileHeader holds the optional intent/scope/risk/requires declarations
// that may precede a file's contracts.
type FileHeader struct {
	Intent   *IntentBlock   // nil if absent
	Scope    *ScopeDecl     // nil if absent
	Risk     *RiskDecl      // nil if absent
	Requires *RequiresDecl  // nil if absent
	Loc      SourceLocation
}

func (f *FileHeader) node() {}

// Location returns the source location of the file header.
func (f *FileHeader) Location() SourceLocation { return f.Loc }

// IntentBlock carries the free-text human-readable intent of a file or
// contract. This text is never parsed; it is hashed verbatim by the
// hasher and never examined by the fingerprinter.
type IntentBlock struct {
	Text string
	Loc  SourceLocation
}

func (i *IntentBlock) node() {}

// Location returns the source location of the intent block.
func (i *IntentBlock) Location() SourceLocation { return i.Loc }

// ScopeDecl names the logical domain a file's contracts belong to
// (e.g. "finance.accounts").
type ScopeDecl struct {
	Path string
	Loc  SourceLocation
}

func (s *ScopeDecl) node() {}

// Location returns the source location of the scope declaration.
func (s *ScopeDecl) Location() SourceLocation { return s.Loc }

// RiskLevel classifies how severely a contract's misbehavior could
// affect the system, escalating certain checker warnings to errors at
// HIGH and CRITICAL.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

// String renders the risk level using its lowercase source spelling.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// RiskDecl declares the risk level for a file's contracts.
type RiskDecl struct {
	Level RiskLevel
	Loc   SourceLocation
}

func (r *RiskDecl) node() {}

// Location returns the source location of the risk declaration.
func (r *RiskDecl) Location() SourceLocation { return r.Loc }

// RequiresDecl lists the capabilities a file's contracts may assume are
// available (e.g. for `has` expressions and intent-scope checking).
type RequiresDecl struct {
	Capabilities []string
	Loc          SourceLocation
}

func (r *RequiresDecl) node() {}

// Location returns the source location of the requires declaration.
func (r *RequiresDecl) Location() SourceLocation { return r.Loc }
