package ast

// Expr is the interface implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Identifier references a name bound in scope: a parameter, local
// variable, or (via FieldAccess) a path root.
type Identifier struct {
	Name string
	Loc  SourceLocation
}

func (i *Identifier) node()     {}
func (i *Identifier) exprNode() {}

// Location returns the source location of the identifier.
func (i *Identifier) Location() SourceLocation { return i.Loc }

// StringLiteral is a quoted string literal with escapes already resolved
// by the lexer.
type StringLiteral struct {
	Value string
	Loc   SourceLocation
}

func (s *StringLiteral) node()     {}
func (s *StringLiteral) exprNode() {}

// Location returns the source location of the string literal.
func (s *StringLiteral) Location() SourceLocation { return s.Loc }

// NumberLiteral is an integer or float literal, kept as source text
// since the fingerprinter only needs literal identity, not arithmetic
// value.
type NumberLiteral struct {
	Value string
	Loc   SourceLocation
}

func (n *NumberLiteral) node()     {}
func (n *NumberLiteral) exprNode() {}

// Location returns the source location of the number literal.
func (n *NumberLiteral) Location() SourceLocation { return n.Loc }

// BoolLiteral is a true/false literal.
type BoolLiteral struct {
	Value bool
	Loc   SourceLocation
}

func (b *BoolLiteral) node()     {}
func (b *BoolLiteral) exprNode() {}

// Location returns the source location of the boolean literal.
func (b *BoolLiteral) Location() SourceLocation { return b.Loc }

// ListLiteral is a bracketed list of expressions: [a, b, c].
type ListLiteral struct {
	Elements []Expr
	Loc      SourceLocation
}

func (l *ListLiteral) node()     {}
func (l *ListLiteral) exprNode() {}

// Location returns the source location of the list literal.
func (l *ListLiteral) Location() SourceLocation { return l.Loc }

// BinaryOp is a binary operator application: comparison, arithmetic,
// or logical (and/or).
type BinaryOp struct {
	Left     Expr
	Operator string
	Right    Expr
	Loc      SourceLocation
}

func (b *BinaryOp) node()     {}
func (b *BinaryOp) exprNode() {}

// Location returns the source location of the binary operation.
func (b *BinaryOp) Location() SourceLocation { return b.Loc }

// UnaryOp is a unary operator application: "not" or "-".
type UnaryOp struct {
	Operator string
	Operand  Expr
	Loc      SourceLocation
}

func (u *UnaryOp) node()     {}
func (u *UnaryOp) exprNode() {}

// Location returns the source location of the unary operation.
func (u *UnaryOp) Location() SourceLocation { return u.Loc }

// FieldAccess is a dotted field reference: object.field_name. Chains of
// FieldAccess flatten into dotted paths ("account.balance.total") by
// the fingerprinter and checker.
type FieldAccess struct {
	Object    Expr
	FieldName string
	Loc       SourceLocation
}

func (f *FieldAccess) node()     {}
func (f *FieldAccess) exprNode() {}

// Location returns the source location of the field access.
func (f *FieldAccess) Location() SourceLocation { return f.Loc }

// Argument is a single call argument: positional if Name is empty,
// keyword if Name is set.
type Argument struct {
	Name  string // empty for positional arguments
	Value Expr
}

// FunctionCall is a free function invocation: name(args...).
type FunctionCall struct {
	Function  Expr
	Arguments []Argument
	Loc       SourceLocation
}

func (f *FunctionCall) node()     {}
func (f *FunctionCall) exprNode() {}

// Location returns the source location of the function call.
func (f *FunctionCall) Location() SourceLocation { return f.Loc }

// MethodCall is a method invocation on an object: object.method(args...).
type MethodCall struct {
	Object    Expr
	Method    string
	Arguments []Argument
	Loc       SourceLocation
}

func (m *MethodCall) node()     {}
func (m *MethodCall) exprNode() {}

// Location returns the source location of the method call.
func (m *MethodCall) Location() SourceLocation { return m.Loc }

// OldExpr references the pre-execution value of an expression:
// old(inner). Only legal in postconditions; requires parenthesized call
// syntax, matching the source grammar exactly (a bare "old" identifier
// is not recognized).
type OldExpr struct {
	Inner Expr
	Loc   SourceLocation
}

func (o *OldExpr) node()     {}
func (o *OldExpr) exprNode() {}

// Location returns the source location of the old() expression.
func (o *OldExpr) Location() SourceLocation { return o.Loc }

// HasExpr is a capability check: subject has capability.
type HasExpr struct {
	Subject    Expr
	Capability Expr
	Loc        SourceLocation
}

func (h *HasExpr) node()     {}
func (h *HasExpr) exprNode() {}

// Location returns the source location of the has expression.
func (h *HasExpr) Location() SourceLocation { return h.Loc }
