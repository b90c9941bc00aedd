package ast

// TypeExpr is the interface implemented by every type expression node.
type TypeExpr interface {
	Node
	typeExprNode()
}

// SimpleType is a bare type name: Account, Int, String.
type SimpleType struct {
	Name string
	Loc  SourceLocation
}

func (s *SimpleType) node()         {}
func (s *SimpleType) typeExprNode() {}

// Location returns the source location of the simple type.
func (s *SimpleType) Location() SourceLocation { return s.Loc }

// GenericType is a parameterized type: Map<String, Account>.
type GenericType struct {
	Name   string
	Params []TypeExpr
	Loc    SourceLocation
}

func (g *GenericType) node()         {}
func (g *GenericType) typeExprNode() {}

// Location returns the source location of the generic type.
func (g *GenericType) Location() SourceLocation { return g.Loc }

// ListType is a homogeneous list type: List<Account>.
type ListType struct {
	ElementType TypeExpr
	Loc         SourceLocation
}

func (l *ListType) node()         {}
func (l *ListType) typeExprNode() {}

// Location returns the source location of the list type.
func (l *ListType) Location() SourceLocation { return l.Loc }

// AnnotatedType wraps a base type with bracketed qualifiers:
// Int[positive, nonzero].
type AnnotatedType struct {
	Base        TypeExpr
	Annotations []string
	Loc         SourceLocation
}

func (a *AnnotatedType) node()         {}
func (a *AnnotatedType) typeExprNode() {}

// Location returns the source location of the annotated type.
func (a *AnnotatedType) Location() SourceLocation { return a.Loc }

// Param is a single contract or function parameter.
type Param struct {
	Name string
	Type TypeExpr // nil if the parameter has no type annotation
	Loc  SourceLocation
}

func (p *Param) node() {}

// Location returns the source location of the parameter.
func (p *Param) Location() SourceLocation { return p.Loc }
