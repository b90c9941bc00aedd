package ast

// FieldDef is a single field declaration inside a type definition.
type FieldDef struct {
	Name string
	Type TypeExpr
	Loc  SourceLocation
}

func (f *FieldDef) node() {}

// Location returns the source location of the field definition.
func (f *FieldDef) Location() SourceLocation { return f.Loc }

// FlowConstraint is the interface implemented by every data-flow
// constraint variant inside a type definition's flow_constraints
// section.
type FlowConstraint interface {
	Node
	flowConstraintNode()
}

// NeverFlowsTo declares that values of this type must never reach the
// named destinations (e.g. "never_flows_to: logs, external_api").
type NeverFlowsTo struct {
	Destinations []string
	Loc          SourceLocation
}

func (n *NeverFlowsTo) node()                {}
func (n *NeverFlowsTo) flowConstraintNode()  {}

// Location returns the source location of the never_flows_to constraint.
func (n *NeverFlowsTo) Location() SourceLocation { return n.Loc }

// RequiresContext declares that values of this type may only be
// produced or consumed within the named context.
type RequiresContext struct {
	Context string
	Loc     SourceLocation
}

func (r *RequiresContext) node()               {}
func (r *RequiresContext) flowConstraintNode() {}

// Location returns the source location of the requires_context
// constraint.
func (r *RequiresContext) Location() SourceLocation { return r.Loc }

// TypeDef is a named type declaration: a base type plus fields and
// data-flow constraints.
type TypeDef struct {
	Name            string
	BaseType        TypeExpr // nil if the type has no base type
	Fields          []*FieldDef
	FlowConstraints []FlowConstraint
	Loc             SourceLocation
}

func (t *TypeDef) node() {}

// Location returns the source location of the type definition.
func (t *TypeDef) Location() SourceLocation { return t.Loc }
