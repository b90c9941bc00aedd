package ast

// ContractDef is a single contract definition: a named, typed operation
// with optional precondition, postcondition, effects, and permissions
// sections, plus a body and optional on_failure handler.
//
// Each section may appear at most once; the parser rejects repeats.
// Sections may appear in any order in source but are normalized into
// these named fields during parsing.
type ContractDef struct {
	Name          string
	Params        []*Param
	ReturnType    TypeExpr // always set by the parser: "-> Type" is required
	Precondition  *Precondition
	Postcondition *Postcondition
	Effects       *Effects
	Permissions   *PermissionsBlock
	Body          *Body // nil only in malformed source; checker flags E004
	OnFailure     *OnFailure
	Loc           SourceLocation
}

func (c *ContractDef) node() {}

// Location returns the source location of the contract definition.
func (c *ContractDef) Location() SourceLocation { return c.Loc }

// Precondition lists boolean conditions that must hold before a
// contract's body executes.
type Precondition struct {
	Conditions []Expr
	Loc        SourceLocation
}

func (p *Precondition) node() {}

// Location returns the source location of the precondition block.
func (p *Precondition) Location() SourceLocation { return p.Loc }

// Postcondition lists boolean conditions that must hold after a
// contract's body executes, possibly referencing old() pre-state.
type Postcondition struct {
	Conditions []Expr
	Loc        SourceLocation
}

func (p *Postcondition) node() {}

// Location returns the source location of the postcondition block.
func (p *Postcondition) Location() SourceLocation { return p.Loc }

// EffectDecl is the interface implemented by every declared-effect
// variant inside an Effects block.
type EffectDecl interface {
	Node
	effectDeclNode()
}

// ModifiesEffect declares the set of paths a contract's body may mutate.
type ModifiesEffect struct {
	Targets []string
	Loc     SourceLocation
}

func (m *ModifiesEffect) node()           {}
func (m *ModifiesEffect) effectDeclNode() {}

// Location returns the source location of the modifies declaration.
func (m *ModifiesEffect) Location() SourceLocation { return m.Loc }

// ReadsEffect declares the set of paths a contract's body may read.
type ReadsEffect struct {
	Targets []string
	Loc     SourceLocation
}

func (r *ReadsEffect) node()           {}
func (r *ReadsEffect) effectDeclNode() {}

// Location returns the source location of the reads declaration.
func (r *ReadsEffect) Location() SourceLocation { return r.Loc }

// EmitsEffect declares an event type a contract's body may emit.
type EmitsEffect struct {
	EventType string
	Loc       SourceLocation
}

func (e *EmitsEffect) node()           {}
func (e *EmitsEffect) effectDeclNode() {}

// Location returns the source location of the emits declaration.
func (e *EmitsEffect) Location() SourceLocation { return e.Loc }

// TouchesNothingElse declares that the contract's body touches no state
// beyond what is explicitly declared in modifies/reads/emits, subject to
// the checker's whitelist of always-allowed calls (params, declared
// capabilities, constructor-style uppercase names).
type TouchesNothingElse struct {
	Loc SourceLocation
}

func (t *TouchesNothingElse) node()           {}
func (t *TouchesNothingElse) effectDeclNode() {}

// Location returns the source location of the touches_nothing_else
// declaration.
func (t *TouchesNothingElse) Location() SourceLocation { return t.Loc }

// Effects is the declared-effects section of a contract.
type Effects struct {
	Declarations []EffectDecl
	Loc          SourceLocation
}

func (e *Effects) node() {}

// Location returns the source location of the effects block.
func (e *Effects) Location() SourceLocation { return e.Loc }

// Body is the executable statement sequence of a contract. The
// fingerprinter walks only Body and OnFailure — never Precondition,
// Postcondition, or Effects.
type Body struct {
	Statements []Statement
	Loc        SourceLocation
}

func (b *Body) node() {}

// Location returns the source location of the body block.
func (b *Body) Location() SourceLocation { return b.Loc }

// OnFailure is the statement sequence executed when a contract's
// precondition or postcondition fails at runtime. Like Body, it
// contributes to the behavioral fingerprint.
type OnFailure struct {
	Statements []Statement
	Loc        SourceLocation
}

func (o *OnFailure) node() {}

// Location returns the source location of the on_failure block.
func (o *OnFailure) Location() SourceLocation { return o.Loc }

// GrantsPermission lists permission expressions granted by a contract.
// Each entry is an opaque string reproducing the source token sequence
// (e.g. "read(record.name)") rather than a parsed sub-grammar; parsing
// permission expressions is explicitly deferred.
type GrantsPermission struct {
	Permissions []string
	Loc         SourceLocation
}

func (g *GrantsPermission) node() {}

// Location returns the source location of the grants declaration.
func (g *GrantsPermission) Location() SourceLocation { return g.Loc }

// DeniesPermission lists permission expressions denied by a contract,
// in the same opaque-string form as GrantsPermission.
type DeniesPermission struct {
	Permissions []string
	Loc         SourceLocation
}

func (d *DeniesPermission) node() {}

// Location returns the source location of the denies declaration.
func (d *DeniesPermission) Location() SourceLocation { return d.Loc }

// EscalationPolicy is the free-text remainder of an "escalation:" line,
// joined with single spaces from raw token values until the end of the
// logical line. This is acknowledged as fragile but kept verbatim to
// match the original grammar.
type EscalationPolicy struct {
	Policy string
	Loc    SourceLocation
}

func (e *EscalationPolicy) node() {}

// Location returns the source location of the escalation policy.
func (e *EscalationPolicy) Location() SourceLocation { return e.Loc }

// PermissionsBlock is the permissions section of a contract.
type PermissionsBlock struct {
	Grants     *GrantsPermission // nil if absent
	Denies     *DeniesPermission // nil if absent
	Escalation *EscalationPolicy // nil if absent
	Loc        SourceLocation
}

func (p *PermissionsBlock) node() {}

// Location returns the source location of the permissions block.
func (p *PermissionsBlock) Location() SourceLocation { return p.Loc }
