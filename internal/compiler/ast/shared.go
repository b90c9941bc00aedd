package ast

// SharedDecl declares a piece of state shared across contracts, with
// its access mode, isolation level, and audit requirement.
type SharedDecl struct {
	Name      string
	TypeName  string
	Access    string // e.g. "read_write", "read_only"
	Isolation string // e.g. "serializable", "read_committed"
	Audit     string // e.g. "full", "none"
	Loc       SourceLocation
}

func (s *SharedDecl) node() {}

// Location returns the source location of the shared declaration.
func (s *SharedDecl) Location() SourceLocation { return s.Loc }
