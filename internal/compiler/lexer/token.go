package lexer

import "fmt"

// TokenType identifies the kind of a single lexical token.
type TokenType int

const (
	// Structural
	TOKEN_INDENT TokenType = iota
	TOKEN_DEDENT
	TOKEN_NEWLINE
	TOKEN_EOF

	// Literals
	TOKEN_STRING
	TOKEN_INTEGER
	TOKEN_FLOAT
	TOKEN_TRUE
	TOKEN_FALSE

	// Identifiers & punctuation
	TOKEN_IDENTIFIER
	TOKEN_DOT
	TOKEN_COMMA
	TOKEN_COLON
	TOKEN_ARROW // ->
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_LBRACKET
	TOKEN_RBRACKET

	// Comparison / arithmetic
	TOKEN_EQUALS        // ==
	TOKEN_NOT_EQUALS    // !=
	TOKEN_LESS_THAN     // <
	TOKEN_LESS_EQUAL    // <=
	TOKEN_GREATER_THAN  // >
	TOKEN_GREATER_EQUAL // >=
	TOKEN_PLUS
	TOKEN_MINUS
	TOKEN_STAR
	TOKEN_SLASH
	TOKEN_ASSIGN // =

	// Keywords - language structure
	TOKEN_INTENT
	TOKEN_SCOPE
	TOKEN_RISK
	TOKEN_REQUIRES
	TOKEN_CONTRACT
	TOKEN_PRECONDITION
	TOKEN_POSTCONDITION
	TOKEN_EFFECTS
	TOKEN_BODY
	TOKEN_ON_FAILURE

	// Keywords - effects
	TOKEN_MODIFIES
	TOKEN_READS
	TOKEN_EMITS
	TOKEN_TOUCHES_NOTHING_ELSE

	// Keywords - control flow / expressions
	TOKEN_RETURN
	TOKEN_EMIT
	TOKEN_IF
	TOKEN_ELSE
	TOKEN_FOR
	TOKEN_IN
	TOKEN_WHILE
	TOKEN_AND
	TOKEN_OR
	TOKEN_NOT
	TOKEN_HAS

	// Keywords - type system
	TOKEN_TYPE
	TOKEN_FIELDS
	TOKEN_FLOW_CONSTRAINTS
	TOKEN_NEVER_FLOWS_TO
	TOKEN_REQUIRES_CONTEXT
	TOKEN_SHARED
	TOKEN_ACCESS
	TOKEN_ISOLATION
	TOKEN_AUDIT

	// Keywords - permissions
	TOKEN_PERMISSIONS
	TOKEN_GRANTS
	TOKEN_DENIES
	TOKEN_ESCALATION

	// Keywords - risk levels
	TOKEN_LOW
	TOKEN_MEDIUM
	TOKEN_HIGH
	TOKEN_CRITICAL

	// Special
	TOKEN_OLD // old() — pre-execution state reference

	// Keywords - audit sublanguage (reserved, no grammar yet)
	TOKEN_SHOW
	TOKEN_ALL
	TOKEN_WHERE
	TOKEN_SINCE
)

// TokenTypeNames gives a readable name for every token kind, used by
// Token.String and diagnostic rendering.
var TokenTypeNames = map[TokenType]string{
	TOKEN_INDENT:  "INDENT",
	TOKEN_DEDENT:  "DEDENT",
	TOKEN_NEWLINE: "NEWLINE",
	TOKEN_EOF:     "EOF",

	TOKEN_STRING:  "STRING",
	TOKEN_INTEGER: "INTEGER",
	TOKEN_FLOAT:   "FLOAT",
	TOKEN_TRUE:    "TRUE",
	TOKEN_FALSE:   "FALSE",

	TOKEN_IDENTIFIER: "IDENTIFIER",
	TOKEN_DOT:        "DOT",
	TOKEN_COMMA:      "COMMA",
	TOKEN_COLON:      "COLON",
	TOKEN_ARROW:      "ARROW",
	TOKEN_LPAREN:     "LPAREN",
	TOKEN_RPAREN:     "RPAREN",
	TOKEN_LBRACKET:   "LBRACKET",
	TOKEN_RBRACKET:   "RBRACKET",

	TOKEN_EQUALS:        "EQUALS",
	TOKEN_NOT_EQUALS:    "NOT_EQUALS",
	TOKEN_LESS_THAN:     "LESS_THAN",
	TOKEN_LESS_EQUAL:    "LESS_EQUAL",
	TOKEN_GREATER_THAN:  "GREATER_THAN",
	TOKEN_GREATER_EQUAL: "GREATER_EQUAL",
	TOKEN_PLUS:          "PLUS",
	TOKEN_MINUS:         "MINUS",
	TOKEN_STAR:          "STAR",
	TOKEN_SLASH:         "SLASH",
	TOKEN_ASSIGN:        "ASSIGN",

	TOKEN_INTENT:        "INTENT",
	TOKEN_SCOPE:         "SCOPE",
	TOKEN_RISK:          "RISK",
	TOKEN_REQUIRES:      "REQUIRES",
	TOKEN_CONTRACT:      "CONTRACT",
	TOKEN_PRECONDITION:  "PRECONDITION",
	TOKEN_POSTCONDITION: "POSTCONDITION",
	TOKEN_EFFECTS:       "EFFECTS",
	TOKEN_BODY:          "BODY",
	TOKEN_ON_FAILURE:    "ON_FAILURE",

	TOKEN_MODIFIES:             "MODIFIES",
	TOKEN_READS:                "READS",
	TOKEN_EMITS:                "EMITS",
	TOKEN_TOUCHES_NOTHING_ELSE: "TOUCHES_NOTHING_ELSE",

	TOKEN_RETURN: "RETURN",
	TOKEN_EMIT:   "EMIT",
	TOKEN_IF:     "IF",
	TOKEN_ELSE:   "ELSE",
	TOKEN_FOR:    "FOR",
	TOKEN_IN:     "IN",
	TOKEN_WHILE:  "WHILE",
	TOKEN_AND:    "AND",
	TOKEN_OR:     "OR",
	TOKEN_NOT:    "NOT",
	TOKEN_HAS:    "HAS",

	TOKEN_TYPE:              "TYPE",
	TOKEN_FIELDS:            "FIELDS",
	TOKEN_FLOW_CONSTRAINTS:  "FLOW_CONSTRAINTS",
	TOKEN_NEVER_FLOWS_TO:    "NEVER_FLOWS_TO",
	TOKEN_REQUIRES_CONTEXT:  "REQUIRES_CONTEXT",
	TOKEN_SHARED:            "SHARED",
	TOKEN_ACCESS:            "ACCESS",
	TOKEN_ISOLATION:         "ISOLATION",
	TOKEN_AUDIT:             "AUDIT",

	TOKEN_PERMISSIONS: "PERMISSIONS",
	TOKEN_GRANTS:      "GRANTS",
	TOKEN_DENIES:      "DENIES",
	TOKEN_ESCALATION:  "ESCALATION",

	TOKEN_LOW:      "LOW",
	TOKEN_MEDIUM:   "MEDIUM",
	TOKEN_HIGH:     "HIGH",
	TOKEN_CRITICAL: "CRITICAL",

	TOKEN_OLD: "OLD",

	TOKEN_SHOW:  "SHOW",
	TOKEN_ALL:   "ALL",
	TOKEN_WHERE: "WHERE",
	TOKEN_SINCE: "SINCE",
}

func (t TokenType) String() string {
	if name, ok := TokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", t)
}

// Token is a single lexical token produced by the Lexer. Tokens are
// immutable and carry full source location for diagnostics and audit
// provenance.
type Token struct {
	Type   TokenType
	Value  string
	Line   int
	Column int
	File   string
}

// String renders the token for debug/tokenize output. Structural tokens
// have no meaningful value, so their rendering omits it.
func (t Token) String() string {
	switch t.Type {
	case TOKEN_INDENT, TOKEN_DEDENT, TOKEN_NEWLINE, TOKEN_EOF:
		return fmt.Sprintf("Token(%s, %d:%d)", t.Type, t.Line, t.Column)
	default:
		return fmt.Sprintf("Token(%s, %q, %d:%d)", t.Type, t.Value, t.Line, t.Column)
	}
}

// Keywords maps reserved words to their token types.
var Keywords = map[string]TokenType{
	"intent":                TOKEN_INTENT,
	"scope":                 TOKEN_SCOPE,
	"risk":                  TOKEN_RISK,
	"requires":              TOKEN_REQUIRES,
	"contract":              TOKEN_CONTRACT,
	"precondition":          TOKEN_PRECONDITION,
	"postcondition":         TOKEN_POSTCONDITION,
	"effects":               TOKEN_EFFECTS,
	"body":                  TOKEN_BODY,
	"on_failure":            TOKEN_ON_FAILURE,
	"modifies":              TOKEN_MODIFIES,
	"reads":                 TOKEN_READS,
	"emits":                 TOKEN_EMITS,
	"touches_nothing_else":  TOKEN_TOUCHES_NOTHING_ELSE,
	"return":                TOKEN_RETURN,
	"emit":                  TOKEN_EMIT,
	"if":                    TOKEN_IF,
	"else":                  TOKEN_ELSE,
	"for":                   TOKEN_FOR,
	"in":                    TOKEN_IN,
	"while":                 TOKEN_WHILE,
	"and":                   TOKEN_AND,
	"or":                    TOKEN_OR,
	"not":                   TOKEN_NOT,
	"has":                   TOKEN_HAS,
	"type":                  TOKEN_TYPE,
	"fields":                TOKEN_FIELDS,
	"flow_constraints":      TOKEN_FLOW_CONSTRAINTS,
	"never_flows_to":        TOKEN_NEVER_FLOWS_TO,
	"requires_context":      TOKEN_REQUIRES_CONTEXT,
	"shared":                TOKEN_SHARED,
	"access":                TOKEN_ACCESS,
	"isolation":             TOKEN_ISOLATION,
	"audit":                 TOKEN_AUDIT,
	"permissions":           TOKEN_PERMISSIONS,
	"grants":                TOKEN_GRANTS,
	"denies":                TOKEN_DENIES,
	"escalation":            TOKEN_ESCALATION,
	"low":                   TOKEN_LOW,
	"medium":                TOKEN_MEDIUM,
	"high":                  TOKEN_HIGH,
	"critical":              TOKEN_CRITICAL,
	"old":                   TOKEN_OLD,
	"true":                  TOKEN_TRUE,
	"false":                 TOKEN_FALSE,
	"show":                  TOKEN_SHOW,
	"all":                   TOKEN_ALL,
	"where":                 TOKEN_WHERE,
	"since":                 TOKEN_SINCE,
}

// LexError is raised on lexical errors, carrying source location.
type LexError struct {
	Message string
	Line    int
	Column  int
	File    string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}
