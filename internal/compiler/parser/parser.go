package parser

import (
	"fmt"
	"strings"

	"github.com/covenant-lang/covenant/internal/compiler/ast"
	"github.com/covenant-lang/covenant/internal/compiler/lexer"
)

// softKeywords is the set of keyword token types that may also be used
// as plain identifiers in positions where no ambiguity arises (field
// names, capability names, dotted-path segments). This mirrors the
// source grammar's contextual keyword handling — most of Covenant's
// keywords are section headers, not reserved words globally.
var softKeywords = map[lexer.TokenType]bool{
	lexer.TOKEN_ACCESS:       true,
	lexer.TOKEN_AUDIT:        true,
	lexer.TOKEN_GRANTS:       true,
	lexer.TOKEN_DENIES:       true,
	lexer.TOKEN_ESCALATION:   true,
	lexer.TOKEN_ISOLATION:    true,
	lexer.TOKEN_SCOPE:        true,
	lexer.TOKEN_RISK:         true,
	lexer.TOKEN_LOW:          true,
	lexer.TOKEN_MEDIUM:       true,
	lexer.TOKEN_HIGH:         true,
	lexer.TOKEN_CRITICAL:     true,
	lexer.TOKEN_FIELDS:       true,
	lexer.TOKEN_SHOW:         true,
	lexer.TOKEN_ALL:          true,
	lexer.TOKEN_WHERE:        true,
	lexer.TOKEN_SINCE:        true,
	lexer.TOKEN_READS:        true,
	lexer.TOKEN_EMITS:        true,
	lexer.TOKEN_MODIFIES:     true,
	lexer.TOKEN_SHARED:       true,
	lexer.TOKEN_TYPE:         true,
	lexer.TOKEN_REQUIRES:     true,
	lexer.TOKEN_INTENT:       true,
	lexer.TOKEN_OLD:          true,
	lexer.TOKEN_BODY:         true,
	lexer.TOKEN_EFFECTS:      true,
	lexer.TOKEN_PRECONDITION: true,
	lexer.TOKEN_POSTCONDITION: true,
	lexer.TOKEN_PERMISSIONS:  true,
}

// Parser transforms a stream of tokens into an immutable Program AST.
// It performs no error recovery: the first ParseError encountered
// aborts parsing and is returned to the caller.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a new parser for the given token stream, as produced by
// lexer.Tokenize.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// Parse parses the full token stream into a Program.
func (p *Parser) Parse() (*ast.Program, error) {
	loc := p.loc()

	header, err := p.parseFileHeaderIfPresent()
	if err != nil {
		return nil, err
	}

	program := &ast.Program{Header: header, Loc: loc}
	p.skipNewlines()

	for !p.atEnd() {
		switch {
		case p.check(lexer.TOKEN_CONTRACT):
			c, err := p.parseContractDef()
			if err != nil {
				return nil, err
			}
			program.Contracts = append(program.Contracts, c)
		case p.check(lexer.TOKEN_TYPE):
			t, err := p.parseTypeDef()
			if err != nil {
				return nil, err
			}
			program.TypeDefs = append(program.TypeDefs, t)
		case p.check(lexer.TOKEN_SHARED):
			s, err := p.parseSharedDecl()
			if err != nil {
				return nil, err
			}
			program.Shared = append(program.Shared, s)
		default:
			return nil, NewParseError(
				fmt.Sprintf("expected 'contract', 'type', or 'shared' at top level, got %s", p.current().Type),
				p.current())
		}
		p.skipNewlines()
	}

	return program, nil
}

// ------------------------------------------------------------------
// Token-stream helpers
// ------------------------------------------------------------------

func (p *Parser) current() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(tt lexer.TokenType) bool {
	return p.current().Type == tt
}

func (p *Parser) atEnd() bool {
	return p.current().Type == lexer.TOKEN_EOF
}

func (p *Parser) loc() ast.SourceLocation {
	return ast.TokenLocation(p.current())
}

func (p *Parser) expect(tt lexer.TokenType, message string) (lexer.Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return lexer.Token{}, NewParseError(message, p.current())
}

// expectIdentifierOrKeyword accepts a plain identifier or any soft
// keyword, since Covenant's section-header keywords remain usable as
// ordinary names outside their own section.
func (p *Parser) expectIdentifierOrKeyword(message string) (lexer.Token, error) {
	tok := p.current()
	if tok.Type == lexer.TOKEN_IDENTIFIER || softKeywords[tok.Type] {
		return p.advance(), nil
	}
	return lexer.Token{}, NewParseError(message, tok)
}

func (p *Parser) skipNewlines() {
	for p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
}

// tokenRawValue returns the literal source text of a token, used by the
// opaque permission-expression and free-text reconstruction helpers.
func tokenRawValue(tok lexer.Token) string {
	return tok.Value
}

// ------------------------------------------------------------------
// File header: intent, scope, risk, requires (each optional, in order)
// ------------------------------------------------------------------

func (p *Parser) parseFileHeaderIfPresent() (*ast.FileHeader, error) {
	if !p.check(lexer.TOKEN_INTENT) && !p.check(lexer.TOKEN_SCOPE) &&
		!p.check(lexer.TOKEN_RISK) && !p.check(lexer.TOKEN_REQUIRES) {
		return nil, nil
	}

	loc := p.loc()
	header := &ast.FileHeader{Loc: loc}

	if p.check(lexer.TOKEN_INTENT) {
		ib, err := p.parseIntentBlock()
		if err != nil {
			return nil, err
		}
		header.Intent = ib
	}
	if p.check(lexer.TOKEN_SCOPE) {
		sd, err := p.parseScopeDecl()
		if err != nil {
			return nil, err
		}
		header.Scope = sd
	}
	if p.check(lexer.TOKEN_RISK) {
		rd, err := p.parseRiskDecl()
		if err != nil {
			return nil, err
		}
		header.Risk = rd
	}
	if p.check(lexer.TOKEN_REQUIRES) {
		reqd, err := p.parseRequiresDecl()
		if err != nil {
			return nil, err
		}
		header.Requires = reqd
	}

	return header, nil
}

func (p *Parser) parseIntentBlock() (*ast.IntentBlock, error) {
	loc := p.loc()
	p.advance() // INTENT
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'intent'"); err != nil {
		return nil, err
	}
	text, err := p.expect(lexer.TOKEN_STRING, "expected a string literal after 'intent:'")
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.IntentBlock{Text: text.Value, Loc: loc}, nil
}

func (p *Parser) parseScopeDecl() (*ast.ScopeDecl, error) {
	loc := p.loc()
	p.advance() // SCOPE
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'scope'"); err != nil {
		return nil, err
	}
	path, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.ScopeDecl{Path: path, Loc: loc}, nil
}

func (p *Parser) parseRiskDecl() (*ast.RiskDecl, error) {
	loc := p.loc()
	p.advance() // RISK
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'risk'"); err != nil {
		return nil, err
	}

	level, err := riskLevelFromToken(p.current())
	if err != nil {
		return nil, err
	}
	p.advance()

	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.RiskDecl{Level: level, Loc: loc}, nil
}

func riskLevelFromToken(tok lexer.Token) (ast.RiskLevel, error) {
	switch tok.Type {
	case lexer.TOKEN_LOW:
		return ast.RiskLow, nil
	case lexer.TOKEN_MEDIUM:
		return ast.RiskMedium, nil
	case lexer.TOKEN_HIGH:
		return ast.RiskHigh, nil
	case lexer.TOKEN_CRITICAL:
		return ast.RiskCritical, nil
	default:
		return 0, NewParseError("expected risk level (low, medium, high, critical)", tok)
	}
}

func (p *Parser) parseRequiresDecl() (*ast.RequiresDecl, error) {
	loc := p.loc()
	p.advance() // REQUIRES
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'requires'"); err != nil {
		return nil, err
	}
	caps, err := p.parseBracketedDottedNameList()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.RequiresDecl{Capabilities: caps, Loc: loc}, nil
}

// ------------------------------------------------------------------
// Dotted names
// ------------------------------------------------------------------

func (p *Parser) parseDottedName() (string, error) {
	first, err := p.expectIdentifierOrKeyword("expected a name")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(first.Value)
	for p.check(lexer.TOKEN_DOT) {
		p.advance()
		seg, err := p.expectIdentifierOrKeyword("expected a name segment after '.'")
		if err != nil {
			return "", err
		}
		b.WriteByte('.')
		b.WriteString(seg.Value)
	}
	return b.String(), nil
}

// parseBracketedDottedNameList parses "[" name ("," name)* "]" using
// parseDottedName as the element parser.
func (p *Parser) parseBracketedDottedNameList() ([]string, error) {
	if _, err := p.expect(lexer.TOKEN_LBRACKET, "expected '[' to start a bracketed list"); err != nil {
		return nil, err
	}

	var names []string
	if !p.check(lexer.TOKEN_RBRACKET) {
		for {
			n, err := p.parseDottedName()
			if err != nil {
				return nil, err
			}
			names = append(names, n)
			if p.check(lexer.TOKEN_COMMA) {
				p.advance()
				continue
			}
			break
		}
	}

	if _, err := p.expect(lexer.TOKEN_RBRACKET, "expected ']' to close a bracketed list"); err != nil {
		return nil, err
	}
	return names, nil
}

// ------------------------------------------------------------------
// Contract definitions
// ------------------------------------------------------------------

func (p *Parser) parseContractDef() (*ast.ContractDef, error) {
	loc := p.loc()
	p.advance() // CONTRACT

	nameTok, err := p.expectIdentifierOrKeyword("expected contract name")
	if err != nil {
		return nil, err
	}

	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TOKEN_ARROW, "expected '->' after parameter list"); err != nil {
		return nil, err
	}
	returnType, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after contract signature"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_INDENT, "expected indented contract body"); err != nil {
		return nil, err
	}

	contract := &ast.ContractDef{Name: nameTok.Value, Params: params, ReturnType: returnType, Loc: loc}

	for !p.check(lexer.TOKEN_DEDENT) && !p.atEnd() {
		switch {
		case p.check(lexer.TOKEN_PRECONDITION):
			if contract.Precondition != nil {
				return nil, NewParseError("duplicate precondition section", p.current())
			}
			sec, err := p.parsePrecondition()
			if err != nil {
				return nil, err
			}
			contract.Precondition = sec
		case p.check(lexer.TOKEN_POSTCONDITION):
			if contract.Postcondition != nil {
				return nil, NewParseError("duplicate postcondition section", p.current())
			}
			sec, err := p.parsePostcondition()
			if err != nil {
				return nil, err
			}
			contract.Postcondition = sec
		case p.check(lexer.TOKEN_EFFECTS):
			if contract.Effects != nil {
				return nil, NewParseError("duplicate effects section", p.current())
			}
			sec, err := p.parseEffects()
			if err != nil {
				return nil, err
			}
			contract.Effects = sec
		case p.check(lexer.TOKEN_PERMISSIONS):
			if contract.Permissions != nil {
				return nil, NewParseError("duplicate permissions section", p.current())
			}
			sec, err := p.parsePermissionsBlock()
			if err != nil {
				return nil, err
			}
			contract.Permissions = sec
		case p.check(lexer.TOKEN_BODY):
			if contract.Body != nil {
				return nil, NewParseError("duplicate body section", p.current())
			}
			sec, err := p.parseBody()
			if err != nil {
				return nil, err
			}
			contract.Body = sec
		case p.check(lexer.TOKEN_ON_FAILURE):
			if contract.OnFailure != nil {
				return nil, NewParseError("duplicate on_failure section", p.current())
			}
			sec, err := p.parseOnFailure()
			if err != nil {
				return nil, err
			}
			contract.OnFailure = sec
		default:
			return nil, NewParseError(
				"expected a contract section (precondition, postcondition, effects, permissions, body, on_failure)",
				p.current())
		}
	}

	if _, err := p.expect(lexer.TOKEN_DEDENT, "expected dedent closing contract"); err != nil {
		return nil, err
	}
	return contract, nil
}

func (p *Parser) parsePrecondition() (*ast.Precondition, error) {
	loc := p.loc()
	p.advance() // PRECONDITION
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'precondition'"); err != nil {
		return nil, err
	}
	conditions, err := p.parseExpressionListBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Precondition{Conditions: conditions, Loc: loc}, nil
}

func (p *Parser) parsePostcondition() (*ast.Postcondition, error) {
	loc := p.loc()
	p.advance() // POSTCONDITION
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'postcondition'"); err != nil {
		return nil, err
	}
	conditions, err := p.parseExpressionListBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Postcondition{Conditions: conditions, Loc: loc}, nil
}

func (p *Parser) parseExpressionListBlock() ([]ast.Expr, error) {
	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline before indented expression block"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_INDENT, "expected indented expression block"); err != nil {
		return nil, err
	}

	var exprs []ast.Expr
	for !p.check(lexer.TOKEN_DEDENT) && !p.atEnd() {
		if p.check(lexer.TOKEN_NEWLINE) {
			p.advance()
			continue
		}
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if p.check(lexer.TOKEN_NEWLINE) {
			p.advance()
		}
	}
	if _, err := p.expect(lexer.TOKEN_DEDENT, "expected dedent closing expression block"); err != nil {
		return nil, err
	}
	return exprs, nil
}

// ------------------------------------------------------------------
// Effects
// ------------------------------------------------------------------

func (p *Parser) parseEffects() (*ast.Effects, error) {
	loc := p.loc()
	p.advance() // EFFECTS
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'effects'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after 'effects'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_INDENT, "expected indented effects block"); err != nil {
		return nil, err
	}

	effects := &ast.Effects{Loc: loc}
	for !p.check(lexer.TOKEN_DEDENT) && !p.atEnd() {
		switch {
		case p.check(lexer.TOKEN_NEWLINE):
			p.advance()
		case p.check(lexer.TOKEN_MODIFIES):
			d, err := p.parseModifiesEffect()
			if err != nil {
				return nil, err
			}
			effects.Declarations = append(effects.Declarations, d)
		case p.check(lexer.TOKEN_READS):
			d, err := p.parseReadsEffect()
			if err != nil {
				return nil, err
			}
			effects.Declarations = append(effects.Declarations, d)
		case p.check(lexer.TOKEN_EMITS):
			d, err := p.parseEmitsEffect()
			if err != nil {
				return nil, err
			}
			effects.Declarations = append(effects.Declarations, d)
		case p.check(lexer.TOKEN_TOUCHES_NOTHING_ELSE):
			tnLoc := p.loc()
			p.advance()
			if p.check(lexer.TOKEN_NEWLINE) {
				p.advance()
			}
			effects.Declarations = append(effects.Declarations, &ast.TouchesNothingElse{Loc: tnLoc})
		default:
			return nil, NewParseError(
				"expected modifies, reads, emits, or touches_nothing_else in effects block", p.current())
		}
	}
	if _, err := p.expect(lexer.TOKEN_DEDENT, "expected dedent closing effects block"); err != nil {
		return nil, err
	}
	return effects, nil
}

func (p *Parser) parseModifiesEffect() (*ast.ModifiesEffect, error) {
	loc := p.loc()
	p.advance() // MODIFIES
	targets, err := p.parseBracketedDottedNameList()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.ModifiesEffect{Targets: targets, Loc: loc}, nil
}

func (p *Parser) parseReadsEffect() (*ast.ReadsEffect, error) {
	loc := p.loc()
	p.advance() // READS
	targets, err := p.parseBracketedDottedNameList()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.ReadsEffect{Targets: targets, Loc: loc}, nil
}

func (p *Parser) parseEmitsEffect() (*ast.EmitsEffect, error) {
	loc := p.loc()
	p.advance() // EMITS
	name, err := p.expect(lexer.TOKEN_IDENTIFIER, "expected an event name after 'emits'")
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.EmitsEffect{EventType: name.Value, Loc: loc}, nil
}

// ------------------------------------------------------------------
// Permissions
// ------------------------------------------------------------------

func (p *Parser) parsePermissionsBlock() (*ast.PermissionsBlock, error) {
	loc := p.loc()
	p.advance() // PERMISSIONS
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'permissions'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after 'permissions'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_INDENT, "expected indented permissions block"); err != nil {
		return nil, err
	}

	block := &ast.PermissionsBlock{Loc: loc}
	for !p.check(lexer.TOKEN_DEDENT) && !p.atEnd() {
		switch {
		case p.check(lexer.TOKEN_NEWLINE):
			p.advance()
		case p.check(lexer.TOKEN_GRANTS):
			g, err := p.parseGrantsPermission()
			if err != nil {
				return nil, err
			}
			block.Grants = g
		case p.check(lexer.TOKEN_DENIES):
			d, err := p.parseDeniesPermission()
			if err != nil {
				return nil, err
			}
			block.Denies = d
		case p.check(lexer.TOKEN_ESCALATION):
			e, err := p.parseEscalationPolicy()
			if err != nil {
				return nil, err
			}
			block.Escalation = e
		default:
			return nil, NewParseError("expected grants, denies, or escalation in permissions block", p.current())
		}
	}
	if _, err := p.expect(lexer.TOKEN_DEDENT, "expected dedent closing permissions block"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseGrantsPermission() (*ast.GrantsPermission, error) {
	loc := p.loc()
	p.advance() // GRANTS
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'grants'"); err != nil {
		return nil, err
	}
	perms, err := p.parsePermissionExprList()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.GrantsPermission{Permissions: perms, Loc: loc}, nil
}

func (p *Parser) parseDeniesPermission() (*ast.DeniesPermission, error) {
	loc := p.loc()
	p.advance() // DENIES
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'denies'"); err != nil {
		return nil, err
	}
	perms, err := p.parsePermissionExprList()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.DeniesPermission{Permissions: perms, Loc: loc}, nil
}

func (p *Parser) parseEscalationPolicy() (*ast.EscalationPolicy, error) {
	loc := p.loc()
	p.advance() // ESCALATION
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'escalation'"); err != nil {
		return nil, err
	}

	var words []string
	for !p.check(lexer.TOKEN_NEWLINE) && !p.check(lexer.TOKEN_DEDENT) && !p.atEnd() {
		words = append(words, tokenRawValue(p.current()))
		p.advance()
	}
	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.EscalationPolicy{Policy: strings.Join(words, " "), Loc: loc}, nil
}

// parsePermissionExprList parses a bracketed list of opaque permission
// expressions: "[" expr ("," expr)* "]".
func (p *Parser) parsePermissionExprList() ([]string, error) {
	if _, err := p.expect(lexer.TOKEN_LBRACKET, "expected '[' to start permission list"); err != nil {
		return nil, err
	}

	var result []string
	if !p.check(lexer.TOKEN_RBRACKET) {
		for {
			expr, err := p.parsePermissionExpr()
			if err != nil {
				return nil, err
			}
			result = append(result, expr)
			if p.check(lexer.TOKEN_COMMA) {
				p.advance()
				continue
			}
			break
		}
	}

	if _, err := p.expect(lexer.TOKEN_RBRACKET, "expected ']' to close permission list"); err != nil {
		return nil, err
	}
	return result, nil
}

// parsePermissionExpr concatenates raw token values (no inserted
// whitespace) between commas/closing-bracket at paren depth 0, so that
// e.g. "read(record.name)" round-trips as the literal string
// "read(record.name)". Parsing permission expressions into a structured
// sub-grammar is explicitly out of scope for now.
func (p *Parser) parsePermissionExpr() (string, error) {
	var b strings.Builder
	depth := 0

	for !p.atEnd() {
		tok := p.current()
		if depth == 0 && (tok.Type == lexer.TOKEN_COMMA || tok.Type == lexer.TOKEN_RBRACKET) {
			break
		}
		if tok.Type == lexer.TOKEN_NEWLINE {
			p.advance()
			continue
		}
		if tok.Type == lexer.TOKEN_LPAREN {
			depth++
		}
		if tok.Type == lexer.TOKEN_RPAREN {
			depth--
		}
		b.WriteString(tokenRawValue(tok))
		p.advance()
	}

	if b.Len() == 0 {
		return "", NewParseError("expected a permission expression", p.current())
	}
	return b.String(), nil
}

// ------------------------------------------------------------------
// Body / on_failure
// ------------------------------------------------------------------

func (p *Parser) parseBody() (*ast.Body, error) {
	loc := p.loc()
	p.advance() // BODY
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'body'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after 'body'"); err != nil {
		return nil, err
	}
	stmts, err := p.parseStatementBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Body{Statements: stmts, Loc: loc}, nil
}

func (p *Parser) parseOnFailure() (*ast.OnFailure, error) {
	loc := p.loc()
	p.advance() // ON_FAILURE
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'on_failure'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after 'on_failure'"); err != nil {
		return nil, err
	}
	stmts, err := p.parseStatementBlock()
	if err != nil {
		return nil, err
	}
	return &ast.OnFailure{Statements: stmts, Loc: loc}, nil
}

func (p *Parser) parseStatementBlock() ([]ast.Statement, error) {
	if _, err := p.expect(lexer.TOKEN_INDENT, "expected an indented block"); err != nil {
		return nil, err
	}

	var stmts []ast.Statement
	for !p.check(lexer.TOKEN_DEDENT) && !p.atEnd() {
		if p.check(lexer.TOKEN_NEWLINE) {
			p.advance()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	if _, err := p.expect(lexer.TOKEN_DEDENT, "expected a dedent closing the block"); err != nil {
		return nil, err
	}
	return stmts, nil
}

// ------------------------------------------------------------------
// Type definitions
// ------------------------------------------------------------------

func (p *Parser) parseTypeDef() (*ast.TypeDef, error) {
	loc := p.loc()
	p.advance() // TYPE

	nameTok, err := p.expectIdentifierOrKeyword("expected type name")
	if err != nil {
		return nil, err
	}

	var base ast.TypeExpr
	if p.check(lexer.TOKEN_COLON) {
		p.advance()
		b, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		base = b
	}

	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after type declaration"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_INDENT, "expected indented type body"); err != nil {
		return nil, err
	}

	td := &ast.TypeDef{Name: nameTok.Value, BaseType: base, Loc: loc}
	for !p.check(lexer.TOKEN_DEDENT) && !p.atEnd() {
		switch {
		case p.check(lexer.TOKEN_NEWLINE):
			p.advance()
		case p.check(lexer.TOKEN_FIELDS):
			if td.Fields != nil {
				return nil, NewParseError("duplicate fields section", p.current())
			}
			fields, err := p.parseFieldsSection()
			if err != nil {
				return nil, err
			}
			td.Fields = fields
		case p.check(lexer.TOKEN_FLOW_CONSTRAINTS):
			if td.FlowConstraints != nil {
				return nil, NewParseError("duplicate flow_constraints section", p.current())
			}
			fcs, err := p.parseFlowConstraintsSection()
			if err != nil {
				return nil, err
			}
			td.FlowConstraints = fcs
		default:
			return nil, NewParseError("expected 'fields' or 'flow_constraints' in type body", p.current())
		}
	}

	if _, err := p.expect(lexer.TOKEN_DEDENT, "expected dedent closing type body"); err != nil {
		return nil, err
	}
	return td, nil
}

func (p *Parser) parseFieldsSection() ([]*ast.FieldDef, error) {
	p.advance() // FIELDS
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'fields'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after 'fields'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_INDENT, "expected indented fields block"); err != nil {
		return nil, err
	}

	var fields []*ast.FieldDef
	for !p.check(lexer.TOKEN_DEDENT) && !p.atEnd() {
		if p.check(lexer.TOKEN_NEWLINE) {
			p.advance()
			continue
		}
		f, err := p.parseFieldDef()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if _, err := p.expect(lexer.TOKEN_DEDENT, "expected dedent closing fields block"); err != nil {
		return nil, err
	}
	return fields, nil
}

func (p *Parser) parseFieldDef() (*ast.FieldDef, error) {
	loc := p.loc()
	nameTok, err := p.expectIdentifierOrKeyword("expected field name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after field name"); err != nil {
		return nil, err
	}
	typeExpr, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.FieldDef{Name: nameTok.Value, Type: typeExpr, Loc: loc}, nil
}

func (p *Parser) parseFlowConstraintsSection() ([]ast.FlowConstraint, error) {
	p.advance() // FLOW_CONSTRAINTS
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'flow_constraints'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after 'flow_constraints'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_INDENT, "expected indented flow_constraints block"); err != nil {
		return nil, err
	}

	var fcs []ast.FlowConstraint
	for !p.check(lexer.TOKEN_DEDENT) && !p.atEnd() {
		if p.check(lexer.TOKEN_NEWLINE) {
			p.advance()
			continue
		}
		fc, err := p.parseFlowConstraint()
		if err != nil {
			return nil, err
		}
		fcs = append(fcs, fc)
	}
	if _, err := p.expect(lexer.TOKEN_DEDENT, "expected dedent closing flow_constraints block"); err != nil {
		return nil, err
	}
	return fcs, nil
}

func (p *Parser) parseFlowConstraint() (ast.FlowConstraint, error) {
	loc := p.loc()
	switch {
	case p.check(lexer.TOKEN_NEVER_FLOWS_TO):
		p.advance()
		if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'never_flows_to'"); err != nil {
			return nil, err
		}
		dests, err := p.parseBracketedDottedNameList()
		if err != nil {
			return nil, err
		}
		if p.check(lexer.TOKEN_NEWLINE) {
			p.advance()
		}
		return &ast.NeverFlowsTo{Destinations: dests, Loc: loc}, nil
	case p.check(lexer.TOKEN_REQUIRES_CONTEXT):
		p.advance()
		if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'requires_context'"); err != nil {
			return nil, err
		}
		ctx, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		if p.check(lexer.TOKEN_NEWLINE) {
			p.advance()
		}
		return &ast.RequiresContext{Context: ctx, Loc: loc}, nil
	default:
		return nil, NewParseError("expected 'never_flows_to' or 'requires_context'", p.current())
	}
}

// ------------------------------------------------------------------
// Shared declarations
// ------------------------------------------------------------------

func (p *Parser) parseSharedDecl() (*ast.SharedDecl, error) {
	loc := p.loc()
	p.advance() // SHARED

	nameTok, err := p.expectIdentifierOrKeyword("expected shared declaration name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after shared declaration name"); err != nil {
		return nil, err
	}
	typeNameTok, err := p.expectIdentifierOrKeyword("expected shared declaration type")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after shared declaration header"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_INDENT, "expected indented shared declaration block"); err != nil {
		return nil, err
	}

	decl := &ast.SharedDecl{Name: nameTok.Value, TypeName: typeNameTok.Value, Loc: loc}
	for !p.check(lexer.TOKEN_DEDENT) && !p.atEnd() {
		switch {
		case p.check(lexer.TOKEN_NEWLINE):
			p.advance()
		case p.check(lexer.TOKEN_ACCESS):
			p.advance()
			if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'access'"); err != nil {
				return nil, err
			}
			v, err := p.expectIdentifierOrKeyword("expected access mode")
			if err != nil {
				return nil, err
			}
			decl.Access = v.Value
			if p.check(lexer.TOKEN_NEWLINE) {
				p.advance()
			}
		case p.check(lexer.TOKEN_ISOLATION):
			p.advance()
			if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'isolation'"); err != nil {
				return nil, err
			}
			v, err := p.expectIdentifierOrKeyword("expected isolation level")
			if err != nil {
				return nil, err
			}
			decl.Isolation = v.Value
			if p.check(lexer.TOKEN_NEWLINE) {
				p.advance()
			}
		case p.check(lexer.TOKEN_AUDIT):
			p.advance()
			if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after 'audit'"); err != nil {
				return nil, err
			}
			v, err := p.expectIdentifierOrKeyword("expected audit level")
			if err != nil {
				return nil, err
			}
			decl.Audit = v.Value
			if p.check(lexer.TOKEN_NEWLINE) {
				p.advance()
			}
		default:
			return nil, NewParseError("expected access, isolation, or audit in shared declaration", p.current())
		}
	}

	if _, err := p.expect(lexer.TOKEN_DEDENT, "expected dedent closing shared declaration"); err != nil {
		return nil, err
	}
	return decl, nil
}
