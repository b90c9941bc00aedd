package parser

import (
	"github.com/covenant-lang/covenant/internal/compiler/ast"
	"github.com/covenant-lang/covenant/internal/compiler/lexer"
)

// Expression precedence, loosest to tightest:
//
//	or
//	and
//	not
//	comparison (==, !=, <, <=, >, >=)
//	has
//	additive (+, -)
//	multiplicative (*, /)
//	unary (-)
//	postfix (., call)
//	primary

func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseOrExpr()
}

func (p *Parser) parseOrExpr() (ast.Expr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TOKEN_OR) {
		loc := p.loc()
		p.advance()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Operator: "or", Right: right, Loc: loc}
	}
	return left, nil
}

func (p *Parser) parseAndExpr() (ast.Expr, error) {
	left, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TOKEN_AND) {
		loc := p.loc()
		p.advance()
		right, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Operator: "and", Right: right, Loc: loc}
	}
	return left, nil
}

func (p *Parser) parseNotExpr() (ast.Expr, error) {
	if p.check(lexer.TOKEN_NOT) {
		loc := p.loc()
		p.advance()
		operand, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Operator: "not", Operand: operand, Loc: loc}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseHasExpr()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TOKEN_EQUALS) || p.check(lexer.TOKEN_NOT_EQUALS) ||
		p.check(lexer.TOKEN_LESS_THAN) || p.check(lexer.TOKEN_LESS_EQUAL) ||
		p.check(lexer.TOKEN_GREATER_THAN) || p.check(lexer.TOKEN_GREATER_EQUAL) {
		loc := p.loc()
		op := tokenOperatorString(p.current().Type)
		p.advance()
		right, err := p.parseHasExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Operator: op, Right: right, Loc: loc}
	}
	return left, nil
}

func (p *Parser) parseHasExpr() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TOKEN_HAS) {
		loc := p.loc()
		p.advance()
		capability, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.HasExpr{Subject: left, Capability: capability, Loc: loc}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TOKEN_PLUS) || p.check(lexer.TOKEN_MINUS) {
		loc := p.loc()
		op := tokenOperatorString(p.current().Type)
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Operator: op, Right: right, Loc: loc}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TOKEN_STAR) || p.check(lexer.TOKEN_SLASH) {
		loc := p.loc()
		op := tokenOperatorString(p.current().Type)
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Operator: op, Right: right, Loc: loc}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.check(lexer.TOKEN_MINUS) {
		loc := p.loc()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Operator: "-", Operand: operand, Loc: loc}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.check(lexer.TOKEN_DOT):
			loc := p.loc()
			p.advance()
			nameTok, err := p.expectIdentifierOrKeyword("expected a field or method name after '.'")
			if err != nil {
				return nil, err
			}
			if p.check(lexer.TOKEN_LPAREN) {
				args, err := p.parseArgumentList()
				if err != nil {
					return nil, err
				}
				expr = &ast.MethodCall{Object: expr, Method: nameTok.Value, Arguments: args, Loc: loc}
			} else {
				expr = &ast.FieldAccess{Object: expr, FieldName: nameTok.Value, Loc: loc}
			}
		case p.check(lexer.TOKEN_LPAREN) && isCallable(expr):
			loc := expr.Location()
			args, err := p.parseArgumentList()
			if err != nil {
				return nil, err
			}
			expr = &ast.FunctionCall{Function: expr, Arguments: args, Loc: loc}
		default:
			return expr, nil
		}
	}
}

// isCallable reports whether expr may be directly followed by a call's
// argument list — only bare names and dotted paths can be, never
// literals or already-called expressions.
func isCallable(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.FieldAccess:
		return true
	default:
		return false
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	loc := p.loc()
	tok := p.current()

	switch tok.Type {
	case lexer.TOKEN_STRING:
		p.advance()
		return &ast.StringLiteral{Value: tok.Value, Loc: loc}, nil
	case lexer.TOKEN_INTEGER, lexer.TOKEN_FLOAT:
		p.advance()
		return &ast.NumberLiteral{Value: tok.Value, Loc: loc}, nil
	case lexer.TOKEN_TRUE:
		p.advance()
		return &ast.BoolLiteral{Value: true, Loc: loc}, nil
	case lexer.TOKEN_FALSE:
		p.advance()
		return &ast.BoolLiteral{Value: false, Loc: loc}, nil
	case lexer.TOKEN_LBRACKET:
		return p.parseListLiteral()
	case lexer.TOKEN_LPAREN:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TOKEN_RPAREN, "expected ')' closing parenthesized expression"); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.TOKEN_OLD:
		p.advance()
		if _, err := p.expect(lexer.TOKEN_LPAREN, "expected '(' after 'old'"); err != nil {
			return nil, err
		}
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TOKEN_RPAREN, "expected ')' closing old()"); err != nil {
			return nil, err
		}
		return &ast.OldExpr{Inner: inner, Loc: loc}, nil
	case lexer.TOKEN_IDENTIFIER:
		p.advance()
		return &ast.Identifier{Name: tok.Value, Loc: loc}, nil
	default:
		if softKeywords[tok.Type] {
			p.advance()
			return &ast.Identifier{Name: tok.Value, Loc: loc}, nil
		}
		return nil, NewParseError("expected an expression", tok)
	}
}

func (p *Parser) parseListLiteral() (*ast.ListLiteral, error) {
	loc := p.loc()
	if _, err := p.expect(lexer.TOKEN_LBRACKET, "expected '['"); err != nil {
		return nil, err
	}

	var elements []ast.Expr
	if !p.check(lexer.TOKEN_RBRACKET) {
		for {
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, e)
			if p.check(lexer.TOKEN_COMMA) {
				p.advance()
				continue
			}
			break
		}
	}

	if _, err := p.expect(lexer.TOKEN_RBRACKET, "expected ']' closing list literal"); err != nil {
		return nil, err
	}
	return &ast.ListLiteral{Elements: elements, Loc: loc}, nil
}

// parseArgumentList parses a call's parenthesized argument list,
// detecting keyword arguments as "name: value" pairs.
func (p *Parser) parseArgumentList() ([]ast.Argument, error) {
	if _, err := p.expect(lexer.TOKEN_LPAREN, "expected '(' to start argument list"); err != nil {
		return nil, err
	}

	var args []ast.Argument
	if !p.check(lexer.TOKEN_RPAREN) {
		for {
			arg, err := p.parseSingleArgument()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.check(lexer.TOKEN_COMMA) {
				p.advance()
				continue
			}
			break
		}
	}

	if _, err := p.expect(lexer.TOKEN_RPAREN, "expected ')' closing argument list"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseSingleArgument() (ast.Argument, error) {
	tok := p.current()
	isName := tok.Type == lexer.TOKEN_IDENTIFIER || softKeywords[tok.Type]
	if isName && p.peekAt(1).Type == lexer.TOKEN_COLON {
		p.advance() // name
		p.advance() // ':'
		value, err := p.parseExpression()
		if err != nil {
			return ast.Argument{}, err
		}
		return ast.Argument{Name: tok.Value, Value: value}, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return ast.Argument{}, err
	}
	return ast.Argument{Value: value}, nil
}

func tokenOperatorString(tt lexer.TokenType) string {
	switch tt {
	case lexer.TOKEN_EQUALS:
		return "=="
	case lexer.TOKEN_NOT_EQUALS:
		return "!="
	case lexer.TOKEN_LESS_THAN:
		return "<"
	case lexer.TOKEN_LESS_EQUAL:
		return "<="
	case lexer.TOKEN_GREATER_THAN:
		return ">"
	case lexer.TOKEN_GREATER_EQUAL:
		return ">="
	case lexer.TOKEN_PLUS:
		return "+"
	case lexer.TOKEN_MINUS:
		return "-"
	case lexer.TOKEN_STAR:
		return "*"
	case lexer.TOKEN_SLASH:
		return "/"
	default:
		return tt.String()
	}
}

// ------------------------------------------------------------------
// Statements (dispatch + leaf forms)
// ------------------------------------------------------------------

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.check(lexer.TOKEN_RETURN):
		return p.parseReturnStmt()
	case p.check(lexer.TOKEN_EMIT):
		return p.parseEmitStmt()
	case p.check(lexer.TOKEN_IF):
		return p.parseIfStmt()
	case p.check(lexer.TOKEN_FOR):
		return p.parseForStmt()
	case p.check(lexer.TOKEN_WHILE):
		return p.parseWhileStmt()
	default:
		return p.parseExprOrAssignment()
	}
}

func (p *Parser) parseReturnStmt() (*ast.ReturnStmt, error) {
	loc := p.loc()
	p.advance() // RETURN

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.ReturnStmt{Value: value, Loc: loc}, nil
}

func (p *Parser) parseEmitStmt() (*ast.EmitStmt, error) {
	loc := p.loc()
	p.advance() // EMIT
	event, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.EmitStmt{Event: event, Loc: loc}, nil
}

func (p *Parser) parseIfStmt() (*ast.IfStmt, error) {
	loc := p.loc()
	p.advance() // IF
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after if condition"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after if condition"); err != nil {
		return nil, err
	}
	thenBody, err := p.parseStatementBlock()
	if err != nil {
		return nil, err
	}

	ifStmt := &ast.IfStmt{Condition: cond, ThenBody: thenBody, Loc: loc}

	checkpoint := p.pos
	p.skipNewlines()
	if p.check(lexer.TOKEN_ELSE) {
		p.advance()
		if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after else"); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after else"); err != nil {
			return nil, err
		}
		elseBody, err := p.parseStatementBlock()
		if err != nil {
			return nil, err
		}
		ifStmt.ElseBody = elseBody
	} else {
		p.pos = checkpoint
	}

	return ifStmt, nil
}

func (p *Parser) parseForStmt() (*ast.ForStmt, error) {
	loc := p.loc()
	p.advance() // FOR
	varTok, err := p.expectIdentifierOrKeyword("expected a loop variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_IN, "expected 'in' after loop variable"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after for header"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after for header"); err != nil {
		return nil, err
	}
	body, err := p.parseStatementBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Var: varTok.Value, Iterable: iterable, LoopBody: body, Loc: loc}, nil
}

func (p *Parser) parseWhileStmt() (*ast.WhileStmt, error) {
	loc := p.loc()
	p.advance() // WHILE
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_COLON, "expected ':' after while condition"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TOKEN_NEWLINE, "expected newline after while condition"); err != nil {
		return nil, err
	}
	body, err := p.parseStatementBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Condition: cond, LoopBody: body, Loc: loc}, nil
}

func (p *Parser) parseExprOrAssignment() (ast.Statement, error) {
	loc := p.loc()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.check(lexer.TOKEN_ASSIGN) {
		p.advance()
		target, err := exprToAssignmentTarget(expr, p.current())
		if err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.check(lexer.TOKEN_NEWLINE) {
			p.advance()
		}
		return &ast.Assignment{Target: target, Value: value, Loc: loc}, nil
	}

	if p.check(lexer.TOKEN_NEWLINE) {
		p.advance()
	}
	return &ast.ExprStmt{Expr: expr, Loc: loc}, nil
}

// exprToAssignmentTarget validates that expr is an Identifier or a chain
// of FieldAccess nodes rooted in one, rejecting call expressions and
// literals as assignment targets.
func exprToAssignmentTarget(expr ast.Expr, errTok lexer.Token) (ast.Expr, error) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e, nil
	case *ast.FieldAccess:
		if _, err := exprToAssignmentTarget(e.Object, errTok); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, NewParseError("invalid assignment target", errTok)
	}
}

// ------------------------------------------------------------------
// Type expressions and parameter lists
// ------------------------------------------------------------------

func (p *Parser) parseTypeExpr() (ast.TypeExpr, error) {
	loc := p.loc()
	nameTok, err := p.expectIdentifierOrKeyword("expected a type name")
	if err != nil {
		return nil, err
	}

	var base ast.TypeExpr = &ast.SimpleType{Name: nameTok.Value, Loc: loc}

	if p.check(lexer.TOKEN_LESS_THAN) {
		p.advance()
		var params []ast.TypeExpr
		for {
			param, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if p.check(lexer.TOKEN_COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.TOKEN_GREATER_THAN, "expected '>' closing type parameters"); err != nil {
			return nil, err
		}
		if nameTok.Value == "List" && len(params) == 1 {
			base = &ast.ListType{ElementType: params[0], Loc: loc}
		} else {
			base = &ast.GenericType{Name: nameTok.Value, Params: params, Loc: loc}
		}
	}

	if p.check(lexer.TOKEN_LBRACKET) {
		p.advance()
		var annotations []string
		for {
			a, err := p.expectIdentifierOrKeyword("expected a type annotation")
			if err != nil {
				return nil, err
			}
			annotations = append(annotations, a.Value)
			if p.check(lexer.TOKEN_COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.TOKEN_RBRACKET, "expected ']' closing type annotations"); err != nil {
			return nil, err
		}
		base = &ast.AnnotatedType{Base: base, Annotations: annotations, Loc: loc}
	}

	return base, nil
}

func (p *Parser) parseParamList() ([]*ast.Param, error) {
	if _, err := p.expect(lexer.TOKEN_LPAREN, "expected '(' to start parameter list"); err != nil {
		return nil, err
	}

	var params []*ast.Param
	if !p.check(lexer.TOKEN_RPAREN) {
		for {
			param, err := p.parseParam()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if p.check(lexer.TOKEN_COMMA) {
				p.advance()
				continue
			}
			break
		}
	}

	if _, err := p.expect(lexer.TOKEN_RPAREN, "expected ')' closing parameter list"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseParam() (*ast.Param, error) {
	loc := p.loc()
	nameTok, err := p.expectIdentifierOrKeyword("expected a parameter name")
	if err != nil {
		return nil, err
	}

	var typeExpr ast.TypeExpr
	if p.check(lexer.TOKEN_COLON) {
		p.advance()
		t, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		typeExpr = t
	}
	return &ast.Param{Name: nameTok.Value, Type: typeExpr, Loc: loc}, nil
}
