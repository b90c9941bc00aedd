// Package parser implements the Covenant language parser, transforming
// token streams into immutable Abstract Syntax Trees.
//
// Unlike a typical recursive-descent parser with panic-mode recovery,
// this parser performs no error recovery: the first syntax error aborts
// parsing immediately with a located ParseError. A partially parsed
// program is never returned — callers either get a complete Program or
// an error.
package parser

import (
	"fmt"

	"github.com/covenant-lang/covenant/internal/compiler/ast"
	"github.com/covenant-lang/covenant/internal/compiler/lexer"
)

// ParseError represents an error encountered during parsing.
type ParseError struct {
	Message  string
	Location ast.SourceLocation
	Token    lexer.Token
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s (near %q)",
		e.Location.File, e.Location.Line, e.Location.Column, e.Message, e.Token.Value)
}

// NewParseError creates a new parse error located at token.
func NewParseError(message string, token lexer.Token) *ParseError {
	return &ParseError{
		Message:  message,
		Location: ast.TokenLocation(token),
		Token:    token,
	}
}
