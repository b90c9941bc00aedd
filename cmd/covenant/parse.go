package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/covenant-lang/covenant/internal/cli/ui"
	"github.com/covenant-lang/covenant/internal/compiler/ast"
	"github.com/covenant-lang/covenant/internal/compiler/lexer"
	"github.com/covenant-lang/covenant/internal/compiler/parser"
)

var parseJSON bool

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "output the parsed program as JSON")
}

var parseCmd = &cobra.Command{
	Use:   "parse <file.cov>",
	Short: "Parse a Covenant source file and print its AST",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		program, err := parseFile(path)
		if err != nil {
			writeParseError(path, err)
			os.Exit(1)
		}

		if wantsJSON(cmd, parseJSON) {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(program)
		}

		fmt.Printf("contracts: %d, types: %d, shared: %d\n", len(program.Contracts), len(program.TypeDefs), len(program.Shared))
		for _, c := range program.Contracts {
			fmt.Printf("  contract %s (%s:%d)\n", c.Name, path, c.Loc.Line)
		}
		return nil
	},
}

func parseFile(path string) (*ast.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	tokens, err := lexer.New(string(source), path).Tokenize()
	if err != nil {
		return nil, err
	}

	program, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, err
	}
	return program, nil
}

func writeParseError(path string, err error) {
	ui.WriteError(os.Stderr, ui.ErrorOptions{
		Level:   ui.ErrorLevelError,
		Context: "PARSE",
		Problem: fmt.Sprintf("%s: %s", path, err),
		NoColor: flagNoColor,
	})
}
