package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/covenant-lang/covenant/internal/cli/ui"
	"github.com/covenant-lang/covenant/internal/compiler/lexer"
)

var tokenizeJSON bool

func init() {
	tokenizeCmd.Flags().BoolVar(&tokenizeJSON, "json", false, "output tokens as JSON")
}

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize <file.cov>",
	Short: "Lex a Covenant source file and print its tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		tokens, err := lexer.New(string(source), path).Tokenize()
		if err != nil {
			if lexErr, ok := err.(*lexer.LexError); ok {
				ui.WriteError(os.Stderr, ui.ErrorOptions{
					Level:   ui.ErrorLevelError,
					Context: "LEX",
					Problem: lexErr.Error(),
					NoColor: flagNoColor,
				})
				os.Exit(1)
			}
			return err
		}

		if wantsJSON(cmd, tokenizeJSON) {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(tokens)
		}

		table := ui.NewTable(os.Stdout, []string{"LINE", "COL", "TYPE", "VALUE"}, &ui.TableOptions{NoColor: flagNoColor})
		for _, tok := range tokens {
			table.AddRow(fmt.Sprintf("%d", tok.Line), fmt.Sprintf("%d", tok.Column), tok.Type.String(), tok.Value)
		}
		table.Render()
		return nil
	},
}
