package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/covenant-lang/covenant/internal/cli/ui"
	"github.com/covenant-lang/covenant/internal/compiler/checker"
	"github.com/covenant-lang/covenant/internal/compiler/hasher"
)

var checkJSON bool

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output verification results as JSON")
}

var checkCmd = &cobra.Command{
	Use:   "check <file.cov>",
	Short: "Verify that a contract's declared intent matches its behavior",
	Long: `check parses a Covenant source file and runs the Intent
Verification Engine over every contract it declares, reporting any
mismatch between what the file header and effects block declare and
what the contract body actually does.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		program, err := parseFile(path)
		if err != nil {
			writeParseError(path, err)
			os.Exit(1)
		}

		appLogger.Debug("verifying contracts", zap.String("file", path), zap.Int("contracts", len(program.Contracts)))

		results := checker.VerifyProgram(program, path)

		if wantsJSON(cmd, checkJSON) {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(results); err != nil {
				return err
			}
		} else if len(results) == 0 {
			fmt.Println(ui.FormatSuccess(fmt.Sprintf("%s: no findings", path), flagNoColor))
		} else {
			ui.RenderVerificationResults(os.Stdout, results, flagNoColor)
		}

		if !wantsJSON(cmd, checkJSON) {
			intentText := ""
			if program.Header != nil && program.Header.Intent != nil {
				intentText = program.Header.Intent.Text
			}
			for _, c := range program.Contracts {
				h, err := hasher.ComputeIntentHash(c, intentText, nil)
				if err != nil {
					return err
				}
				fmt.Printf("%s: intent hash %s\n", c.Name, h.CombinedHash)
			}
		}

		if hasErrorSeverity(results) {
			os.Exit(1)
		}
		return nil
	},
}

func hasErrorSeverity(results []checker.VerificationResult) bool {
	for _, r := range results {
		if r.Severity == checker.Error || r.Severity == checker.Critical {
			return true
		}
	}
	return false
}
