package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/covenant-lang/covenant/internal/compiler/fingerprint"
	"github.com/covenant-lang/covenant/internal/compiler/hasher"
)

var fingerprintContract string

func init() {
	fingerprintCmd.Flags().StringVar(&fingerprintContract, "contract", "", "only fingerprint the named contract")
}

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint <file.cov>",
	Short: "Print the behavioral fingerprint of a contract's body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		program, err := parseFile(path)
		if err != nil {
			writeParseError(path, err)
			os.Exit(1)
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		intentText := ""
		if program.Header != nil && program.Header.Intent != nil {
			intentText = program.Header.Intent.Text
		}

		found := false
		for _, c := range program.Contracts {
			if fingerprintContract != "" && c.Name != fingerprintContract {
				continue
			}
			found = true
			fp := fingerprint.FingerprintContract(c)
			h, err := hasher.ComputeIntentHash(c, intentText, fp)
			if err != nil {
				return err
			}
			if err := encoder.Encode(struct {
				Contract    string                            `json:"contract"`
				Fingerprint fingerprint.CanonicalFingerprint `json:"fingerprint"`
				IntentHash  map[string]string                `json:"intent_hash"`
			}{c.Name, fp.ToCanonicalDict(), h.ToDict()}); err != nil {
				return err
			}
		}

		if fingerprintContract != "" && !found {
			return fmt.Errorf("no contract named %q in %s", fingerprintContract, path)
		}
		return nil
	},
}
