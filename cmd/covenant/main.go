package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cliconfig "github.com/covenant-lang/covenant/internal/cli/config"
	clilog "github.com/covenant-lang/covenant/internal/cli/log"
)

var (
	// Version information - set at build time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

var (
	flagNoColor bool
	flagQuiet   bool
	flagVerbose bool

	appConfig *cliconfig.Config
	appLogger *zap.Logger = zap.NewNop()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "covenant",
		Short: "Covenant contract language compiler front-end",
		Long: `Covenant is a contract-oriented specification language. Its
compiler front-end lexes and parses .cov source files and verifies that
a contract's declared intent stays consistent with what its body
actually does.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliconfig.Load()
			if err != nil {
				return fmt.Errorf("loading covenant.yaml: %w", err)
			}
			appConfig = cfg

			if !cmd.Flags().Changed("no-color") {
				flagNoColor = !cfg.Output.Color
			}

			appLogger = clilog.New(clilog.Options{
				Verbose: flagVerbose,
				Quiet:   flagQuiet,
				NoColor: flagNoColor,
			})
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fingerprintCmd)
	rootCmd.AddCommand(verifyBatchCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// wantsJSON resolves a command's --json flag against covenant.yaml's
// output.format default: an explicit flag always wins, otherwise the
// config file's format applies.
func wantsJSON(cmd *cobra.Command, flagVal bool) bool {
	if cmd.Flags().Changed("json") {
		return flagVal
	}
	if appConfig != nil {
		return appConfig.Output.Format == "json"
	}
	return flagVal
}
