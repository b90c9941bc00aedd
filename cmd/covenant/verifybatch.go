package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/covenant-lang/covenant/internal/cli/ui"
	"github.com/covenant-lang/covenant/internal/compiler/checker"
)

var (
	verifyBatchJSON bool
	verifyBatchJobs int
)

func init() {
	verifyBatchCmd.Flags().BoolVar(&verifyBatchJSON, "json", false, "output results as JSON")
	verifyBatchCmd.Flags().IntVar(&verifyBatchJobs, "jobs", 0, "number of files to verify concurrently (0 = number of CPUs)")
}

type fileResult struct {
	File    string                       `json:"file"`
	Results []checker.VerificationResult `json:"results"`
	Err     string                       `json:"error,omitempty"`
}

var verifyBatchCmd = &cobra.Command{
	Use:   "verify-batch <file.cov> [file.cov...]",
	Short: "Run the Intent Verification Engine over multiple files concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs := verifyBatchJobs
		if jobs <= 0 {
			jobs = runtime.NumCPU()
		}

		jsonOutput := wantsJSON(cmd, verifyBatchJSON)

		results := make([]fileResult, len(args))
		var mu sync.Mutex

		var bar *ui.ProgressBar
		if !jsonOutput && !flagQuiet {
			bar = ui.NewProgressBar(os.Stderr, ui.ProgressBarOptions{
				Total:   len(args),
				Message: "verifying",
				NoColor: flagNoColor,
			})
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(jobs)

		for i, path := range args {
			i, path := i, path
			g.Go(func() error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				fr := fileResult{File: path}
				program, err := parseFile(path)
				if err != nil {
					fr.Err = err.Error()
				} else {
					fr.Results = checker.VerifyProgram(program, path)
				}

				mu.Lock()
				results[i] = fr
				if bar != nil {
					bar.Add(1)
				}
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil && err != context.Canceled {
			return err
		}
		if bar != nil {
			bar.Finish()
		}

		sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })

		if jsonOutput {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(results); err != nil {
				return err
			}
		} else {
			for _, fr := range results {
				fmt.Printf("== %s ==\n", fr.File)
				if fr.Err != "" {
					ui.WriteError(os.Stdout, ui.ErrorOptions{
						Level:   ui.ErrorLevelError,
						Context: "PARSE",
						Problem: fr.Err,
						NoColor: flagNoColor,
					})
					continue
				}
				if len(fr.Results) == 0 {
					fmt.Println(ui.FormatSuccess("no findings", flagNoColor))
					continue
				}
				ui.RenderVerificationResults(os.Stdout, fr.Results, flagNoColor)
			}
		}

		for _, fr := range results {
			if fr.Err != "" || hasErrorSeverity(fr.Results) {
				os.Exit(1)
			}
		}
		return nil
	},
}
