package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rampr-project/rampr-cli/internal/bridge"
)

var (
	validateCodes     string
	validateTolerance float64
)

var crosswalkValidateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate built bridge CSVs",
	Long: `Re-read one or more built bridge CSVs and run the structural checks:
weight bounds, per-group summation, key uniqueness, the per-area sector
cap, and canonical subsequence ordering. Files are checked concurrently;
the command exits non-zero if any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		codesPath := firstNonEmpty(validateCodes, cfg.Crosswalk.Codes)
		codes, err := bridge.LoadSectorCodes(codesPath)
		if err != nil {
			return eris.Wrap(err, "validate: load sector codes")
		}

		g, _ := errgroup.WithContext(ctx)

		var mu sync.Mutex
		failures := make(map[string][]bridge.Violation)

		for _, path := range args {
			g.Go(func() error {
				rows, err := bridge.ReadBridgeCSV(path)
				if err != nil {
					return eris.Wrapf(err, "validate: read %s", path)
				}
				if vs := bridge.ValidateBridge(rows, codes, validateTolerance); len(vs) > 0 {
					mu.Lock()
					failures[path] = vs
					mu.Unlock()
				}
				zap.L().Debug("file checked", zap.String("path", path), zap.Int("rows", len(rows)))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if len(failures) == 0 {
			fmt.Printf("%d file(s) valid\n", len(args))
			return nil
		}

		printViolations(os.Stdout, args, failures)
		return eris.Errorf("validate: %d of %d file(s) failed", len(failures), len(args))
	},
}

func init() {
	crosswalkValidateCmd.Flags().StringVar(&validateCodes, "codes", "", "canonical sector code file (default: crosswalk.codes config)")
	crosswalkValidateCmd.Flags().Float64Var(&validateTolerance, "tolerance", bridge.DefaultTolerance, "allowed drift in group weight sums")
	crosswalkCmd.AddCommand(crosswalkValidateCmd)
}

// printViolations lists each failing file's violations in input order.
func printViolations(w io.Writer, paths []string, failures map[string][]bridge.Violation) {
	for _, path := range paths {
		vs, ok := failures[path]
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: %d violation(s)\n", path, len(vs))
		for _, v := range vs {
			_, _ = fmt.Fprintf(w, "  %s\n", v)
		}
	}
}
