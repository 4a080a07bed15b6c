package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rampr-project/rampr-cli/internal/bridge"
)

var sectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "Inspect the canonical IO sector list",
}

var sectorsVerifyCodes string

var sectorsVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the canonical sector code file",
	Long:  "Loads the canonical IO sector list and reports the code count, duplicates removed, and the first and last codes.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := firstNonEmpty(sectorsVerifyCodes, cfg.Crosswalk.Codes)

		codes, err := bridge.LoadSectorCodes(path)
		if err != nil {
			return eris.Wrap(err, "sectors verify")
		}

		fmt.Print(formatSectorSummary(path, codes))
		return nil
	},
}

func init() {
	sectorsVerifyCmd.Flags().StringVar(&sectorsVerifyCodes, "codes", "", "canonical sector code file (default: crosswalk.codes config)")
	sectorsCmd.AddCommand(sectorsVerifyCmd)
	rootCmd.AddCommand(sectorsCmd)
}

func formatSectorSummary(path string, l *bridge.SectorList) string {
	codes := l.Codes()

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d canonical sectors", path, len(codes))
	if d := l.Duplicates(); d > 0 {
		fmt.Fprintf(&b, " (%d duplicate(s) removed)", d)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "first: %s\n", codes[0])
	fmt.Fprintf(&b, "last:  %s\n", codes[len(codes)-1])
	return b.String()
}
