package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rampr-project/rampr-cli/internal/store"
)

var statusLimit int

var crosswalkStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent crosswalk builds",
	Long:  "Displays the build history recorded in the local build log.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("status"); err != nil {
			return err
		}

		bl, err := openBuildLog(ctx)
		if err != nil {
			return err
		}
		defer bl.Close() //nolint:errcheck

		entries, err := bl.Recent(ctx, statusLimit)
		if err != nil {
			return eris.Wrap(err, "crosswalk status")
		}

		if len(entries) == 0 {
			zap.L().Info("no builds recorded, run 'crosswalk build' to create one")
			return nil
		}

		formatBuildEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	crosswalkStatusCmd.Flags().IntVar(&statusLimit, "limit", 20, "max entries to show")
	crosswalkCmd.AddCommand(crosswalkStatusCmd)
}

// formatBuildEntries writes a tabular build history to w.
func formatBuildEntries(out io.Writer, entries []store.BuildEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tWEIGHT ON\tSTARTED\tDURATION\tROWS\tCOVERAGE\tERROR")
	_, _ = fmt.Fprintln(w, "--\t------\t---------\t-------\t--------\t----\t--------\t-----")

	for _, e := range entries {
		dur := "-"
		if e.CompletedAt != nil {
			d := e.CompletedAt.Sub(e.StartedAt).Round(time.Second)
			dur = d.String()
		}

		coverage := "-"
		if e.Expected > 0 {
			coverage = fmt.Sprintf("%d/%d", e.Covered, e.Expected)
		}

		errMsg := ""
		if e.Error != "" {
			errMsg = truncate(e.Error, 60)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			shortID(e.ID),
			e.Status,
			e.WeightOn,
			e.StartedAt.Format("2006-01-02 15:04"),
			dur,
			e.BridgeRows,
			coverage,
			errMsg,
		)
	}
	_ = w.Flush()
}

// shortID trims a uuid to its first segment for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
