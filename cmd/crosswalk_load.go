package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rampr-project/rampr-cli/internal/bridge"
	"github.com/rampr-project/rampr-cli/internal/warehouse"
)

var (
	loadBridgePath string
	loadTotalsPath string
	loadBatchSize  int
	loadReplace    bool
)

var crosswalkLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load built crosswalk CSVs into Postgres",
	Long: `Apply io_data schema migrations, then bulk-upsert a built bridge CSV
(and totals CSV when present) into the warehouse.

Use --replace to truncate the target tables and reload in one COPY
instead of upserting.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("load"); err != nil {
			return err
		}

		bridgePath := firstNonEmpty(loadBridgePath, cfg.Crosswalk.Output)
		totalsPath := firstNonEmpty(loadTotalsPath, cfg.Crosswalk.TotalsOutput)

		rows, err := bridge.ReadBridgeCSV(bridgePath)
		if err != nil {
			return eris.Wrap(err, "load: read bridge csv")
		}

		pool, err := warehousePool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := warehouse.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "crosswalk load: migrate")
		}

		batch := loadBatchSize
		if batch <= 0 {
			batch = cfg.Warehouse.BatchSize
		}
		loader := warehouse.NewLoader(pool, batch)

		n, err := loadBridgeRows(cmd, loader, rows)
		if err != nil {
			return eris.Wrap(err, "crosswalk load: bridge")
		}
		fmt.Printf("Loaded %d bridge rows from %s\n", n, bridgePath)

		if totalsPath == "" {
			return nil
		}
		if _, statErr := os.Stat(totalsPath); statErr != nil {
			// Only fatal when the totals file was requested explicitly.
			if loadTotalsPath != "" {
				return eris.Wrapf(statErr, "load: totals csv %s", totalsPath)
			}
			zap.L().Info("totals csv not found, skipping", zap.String("path", totalsPath))
			return nil
		}

		totals, err := bridge.ReadTotalsCSV(totalsPath)
		if err != nil {
			return eris.Wrap(err, "load: read totals csv")
		}
		tn, err := loadTotalRows(cmd, loader, totals)
		if err != nil {
			return eris.Wrap(err, "crosswalk load: totals")
		}
		fmt.Printf("Loaded %d totals rows from %s\n", tn, totalsPath)

		return nil
	},
}

func init() {
	crosswalkLoadCmd.Flags().StringVar(&loadBridgePath, "bridge", "", "bridge CSV to load (default: crosswalk.output config)")
	crosswalkLoadCmd.Flags().StringVar(&loadTotalsPath, "totals", "", "totals CSV to load (default: crosswalk.totals_output config)")
	crosswalkLoadCmd.Flags().IntVar(&loadBatchSize, "batch-size", 0, "rows per upsert transaction (default: warehouse.batch_size config)")
	crosswalkLoadCmd.Flags().BoolVar(&loadReplace, "replace", false, "truncate tables and reload instead of upserting")
	crosswalkCmd.AddCommand(crosswalkLoadCmd)
}

func loadBridgeRows(cmd *cobra.Command, loader *warehouse.Loader, rows []bridge.BridgeRow) (int64, error) {
	if loadReplace {
		return loader.ReplaceBridge(cmd.Context(), rows)
	}
	return loader.LoadBridge(cmd.Context(), rows)
}

func loadTotalRows(cmd *cobra.Command, loader *warehouse.Loader, rows []bridge.SectorTotal) (int64, error) {
	if loadReplace {
		return loader.ReplaceTotals(cmd.Context(), rows)
	}
	return loader.LoadTotals(cmd.Context(), rows)
}
