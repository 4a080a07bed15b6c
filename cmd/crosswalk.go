package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rampr-project/rampr-cli/internal/store"
)

var crosswalkCmd = &cobra.Command{
	Use:   "crosswalk",
	Short: "Build and manage the QCEW to IO-sector crosswalk",
	Long:  "Builds the weighted sector bridge from mapping and wage tables, validates built outputs, and loads them into the io_data warehouse.",
}

func init() {
	rootCmd.AddCommand(crosswalkCmd)
}

// warehousePool creates a pgxpool.Pool from cfg.Warehouse.DatabaseURL.
func warehousePool(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := cfg.Warehouse.DatabaseURL
	if dsn == "" {
		return nil, eris.New("crosswalk: no database_url configured (set warehouse.database_url or RAMPR_WAREHOUSE_DATABASE_URL)")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "crosswalk: create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "crosswalk: ping database")
	}

	fmt.Println("Connected to database")
	return pool, nil
}

// openBuildLog opens the SQLite build log at cfg.Store.Path and ensures
// its schema is current.
func openBuildLog(ctx context.Context) (*store.BuildLog, error) {
	bl, err := store.NewBuildLog(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "crosswalk: open build log")
	}
	if err := bl.Migrate(ctx); err != nil {
		_ = bl.Close()
		return nil, eris.Wrap(err, "crosswalk: migrate build log")
	}
	return bl, nil
}

// firstNonEmpty returns the first non-empty string, letting flags override
// config values.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
