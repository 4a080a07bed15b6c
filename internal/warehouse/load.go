package warehouse

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rampr-project/rampr-cli/internal/bridge"
	"github.com/rampr-project/rampr-cli/internal/db"
)

const defaultBatchSize = 5000

var (
	bridgeColumns      = []string{"area_fips", "year", "qcew_sector", "io_sector", "qcew_label", "io_label", "weight", "source"}
	bridgeConflictKeys = []string{"area_fips", "year", "qcew_sector", "io_sector"}

	totalsColumns      = []string{"io_sector", "io_label", "year", "area_fips", "establishments", "wages", "employment", "source"}
	totalsConflictKeys = []string{"io_sector", "year", "area_fips"}
)

// Loader bulk-upserts crosswalk rows into io_data tables.
type Loader struct {
	pool      db.Pool
	batchSize int
}

// NewLoader returns a Loader writing through pool. batchSize <= 0 falls
// back to 5000 rows per upsert.
func NewLoader(pool db.Pool, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Loader{pool: pool, batchSize: batchSize}
}

// LoadBridge upserts bridge rows into io_data.bridge.
func (l *Loader) LoadBridge(ctx context.Context, rows []bridge.BridgeRow) (int64, error) {
	n, err := l.upsertBatches(ctx, db.UpsertConfig{
		Table:        "io_data.bridge",
		Columns:      bridgeColumns,
		ConflictKeys: bridgeConflictKeys,
	}, bridgeValues(rows))
	if err != nil {
		return n, err
	}

	zap.L().Info("bridge loaded",
		zap.String("component", "warehouse.load"),
		zap.Int("rows", len(rows)),
		zap.Int64("affected", n),
	)
	return n, nil
}

// LoadTotals upserts sector totals into io_data.sector_totals.
func (l *Loader) LoadTotals(ctx context.Context, rows []bridge.SectorTotal) (int64, error) {
	n, err := l.upsertBatches(ctx, db.UpsertConfig{
		Table:        "io_data.sector_totals",
		Columns:      totalsColumns,
		ConflictKeys: totalsConflictKeys,
	}, totalsValues(rows))
	if err != nil {
		return n, err
	}

	zap.L().Info("sector totals loaded",
		zap.String("component", "warehouse.load"),
		zap.Int("rows", len(rows)),
		zap.Int64("affected", n),
	)
	return n, nil
}

// ReplaceBridge truncates io_data.bridge and reloads it in one COPY.
func (l *Loader) ReplaceBridge(ctx context.Context, rows []bridge.BridgeRow) (int64, error) {
	if _, err := l.pool.Exec(ctx, "TRUNCATE io_data.bridge"); err != nil {
		return 0, eris.Wrap(err, "warehouse: truncate io_data.bridge")
	}
	return db.CopyFromSchema(ctx, l.pool, "io_data", "bridge", bridgeColumns, bridgeValues(rows))
}

// ReplaceTotals truncates io_data.sector_totals and reloads it in one COPY.
func (l *Loader) ReplaceTotals(ctx context.Context, rows []bridge.SectorTotal) (int64, error) {
	if _, err := l.pool.Exec(ctx, "TRUNCATE io_data.sector_totals"); err != nil {
		return 0, eris.Wrap(err, "warehouse: truncate io_data.sector_totals")
	}
	return db.CopyFromSchema(ctx, l.pool, "io_data", "sector_totals", totalsColumns, totalsValues(rows))
}

// upsertBatches chunks rows by the configured batch size and upserts each
// chunk in its own transaction.
func (l *Loader) upsertBatches(ctx context.Context, cfg db.UpsertConfig, rows [][]any) (int64, error) {
	var total int64
	for start := 0; start < len(rows); start += l.batchSize {
		end := start + l.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := db.BulkUpsert(ctx, l.pool, cfg, rows[start:end])
		if err != nil {
			return total, eris.Wrapf(err, "warehouse: upsert batch into %s", cfg.Table)
		}
		total += n
	}
	return total, nil
}

func bridgeValues(rows []bridge.BridgeRow) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			r.AreaFIPS, r.Year, r.QCEWSector, r.IOSector,
			r.QCEWLabel, r.IOLabel, r.Weight, string(r.Source),
		})
	}
	return out
}

func totalsValues(rows []bridge.SectorTotal) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			r.IOSector, r.IOLabel, r.Year, r.AreaFIPS,
			r.Establishments, r.Wages, r.Employment, string(r.Source),
		})
	}
	return out
}
