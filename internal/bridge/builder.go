package bridge

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Build runs the crosswalk pipeline: weight the national table through
// the sector mapping, recover missing sectors from the regional table,
// aggregate weighted totals, optionally impute the sectors named in
// inputs.MissingSectors, and align everything to the canonical sector
// order. Steps run strictly in sequence; each consumes the immutable
// output of its predecessor, so a rerun on identical inputs yields an
// identical crosswalk. Coverage gaps are reported on the result, never
// raised as errors.
func Build(ctx context.Context, inputs BuildInputs, opts BuildOptions) (*Crosswalk, error) {
	log := zap.L().With(zap.String("component", "bridge.builder"))

	if inputs.Sectors == nil {
		return nil, eris.New("builder: no canonical sector list")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	primary := BuildWeights(inputs.Mappings, inputs.National, opts)
	log.Info("computed primary weights",
		zap.Int("rows", len(primary.Rows)),
		zap.Int("matched_sectors", len(primary.Matched)),
		zap.String("weight_on", opts.weightOn()))

	merged, uncovered := ResolveFallback(primary, inputs.Mappings, inputs.Regional, inputs.Sectors, opts)
	fallbackSectors := distinctBySource(merged, SourceFallback)
	log.Info("resolved fallback sectors",
		zap.Int("rows", len(merged)),
		zap.Int("recovered", len(fallbackSectors)),
		zap.Int("uncovered", len(uncovered)))

	totals := AggregateTotals(merged, inputs.National, inputs.Regional)
	log.Info("aggregated sector totals", zap.Int("rows", len(totals)))

	aligned := inputs.Sectors.AlignBridge(merged)
	alignedTotals := inputs.Sectors.AlignTotals(totals)
	log.Info("aligned to canonical order",
		zap.Int("bridge_rows", len(aligned)),
		zap.Int("totals_rows", len(alignedTotals)),
		zap.Int("dropped_bridge_rows", len(merged)-len(aligned)))

	if len(inputs.MissingSectors) > 0 {
		alignedTotals = ImputeMissingSectors(alignedTotals, inputs.MissingSectors, inputs.Impute)
		alignedTotals = inputs.Sectors.AlignTotals(alignedTotals)
	}
	if inputs.PadMissing {
		alignedTotals = inputs.Sectors.PadTotals(alignedTotals)
	}

	report := CoverageReport{
		Expected:        inputs.Sectors.Len(),
		Covered:         inputs.Sectors.Len() - len(uncovered),
		FallbackSectors: fallbackSectors,
		MissingSectors:  uncovered,
	}
	log.Info("coverage",
		zap.Int("expected", report.Expected),
		zap.Int("covered", report.Covered),
		zap.Int("missing", report.Missing()))

	return &Crosswalk{Bridge: aligned, Totals: alignedTotals, Coverage: report}, nil
}

// distinctBySource lists the distinct IO sectors carried by rows of one
// source, in row order.
func distinctBySource(rows []BridgeRow, source RowSource) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if r.Source != source || seen[r.IOSector] {
			continue
		}
		seen[r.IOSector] = true
		out = append(out, r.IOSector)
	}
	return out
}
