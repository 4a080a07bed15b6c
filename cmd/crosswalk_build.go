package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rampr-project/rampr-cli/internal/bridge"
	"github.com/rampr-project/rampr-cli/internal/qcew"
	"github.com/rampr-project/rampr-cli/internal/store"
)

var (
	buildMapping        string
	buildNational       string
	buildRegional       string
	buildCodes          string
	buildOutput         string
	buildTotalsOutput   string
	buildWeightOn       string
	buildMissingSectors string
	buildImputeConfig   string
	buildEncoding       string
	buildPadMissing     bool
)

var crosswalkBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the weighted crosswalk bridge",
	Long: `Build the weighted QCEW to IO-sector bridge.

Reads the sector mapping, the national wage table, and optionally a
regional wage table, computes weights over the chosen basis column,
recovers uncovered canonical sectors from the regional table, and writes
the bridge and totals CSVs in canonical sector order. The run is recorded
in the local build log.

Examples:
  # Default paths from config
  rampr-cli crosswalk build

  # Employment-weighted bridge with imputed missing sectors
  rampr-cli crosswalk build --weight-on employment --missing-sectors missing_sectors.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s := resolveBuildSettings()
		if !validWeightOn(s.weightOn) {
			return eris.Errorf("build: invalid weight basis %q (use wages, employment, or establishments)", s.weightOn)
		}

		in, err := readBuildInputs(s)
		if err != nil {
			return err
		}

		bl, err := openBuildLog(ctx)
		if err != nil {
			return err
		}
		defer bl.Close() //nolint:errcheck

		runID, err := bl.Start(ctx, s.weightOn, s.output)
		if err != nil {
			return eris.Wrap(err, "build: record start")
		}

		cw, err := bridge.Build(ctx, in, bridge.BuildOptions{WeightOn: s.weightOn})
		if err != nil {
			return failBuild(ctx, bl, runID, err, "crosswalk build")
		}

		if err := bridge.WriteBridgeCSV(cw.Bridge, s.output); err != nil {
			return failBuild(ctx, bl, runID, err, "build: write bridge csv")
		}
		if s.totalsOutput != "" {
			if err := bridge.WriteTotalsCSV(cw.Totals, s.totalsOutput); err != nil {
				return failBuild(ctx, bl, runID, err, "build: write totals csv")
			}
		}

		if err := bl.Complete(ctx, runID, store.BuildResult{
			BridgeRows: int64(len(cw.Bridge)),
			TotalsRows: int64(len(cw.Totals)),
			Expected:   cw.Coverage.Expected,
			Covered:    cw.Coverage.Covered,
			Fallback:   len(cw.Coverage.FallbackSectors),
		}); err != nil {
			zap.L().Warn("failed to record build completion", zap.Error(err))
		}

		fmt.Print(bridge.FormatCoverage(cw.Coverage))
		zap.L().Info("crosswalk written",
			zap.String("output", s.output),
			zap.Int("bridge_rows", len(cw.Bridge)),
			zap.Int("totals_rows", len(cw.Totals)),
		)
		return nil
	},
}

func init() {
	crosswalkBuildCmd.Flags().StringVar(&buildMapping, "mapping", "", "sector mapping CSV/XLSX (default: crosswalk.mapping config)")
	crosswalkBuildCmd.Flags().StringVar(&buildNational, "national", "", "national wage table CSV (default: crosswalk.national config)")
	crosswalkBuildCmd.Flags().StringVar(&buildRegional, "regional", "", "regional wage table CSV (default: crosswalk.regional config)")
	crosswalkBuildCmd.Flags().StringVar(&buildCodes, "codes", "", "canonical sector code file (default: crosswalk.codes config)")
	crosswalkBuildCmd.Flags().StringVar(&buildOutput, "output", "", "bridge CSV to write (default: crosswalk.output config)")
	crosswalkBuildCmd.Flags().StringVar(&buildTotalsOutput, "totals-output", "", "totals CSV to write (default: crosswalk.totals_output config)")
	crosswalkBuildCmd.Flags().StringVar(&buildWeightOn, "weight-on", "", "weight basis: wages, employment, or establishments")
	crosswalkBuildCmd.Flags().StringVar(&buildMissingSectors, "missing-sectors", "", "missing-sector CSV enabling totals imputation")
	crosswalkBuildCmd.Flags().StringVar(&buildImputeConfig, "impute-config", "", "YAML imputation parameters")
	crosswalkBuildCmd.Flags().StringVar(&buildEncoding, "encoding", "", "input charset (e.g. latin-1) when not UTF-8")
	crosswalkBuildCmd.Flags().BoolVar(&buildPadMissing, "pad-missing", false, "emit explicit zero totals for canonical sectors without data")
	crosswalkCmd.AddCommand(crosswalkBuildCmd)
}

// buildSettings are the effective paths and options after flags override
// config.
type buildSettings struct {
	mapping        string
	national       string
	regional       string
	codes          string
	output         string
	totalsOutput   string
	weightOn       string
	missingSectors string
	imputeConfig   string
	encoding       string
	padMissing     bool
}

func resolveBuildSettings() buildSettings {
	return buildSettings{
		mapping:        firstNonEmpty(buildMapping, cfg.Crosswalk.Mapping),
		national:       firstNonEmpty(buildNational, cfg.Crosswalk.National),
		regional:       firstNonEmpty(buildRegional, cfg.Crosswalk.Regional),
		codes:          firstNonEmpty(buildCodes, cfg.Crosswalk.Codes),
		output:         firstNonEmpty(buildOutput, cfg.Crosswalk.Output),
		totalsOutput:   firstNonEmpty(buildTotalsOutput, cfg.Crosswalk.TotalsOutput),
		weightOn:       firstNonEmpty(buildWeightOn, cfg.Crosswalk.WeightOn),
		missingSectors: firstNonEmpty(buildMissingSectors, cfg.Crosswalk.MissingSectors),
		imputeConfig:   firstNonEmpty(buildImputeConfig, cfg.Crosswalk.ImputeConfig),
		encoding:       firstNonEmpty(buildEncoding, cfg.Crosswalk.Encoding),
		padMissing:     buildPadMissing || cfg.Crosswalk.PadMissing,
	}
}

// validWeightOn reports whether s names a weightable basis column.
func validWeightOn(s string) bool {
	switch s {
	case bridge.WeightWages, bridge.WeightEmployment, bridge.WeightEstablishments:
		return true
	}
	return false
}

// readBuildInputs loads and schema-validates every input table.
func readBuildInputs(s buildSettings) (bridge.BuildInputs, error) {
	var in bridge.BuildInputs

	mappings, err := qcew.ReadMapping(s.mapping, s.encoding)
	if err != nil {
		return in, eris.Wrap(err, "build: read mapping")
	}
	in.Mappings = mappings

	national, err := qcew.ReadNational(s.national, s.encoding)
	if err != nil {
		return in, eris.Wrap(err, "build: read national table")
	}
	in.National = national

	if s.regional != "" {
		regional, err := qcew.ReadRegional(s.regional, s.encoding)
		if err != nil {
			return in, eris.Wrap(err, "build: read regional table")
		}
		in.Regional = regional
	}

	codes, err := bridge.LoadSectorCodes(s.codes)
	if err != nil {
		return in, eris.Wrap(err, "build: load sector codes")
	}
	in.Sectors = codes

	in.Impute = bridge.DefaultImputeConfig()
	if s.imputeConfig != "" {
		ic, err := bridge.LoadImputeConfig(s.imputeConfig)
		if err != nil {
			return in, eris.Wrap(err, "build: load impute config")
		}
		in.Impute = ic
	}
	if s.missingSectors != "" {
		missing, err := qcew.ReadMissingSectors(s.missingSectors, s.encoding)
		if err != nil {
			return in, eris.Wrap(err, "build: read missing sectors")
		}
		in.MissingSectors = missing
	}

	in.PadMissing = s.padMissing
	return in, nil
}

// failBuild records the failure in the build log before returning the
// wrapped error.
func failBuild(ctx context.Context, bl *store.BuildLog, id string, err error, msg string) error {
	if recErr := bl.Fail(ctx, id, err.Error()); recErr != nil {
		zap.L().Warn("failed to record build failure", zap.Error(recErr))
	}
	return eris.Wrap(err, msg)
}
