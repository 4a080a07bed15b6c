package bridge

import (
	"strings"

	"github.com/rotisserie/eris"
)

// RowSource identifies which wage table a bridge row was derived from.
type RowSource int

const (
	// SourcePrimary marks rows weighted from the national wage table.
	SourcePrimary RowSource = iota
	// SourceFallback marks rows recovered from the regional wage table.
	SourceFallback
	// SourceImputed marks totals introduced for missing sectors and
	// filled by imputation. Never applied to bridge rows.
	SourceImputed
	// SourcePadded marks explicit zero totals emitted to complete the
	// canonical grid. Never applied to bridge rows.
	SourcePadded
)

func (s RowSource) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceFallback:
		return "fallback"
	case SourceImputed:
		return "imputed"
	case SourcePadded:
		return "padded"
	default:
		return "unknown"
	}
}

// ParseRowSource parses the CSV representation of a row source.
func ParseRowSource(s string) (RowSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary":
		return SourcePrimary, nil
	case "fallback":
		return SourceFallback, nil
	case "imputed":
		return SourceImputed, nil
	case "padded":
		return SourcePadded, nil
	default:
		return SourcePrimary, eris.Errorf("unknown row source %q", s)
	}
}

// MappingRow is one entry of the QCEW-to-IO sector mapping table.
// QCEWSector and IOSector are required; labels are optional annotations.
type MappingRow struct {
	QCEWSector string
	IOSector   string
	QCEWLabel  string
	IOLabel    string
}

// NoYear marks records from tables without a year column.
const NoYear = -1

// WageRecord is one row of a wage/employment table. The national table
// carries no area (AreaFIPS empty) unless area-qualified; the regional
// table always carries a 5-digit AreaFIPS. Year is NoYear when the
// source table has no year column.
type WageRecord struct {
	QCEWSector     string
	AreaFIPS       string
	Year           int
	Wages          float64
	Employment     float64
	Establishments float64
}

// Basis returns the weighting value selected by opts.
func (w WageRecord) Basis(weightOn string) float64 {
	switch weightOn {
	case WeightEmployment:
		return w.Employment
	case WeightEstablishments:
		return w.Establishments
	default:
		return w.Wages
	}
}

// Weight basis column choices.
const (
	WeightWages          = "wages"
	WeightEmployment     = "employment"
	WeightEstablishments = "establishments"
)

// BridgeRow is one weighted crosswalk entry. Weight is the share of the
// IO sector's group basis contributed by QCEWSector within AreaFIPS and
// Year; weights for one (AreaFIPS, Year, IOSector) group sum to 1 when
// any member has a nonzero basis, and to 0 otherwise.
type BridgeRow struct {
	AreaFIPS   string
	Year       int
	QCEWSector string
	IOSector   string
	IOLabel    string
	QCEWLabel  string
	Weight     float64
	Source     RowSource
}

// SectorTotal is the weighted aggregate of wage-table values for one
// IO sector within an area and year. Value fields are NaN when the row
// was introduced as a missing sector and could not be imputed.
type SectorTotal struct {
	IOSector       string
	IOLabel        string
	Year           int
	AreaFIPS       string
	Establishments float64
	Wages          float64
	Employment     float64
	Source         RowSource
}

// MissingSector names an IO sector to introduce before imputation.
type MissingSector struct {
	IOSector string
	IOLabel  string
}

// BuildOptions tunes the weight computation.
type BuildOptions struct {
	// WeightOn selects the basis column: wages (default), employment,
	// or establishments.
	WeightOn string
}

func (o BuildOptions) weightOn() string {
	if o.WeightOn == "" {
		return WeightWages
	}
	return o.WeightOn
}

// BuildInputs carries the loaded input tables for one pipeline run.
type BuildInputs struct {
	Mappings []MappingRow
	National []WageRecord
	Regional []WageRecord
	Sectors  *SectorList

	// MissingSectors enables totals imputation when non-empty.
	MissingSectors []MissingSector
	Impute         ImputeConfig

	// PadMissing emits explicit zero totals for canonical sectors with
	// no data in an (area, year) combination.
	PadMissing bool
}

// Crosswalk is the result of one pipeline run.
type Crosswalk struct {
	Bridge   []BridgeRow
	Totals   []SectorTotal
	Coverage CoverageReport
}

// rowKey identifies one bridge row after aggregation.
type rowKey struct {
	AreaFIPS   string
	Year       int
	QCEWSector string
	IOSector   string
}

// groupKey identifies one weight-normalization group.
type groupKey struct {
	AreaFIPS string
	Year     int
	IOSector string
}
