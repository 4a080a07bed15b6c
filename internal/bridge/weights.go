package bridge

import "sort"

// PrimaryWeights is the weight builder's output: weighted bridge rows
// plus the set of IO sectors that matched at least one national record.
// Sectors carried only through zero-basis placeholders count as
// unmatched so the fallback resolver can target them.
type PrimaryWeights struct {
	Rows    []BridgeRow
	Matched map[string]bool
}

// BuildWeights joins the sector mapping to the national wage table and
// computes normalized allocation weights per (AreaFIPS, Year, IOSector)
// group. Mapping rows with no national match are carried forward with a
// zero basis rather than dropped, so they still appear with weight 0.
// Joined rows resolving to the same (AreaFIPS, Year, QCEWSector,
// IOSector) key are summed into one row. Division is zero-safe: a group
// whose members all report zero basis yields weight 0 for every member.
func BuildWeights(mappings []MappingRow, national []WageRecord, opts BuildOptions) PrimaryWeights {
	weightOn := opts.weightOn()

	bynSector := make(map[string][]WageRecord)
	for _, rec := range national {
		bynSector[rec.QCEWSector] = append(bynSector[rec.QCEWSector], rec)
	}

	acc := newWeightAccumulator()
	matched := make(map[string]bool)

	for _, m := range mappings {
		recs, ok := bynSector[m.QCEWSector]
		if !ok {
			acc.add(rowKey{AreaFIPS: "", Year: NoYear, QCEWSector: m.QCEWSector, IOSector: m.IOSector}, 0, m)
			continue
		}
		matched[m.IOSector] = true
		for _, rec := range recs {
			k := rowKey{AreaFIPS: rec.AreaFIPS, Year: rec.Year, QCEWSector: m.QCEWSector, IOSector: m.IOSector}
			acc.add(k, rec.Basis(weightOn), m)
		}
	}

	return PrimaryWeights{Rows: acc.finish(SourcePrimary), Matched: matched}
}

// weightAccumulator sums bases per bridge row and per normalization
// group, then resolves weights with the zero-safe division rule.
type weightAccumulator struct {
	basis  map[rowKey]float64
	labels map[rowKey]MappingRow
	groups map[groupKey]float64
	order  []rowKey
}

func newWeightAccumulator() *weightAccumulator {
	return &weightAccumulator{
		basis:  make(map[rowKey]float64),
		labels: make(map[rowKey]MappingRow),
		groups: make(map[groupKey]float64),
	}
}

func (a *weightAccumulator) add(k rowKey, basis float64, m MappingRow) {
	if _, ok := a.basis[k]; !ok {
		a.order = append(a.order, k)
		a.labels[k] = m
	}
	a.basis[k] += basis
	a.groups[groupKey{k.AreaFIPS, k.Year, k.IOSector}] += basis
}

// finish resolves weights and returns rows in a deterministic
// pre-alignment order: IOSector, AreaFIPS, Year, QCEWSector.
func (a *weightAccumulator) finish(source RowSource) []BridgeRow {
	rows := make([]BridgeRow, 0, len(a.order))
	for _, k := range a.order {
		total := a.groups[groupKey{k.AreaFIPS, k.Year, k.IOSector}]
		var weight float64
		if total > 0 {
			weight = a.basis[k] / total
		}
		m := a.labels[k]
		rows = append(rows, BridgeRow{
			AreaFIPS:   k.AreaFIPS,
			Year:       k.Year,
			QCEWSector: k.QCEWSector,
			IOSector:   k.IOSector,
			IOLabel:    m.IOLabel,
			QCEWLabel:  m.QCEWLabel,
			Weight:     weight,
			Source:     source,
		})
	}
	sortBridgeRows(rows)
	return rows
}

func sortBridgeRows(rows []BridgeRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].IOSector != rows[j].IOSector {
			return rows[i].IOSector < rows[j].IOSector
		}
		if rows[i].AreaFIPS != rows[j].AreaFIPS {
			return rows[i].AreaFIPS < rows[j].AreaFIPS
		}
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].QCEWSector < rows[j].QCEWSector
	})
}
