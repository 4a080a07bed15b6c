package bridge

import "sort"

// AggregateTotals applies bridge weights to the wage-table value columns
// and aggregates per (AreaFIPS, Year, IOSector). National records flow
// through primary rows, regional records through fallback rows; a
// recovered aggregate is appended only when the weighted primary
// aggregate lacks its key, so primary data always takes precedence.
func AggregateTotals(rows []BridgeRow, national, regional []WageRecord) []SectorTotal {
	primary := applyWeights(rows, national, SourcePrimary)
	recovered := applyWeights(rows, regional, SourceFallback)

	keys := make(map[groupKey]bool, len(primary))
	for _, t := range primary {
		keys[groupKey{t.AreaFIPS, t.Year, t.IOSector}] = true
	}

	out := primary
	for _, t := range recovered {
		if keys[groupKey{t.AreaFIPS, t.Year, t.IOSector}] {
			continue
		}
		out = append(out, t)
	}
	sortTotals(out)
	return out
}

// joinKey locates bridge rows for one wage record.
type joinKey struct {
	AreaFIPS   string
	Year       int
	QCEWSector string
}

func applyWeights(rows []BridgeRow, records []WageRecord, source RowSource) []SectorTotal {
	byQCEW := make(map[joinKey][]BridgeRow)
	for _, r := range rows {
		if r.Source != source {
			continue
		}
		k := joinKey{r.AreaFIPS, r.Year, r.QCEWSector}
		byQCEW[k] = append(byQCEW[k], r)
	}

	acc := make(map[groupKey]*SectorTotal)
	var order []groupKey
	for _, rec := range records {
		for _, r := range byQCEW[joinKey{rec.AreaFIPS, rec.Year, rec.QCEWSector}] {
			k := groupKey{r.AreaFIPS, r.Year, r.IOSector}
			t, ok := acc[k]
			if !ok {
				t = &SectorTotal{
					IOSector: r.IOSector,
					Year:     r.Year,
					AreaFIPS: r.AreaFIPS,
					Source:   source,
				}
				acc[k] = t
				order = append(order, k)
			}
			if t.IOLabel == "" {
				t.IOLabel = r.IOLabel
			}
			t.Establishments += rec.Establishments * r.Weight
			t.Wages += rec.Wages * r.Weight
			t.Employment += rec.Employment * r.Weight
		}
	}

	out := make([]SectorTotal, 0, len(order))
	for _, k := range order {
		out = append(out, *acc[k])
	}
	return out
}

func sortTotals(rows []SectorTotal) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].IOSector != rows[j].IOSector {
			return rows[i].IOSector < rows[j].IOSector
		}
		if rows[i].AreaFIPS != rows[j].AreaFIPS {
			return rows[i].AreaFIPS < rows[j].AreaFIPS
		}
		return rows[i].Year < rows[j].Year
	})
}
