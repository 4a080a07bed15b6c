package bridge

// ResolveFallback recovers canonical IO sectors that matched nothing in
// the national table by recomputing weights from the regional table,
// scoped per (AreaFIPS, Year). Recovered rows are tagged SourceFallback
// and replace the sector's zero-basis placeholder rows; placeholders
// survive only for sectors the fallback recovers nothing for. On a
// duplicate (AreaFIPS, Year, QCEWSector, IOSector) key the primary row
// wins and the fallback row is dropped, not summed. Returns the merged
// rows plus the canonical codes still lacking wage data from either
// source. Incomplete coverage is an observable condition, not an error.
func ResolveFallback(primary PrimaryWeights, mappings []MappingRow, regional []WageRecord, expected *SectorList, opts BuildOptions) ([]BridgeRow, []string) {
	weightOn := opts.weightOn()

	members := make(map[string][]string)
	memberSeen := make(map[string]map[string]bool)
	labels := make(map[string]map[string]MappingRow)
	for _, m := range mappings {
		if memberSeen[m.IOSector] == nil {
			memberSeen[m.IOSector] = make(map[string]bool)
			labels[m.IOSector] = make(map[string]MappingRow)
		}
		if !memberSeen[m.IOSector][m.QCEWSector] {
			memberSeen[m.IOSector][m.QCEWSector] = true
			members[m.IOSector] = append(members[m.IOSector], m.QCEWSector)
			labels[m.IOSector][m.QCEWSector] = m
		}
	}

	byrSector := make(map[string][]WageRecord)
	for _, rec := range regional {
		byrSector[rec.QCEWSector] = append(byrSector[rec.QCEWSector], rec)
	}

	acc := newWeightAccumulator()
	recovered := make(map[string]bool)
	var uncovered []string

	for _, code := range expected.Codes() {
		if primary.Matched[code] {
			continue
		}
		for _, qcew := range members[code] {
			recs, ok := byrSector[qcew]
			if !ok {
				continue
			}
			recovered[code] = true
			for _, rec := range recs {
				k := rowKey{AreaFIPS: rec.AreaFIPS, Year: rec.Year, QCEWSector: qcew, IOSector: code}
				acc.add(k, rec.Basis(weightOn), labels[code][qcew])
			}
		}
		if !recovered[code] {
			uncovered = append(uncovered, code)
		}
	}

	kept := primary.Rows
	if len(recovered) > 0 {
		kept = make([]BridgeRow, 0, len(primary.Rows))
		for _, r := range primary.Rows {
			if recovered[r.IOSector] {
				continue
			}
			kept = append(kept, r)
		}
	}

	merged := mergeBySource(kept, acc.finish(SourceFallback))
	return merged, uncovered
}

// mergeBySource combines primary and fallback rows, resolving duplicate
// keys by the source tag alone: SourcePrimary beats SourceFallback
// regardless of merge order.
func mergeBySource(primary, fallback []BridgeRow) []BridgeRow {
	taken := make(map[rowKey]bool, len(primary))
	out := make([]BridgeRow, 0, len(primary)+len(fallback))
	for _, r := range primary {
		taken[rowKey{r.AreaFIPS, r.Year, r.QCEWSector, r.IOSector}] = true
		out = append(out, r)
	}
	for _, r := range fallback {
		if taken[rowKey{r.AreaFIPS, r.Year, r.QCEWSector, r.IOSector}] {
			continue
		}
		out = append(out, r)
	}
	return out
}
