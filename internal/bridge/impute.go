package bridge

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ImputeMissingSectors introduces the listed sectors into every
// (Year, AreaFIPS) combination present in totals, then fills missing
// value cells from nearest-neighbor donors. Similarity combines shared
// sector-code prefixes, numeric area proximity (repeated AreaWeight
// times), and log-scaled observed values; each missing cell takes the
// distance-weighted mean of its KNeighbors nearest donors, back-
// transformed with expm1 and clipped at zero. Donor pools widen from the
// longest shared prefix down until they hold KNeighbors+1 rows with at
// least one observed value per target; sectors with no qualifying pool
// keep their cells missing (NaN). The pass is fully deterministic: rows
// are visited in first-appearance order and distance ties break on row
// position. Only totals are imputed, never bridge weights.
func ImputeMissingSectors(totals []SectorTotal, missing []MissingSector, cfg ImputeConfig) []SectorTotal {
	cfg = cfg.withDefaults()
	log := zap.L().With(zap.String("component", "impute"))

	out := make([]SectorTotal, len(totals))
	copy(out, totals)
	out = append(out, missingRows(out, missing, cfg.Targets)...)

	rows := newImputeRows(out, cfg)

	var secs []string
	seen := make(map[string]bool)
	for _, r := range rows {
		if !seen[r.sec] {
			seen[r.sec] = true
			secs = append(secs, r.sec)
		}
	}

	var filled, skipped int
	for _, sec := range secs {
		if !rows.hasMissing(sec, len(cfg.Targets)) {
			continue
		}
		pool := rows.selectPool(sec, cfg)
		if pool == nil {
			skipped++
			continue
		}
		filled += rows.imputeSector(sec, pool, cfg, out)
	}

	log.Info("imputed missing sectors",
		zap.Int("added_rows", len(out)-len(totals)),
		zap.Int("filled_cells", filled),
		zap.Int("sectors_without_pool", skipped))
	return out
}

// missingRows builds one NaN-valued row per listed sector for every
// (Year, AreaFIPS) combination that does not already carry it.
func missingRows(totals []SectorTotal, missing []MissingSector, targets []string) []SectorTotal {
	type comboKey struct {
		Year     int
		AreaFIPS string
	}
	var combos []comboKey
	comboSeen := make(map[comboKey]bool)
	existing := make(map[groupKey]bool)
	for _, t := range totals {
		k := comboKey{t.Year, t.AreaFIPS}
		if !comboSeen[k] {
			comboSeen[k] = true
			combos = append(combos, k)
		}
		existing[groupKey{t.AreaFIPS, t.Year, t.IOSector}] = true
	}

	var sectors []MissingSector
	sectorSeen := make(map[string]bool)
	for _, m := range missing {
		code := strings.TrimSpace(m.IOSector)
		if code == "" || sectorSeen[code] {
			continue
		}
		sectorSeen[code] = true
		sectors = append(sectors, MissingSector{IOSector: code, IOLabel: m.IOLabel})
	}

	var added []SectorTotal
	for _, k := range combos {
		for _, m := range sectors {
			if existing[groupKey{k.AreaFIPS, k.Year, m.IOSector}] {
				continue
			}
			t := SectorTotal{
				IOSector: m.IOSector,
				IOLabel:  m.IOLabel,
				Year:     k.Year,
				AreaFIPS: k.AreaFIPS,
				Source:   SourceImputed,
			}
			for _, c := range targets {
				setTarget(&t, c, math.NaN())
			}
			added = append(added, t)
		}
	}
	return added
}

// imputeRow caches the similarity features for one totals row.
type imputeRow struct {
	sec  string
	area float64   // NaN when AreaFIPS is not numeric
	logs []float64 // log1p of targets, NaN when missing
}

type imputeRows []imputeRow

func newImputeRows(totals []SectorTotal, cfg ImputeConfig) imputeRows {
	rows := make(imputeRows, len(totals))
	for i, t := range totals {
		sec := strings.ToUpper(strings.TrimSpace(t.IOSector))
		if len(sec) > 6 {
			sec = sec[:6]
		}
		area := math.NaN()
		if v, err := strconv.ParseFloat(strings.TrimSpace(t.AreaFIPS), 64); err == nil {
			area = v / 10000
		}
		logs := make([]float64, len(cfg.Targets))
		for j, c := range cfg.Targets {
			logs[j] = math.Log1p(targetValue(t, c))
		}
		rows[i] = imputeRow{sec: sec, area: area, logs: logs}
	}
	return rows
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func (rs imputeRows) hasMissing(sec string, targets int) bool {
	for _, r := range rs {
		if r.sec != sec {
			continue
		}
		for j := 0; j < targets; j++ {
			if math.IsNaN(r.logs[j]) {
				return true
			}
		}
	}
	return false
}

// selectPool returns the indices sharing the longest sector prefix with
// sec that still yield KNeighbors+1 rows and one observed value per
// target, widening level by level.
func (rs imputeRows) selectPool(sec string, cfg ImputeConfig) []int {
	levels := make([]int, len(cfg.SectorLevels))
	copy(levels, cfg.SectorLevels)
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))

	for _, l := range levels {
		var pool []int
		for i, r := range rs {
			if prefix(r.sec, l) == prefix(sec, l) {
				pool = append(pool, i)
			}
		}
		if len(pool) < cfg.KNeighbors+1 {
			continue
		}
		ok := true
		for j := range cfg.Targets {
			observed := false
			for _, i := range pool {
				if !math.IsNaN(rs[i].logs[j]) {
					observed = true
					break
				}
			}
			if !observed {
				ok = false
				break
			}
		}
		if ok {
			return pool
		}
	}
	return nil
}

// imputeSector fills every missing cell of rows with sector sec from the
// pool, applying all fills only after computing them so donors within
// one sector see a consistent snapshot. Returns the number of cells
// filled.
func (rs imputeRows) imputeSector(sec string, pool []int, cfg ImputeConfig, out []SectorTotal) int {
	// One-hot encoded prefixes contribute a fixed number of coordinates:
	// the distinct prefix count per level across the pool.
	catCoords := 0
	for _, l := range cfg.SectorLevels {
		distinct := make(map[string]bool)
		for _, i := range pool {
			distinct[prefix(rs[i].sec, l)] = true
		}
		catCoords += len(distinct)
	}
	totalCoords := catCoords + cfg.AreaWeight + len(cfg.Targets)

	type fill struct {
		row, target int
		value       float64
	}
	var fills []fill

	for _, i := range pool {
		if rs[i].sec != sec {
			continue
		}
		for j := range cfg.Targets {
			if !math.IsNaN(rs[i].logs[j]) {
				continue
			}
			v, ok := rs.nearestMean(i, j, pool, cfg, catCoords, totalCoords)
			if !ok {
				continue
			}
			fills = append(fills, fill{row: i, target: j, value: v})
		}
	}

	for _, f := range fills {
		v := math.Expm1(f.value)
		if v < 0 {
			v = 0
		}
		rs[f.row].logs[f.target] = math.Log1p(v)
		setTarget(&out[f.row], cfg.Targets[f.target], v)
	}
	return len(fills)
}

// nearestMean computes the distance-weighted mean log value of the
// KNeighbors nearest pool rows that observe target j. Distances use only
// coordinates observed on both sides, scaled up by the share of missing
// coordinates; ties break on row position. Zero-distance donors take
// over with a uniform mean.
func (rs imputeRows) nearestMean(recv, j int, pool []int, cfg ImputeConfig, catCoords, totalCoords int) (float64, bool) {
	type donor struct {
		idx  int
		dist float64
	}
	var donors []donor

	r := rs[recv]
	for _, i := range pool {
		if i == recv {
			continue
		}
		d := rs[i]
		if math.IsNaN(d.logs[j]) {
			continue
		}

		sumSq := 0.0
		observed := catCoords
		for _, l := range cfg.SectorLevels {
			if prefix(r.sec, l) != prefix(d.sec, l) {
				sumSq += 2
			}
		}
		if !math.IsNaN(r.area) && !math.IsNaN(d.area) {
			diff := r.area - d.area
			sumSq += float64(cfg.AreaWeight) * diff * diff
			observed += cfg.AreaWeight
		}
		for k := range cfg.Targets {
			if math.IsNaN(r.logs[k]) || math.IsNaN(d.logs[k]) {
				continue
			}
			diff := r.logs[k] - d.logs[k]
			sumSq += diff * diff
			observed++
		}

		dist := math.Sqrt(float64(totalCoords) / float64(observed) * sumSq)
		donors = append(donors, donor{idx: i, dist: dist})
	}
	if len(donors) == 0 {
		return 0, false
	}

	sort.SliceStable(donors, func(a, b int) bool {
		if donors[a].dist != donors[b].dist {
			return donors[a].dist < donors[b].dist
		}
		return donors[a].idx < donors[b].idx
	})
	if len(donors) > cfg.KNeighbors {
		donors = donors[:cfg.KNeighbors]
	}

	var zeroSum float64
	var zeroN int
	for _, d := range donors {
		if d.dist == 0 {
			zeroSum += rs[d.idx].logs[j]
			zeroN++
		}
	}
	if zeroN > 0 {
		return zeroSum / float64(zeroN), true
	}

	var num, den float64
	for _, d := range donors {
		w := 1 / d.dist
		num += w * rs[d.idx].logs[j]
		den += w
	}
	return num / den, true
}

func targetValue(t SectorTotal, name string) float64 {
	switch name {
	case WeightEstablishments:
		return t.Establishments
	case WeightEmployment:
		return t.Employment
	default:
		return t.Wages
	}
}

func setTarget(t *SectorTotal, name string, v float64) {
	switch name {
	case WeightEstablishments:
		t.Establishments = v
	case WeightEmployment:
		t.Employment = v
	default:
		t.Wages = v
	}
}
