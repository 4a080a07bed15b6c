package bridge

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// SectorList is the authoritative ordered list of canonical IO sector
// codes. Order is load-bearing: downstream regionalization consumes the
// crosswalk positionally aligned to the national I-O table. Immutable
// after construction; pass it explicitly rather than holding it as
// package state.
type SectorList struct {
	codes []string
	rank  map[string]int
	dups  int
}

// NewSectorList builds a SectorList from codes, cleaning each entry the
// same way LoadSectorCodes does: interior whitespace stripped, blanks
// skipped, duplicates dropped preserving first occurrence.
func NewSectorList(codes []string) (*SectorList, error) {
	l := &SectorList{rank: make(map[string]int, len(codes))}
	for _, raw := range codes {
		code := cleanSectorCode(raw)
		if code == "" {
			continue
		}
		if _, ok := l.rank[code]; ok {
			l.dups++
			continue
		}
		l.rank[code] = len(l.codes)
		l.codes = append(l.codes, code)
	}
	if len(l.codes) == 0 {
		return nil, eris.New("no sector codes")
	}
	return l, nil
}

// LoadSectorCodes reads the canonical sector list from a plain-text
// reference file: one code per line, blank lines and #-comments skipped.
// Returns a SequencingError if the file cannot be read or yields no codes.
func LoadSectorCodes(path string) (*SectorList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewSequencingError(path, err)
	}

	var codes []string
	for _, line := range strings.Split(string(data), "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		codes = append(codes, s)
	}

	list, err := NewSectorList(codes)
	if err != nil {
		return nil, NewSequencingError(path, err)
	}
	return list, nil
}

// cleanSectorCode strips all whitespace, interior included.
func cleanSectorCode(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Len returns the number of canonical codes.
func (l *SectorList) Len() int { return len(l.codes) }

// Duplicates returns how many repeated codes were dropped at load.
func (l *SectorList) Duplicates() int { return l.dups }

// Codes returns a copy of the canonical code sequence.
func (l *SectorList) Codes() []string {
	out := make([]string, len(l.codes))
	copy(out, l.codes)
	return out
}

// Rank returns the position of code in the canonical order.
func (l *SectorList) Rank(code string) (int, bool) {
	r, ok := l.rank[code]
	return r, ok
}

// Contains reports whether code is canonical.
func (l *SectorList) Contains(code string) bool {
	_, ok := l.rank[code]
	return ok
}

// AlignBridge drops rows whose IOSector is not canonical and sorts the
// remainder sector-major: canonical rank, then AreaFIPS, Year, and
// QCEWSector. Sector-major ordering makes the distinct IOSector sequence
// of the whole table a subsequence of the canonical order. Canonical
// sectors with no rows produce nothing here; the driver reports them.
func (l *SectorList) AlignBridge(rows []BridgeRow) []BridgeRow {
	out := make([]BridgeRow, 0, len(rows))
	for _, r := range rows {
		if l.Contains(r.IOSector) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := l.rank[out[i].IOSector], l.rank[out[j].IOSector]
		if ri != rj {
			return ri < rj
		}
		if out[i].AreaFIPS != out[j].AreaFIPS {
			return out[i].AreaFIPS < out[j].AreaFIPS
		}
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].QCEWSector < out[j].QCEWSector
	})
	return out
}

// AlignTotals drops non-canonical totals and applies the same
// sector-major ordering.
func (l *SectorList) AlignTotals(rows []SectorTotal) []SectorTotal {
	out := make([]SectorTotal, 0, len(rows))
	for _, r := range rows {
		if l.Contains(r.IOSector) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := l.rank[out[i].IOSector], l.rank[out[j].IOSector]
		if ri != rj {
			return ri < rj
		}
		if out[i].AreaFIPS != out[j].AreaFIPS {
			return out[i].AreaFIPS < out[j].AreaFIPS
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// PadTotals fills the canonical grid: for every (AreaFIPS, Year)
// combination present in rows, canonical sectors with no data gain an
// explicit zero row. Input must already be aligned; the result is
// re-sorted the same way.
func (l *SectorList) PadTotals(rows []SectorTotal) []SectorTotal {
	type comboKey struct {
		AreaFIPS string
		Year     int
	}
	present := make(map[comboKey]map[string]bool)
	var combos []comboKey
	for _, r := range rows {
		k := comboKey{r.AreaFIPS, r.Year}
		if present[k] == nil {
			present[k] = make(map[string]bool)
			combos = append(combos, k)
		}
		present[k][r.IOSector] = true
	}

	out := rows
	for _, k := range combos {
		for _, code := range l.codes {
			if present[k][code] {
				continue
			}
			out = append(out, SectorTotal{
				IOSector: code,
				Year:     k.Year,
				AreaFIPS: k.AreaFIPS,
				Source:   SourcePadded,
			})
		}
	}
	return l.AlignTotals(out)
}
