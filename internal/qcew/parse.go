// Package qcew reads the tabular inputs of the crosswalk pipeline: the
// sector mapping table, the national wage table, and the regional wage
// table, in CSV or XLSX form. Readers validate schemas up front and
// normalize sector codes, area codes, and suppressed numeric cells so the
// bridge package only ever sees clean records.
package qcew

import (
	"strconv"
	"strings"
)

// suppressionFlags are the BLS disclosure codes that stand in for a numeric
// cell when the underlying value is withheld.
var suppressionFlags = map[string]bool{
	"N": true, "S": true, "D": true, "G": true,
	"H": true, "J": true, "K": true,
	"*": true, "**": true, "#": true,
}

// parseValueOr parses a numeric cell, returning def when the cell is empty,
// a suppression flag, or unparseable.
func parseValueOr(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" || suppressionFlags[s] {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// parseYearOr parses a year cell, returning def if parsing fails.
func parseYearOr(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// trimQuotes removes surrounding double quotes from a CSV field.
func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// normalizeSector cleans a sector code cell. Float-formatted exports write
// integer codes as "1013.0"; the decimal tail is stripped so codes compare
// equal across tables.
func normalizeSector(s string) string {
	s = trimQuotes(s)
	if i := strings.IndexByte(s, '.'); i >= 0 && allZeros(s[i+1:]) {
		s = s[:i]
	}
	return s
}

func allZeros(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '0' {
			return false
		}
	}
	return true
}

// mapColumns builds a column name → index map. Names are trimmed but kept
// case-sensitive; the schema contract matches exact spellings.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[strings.TrimSpace(col)] = i
	}
	return m
}

// getCol gets a column value by exact name, returning "" if absent.
func getCol(record []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// findColumn returns the index of the first alias present in the header
// map, or -1 when none is.
func findColumn(colIdx map[string]int, aliases ...string) int {
	for _, name := range aliases {
		if idx, ok := colIdx[name]; ok {
			return idx
		}
	}
	return -1
}

// getIdx gets a record value by positional index, returning "" when the
// index is -1 or past the record.
func getIdx(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
