package bridge

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadBridgeCSV reads a previously written bridge artifact back into
// rows, so validation and warehouse loading can run against any build.
func ReadBridgeCSV(path string) ([]BridgeRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "bridge: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "bridge: read header %s", path)
	}
	if err := RequireColumns("bridge", header, "area_fips", "year", "qcew_sector", "io_sector", "weight"); err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}
	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []BridgeRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, eris.Wrapf(err, "bridge: read %s line %d", path, line)
		}

		year, err := strconv.Atoi(field(record, "year"))
		if err != nil {
			return nil, eris.Wrapf(err, "bridge: parse year %s line %d", path, line)
		}
		weight, err := strconv.ParseFloat(field(record, "weight"), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "bridge: parse weight %s line %d", path, line)
		}
		source := SourcePrimary
		if s := field(record, "source"); s != "" {
			source, err = ParseRowSource(s)
			if err != nil {
				return nil, eris.Wrapf(err, "bridge: parse source %s line %d", path, line)
			}
		}

		rows = append(rows, BridgeRow{
			AreaFIPS:   field(record, "area_fips"),
			Year:       year,
			QCEWSector: field(record, "qcew_sector"),
			IOSector:   field(record, "io_sector"),
			QCEWLabel:  field(record, "qcew_label"),
			IOLabel:    field(record, "io_label"),
			Weight:     weight,
			Source:     source,
		})
	}
	return rows, nil
}

// ReadTotalsCSV reads a previously written sector-totals artifact.
// Empty value cells come back as NaN, matching unimputed output.
func ReadTotalsCSV(path string) ([]SectorTotal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "totals: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "totals: read header %s", path)
	}
	if err := RequireColumns("totals", header, "io_sector", "year", "area_fips", "establishments", "wages", "employment"); err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}
	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	value := func(record []string, name string, line int) (float64, error) {
		s := field(record, name)
		if s == "" {
			return math.NaN(), nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, eris.Wrapf(err, "totals: parse %s %s line %d", name, path, line)
		}
		return v, nil
	}

	var rows []SectorTotal
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, eris.Wrapf(err, "totals: read %s line %d", path, line)
		}

		year, err := strconv.Atoi(field(record, "year"))
		if err != nil {
			return nil, eris.Wrapf(err, "totals: parse year %s line %d", path, line)
		}
		estabs, err := value(record, "establishments", line)
		if err != nil {
			return nil, err
		}
		wages, err := value(record, "wages", line)
		if err != nil {
			return nil, err
		}
		empl, err := value(record, "employment", line)
		if err != nil {
			return nil, err
		}
		source := SourcePrimary
		if s := field(record, "source"); s != "" {
			source, err = ParseRowSource(s)
			if err != nil {
				return nil, eris.Wrapf(err, "totals: parse source %s line %d", path, line)
			}
		}

		rows = append(rows, SectorTotal{
			IOSector:       field(record, "io_sector"),
			IOLabel:        field(record, "io_label"),
			Year:           year,
			AreaFIPS:       field(record, "area_fips"),
			Establishments: estabs,
			Wages:          wages,
			Employment:     empl,
			Source:         source,
		})
	}
	return rows, nil
}
