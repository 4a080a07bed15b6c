package qcew

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/rampr-project/rampr-cli/internal/bridge"
)

// Column aliases accepted by the wage-table readers. The first spelling is
// canonical; the tap_ variants appear in tapestry-estimate extracts.
var (
	sectorAliases         = []string{"qcew_sector", "naics_code", "sector_code"}
	wagesAliases          = []string{"wages", "tap_wages_est_3"}
	employmentAliases     = []string{"employment", "tap_emplvl_est_3"}
	establishmentsAliases = []string{"establishments", "tap_estabs_count"}
)

// ReadNational reads the national wage table. The area_fips column is
// optional; records from a table without one carry an empty AreaFIPS.
func ReadNational(path, encoding string) ([]bridge.WageRecord, error) {
	return readWageTable("national", path, encoding, false)
}

// ReadRegional reads the regional wage table. area_fips is required and
// normalized to 5 digits.
func ReadRegional(path, encoding string) ([]bridge.WageRecord, error) {
	return readWageTable("regional", path, encoding, true)
}

func readWageTable(table, path, encoding string, requireArea bool) ([]bridge.WageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "qcew: open %s table", table)
	}
	defer f.Close()

	r, err := DecodeReader(f, encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	record, err := reader.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "qcew: read %s header", table)
	}
	header := cleanHeader(record)

	checks := []struct {
		logical string
		aliases []string
	}{
		{"qcew_sector", sectorAliases},
		{"wages", wagesAliases},
		{"employment", employmentAliases},
		{"establishments", establishmentsAliases},
	}
	for _, c := range checks {
		if err := bridge.RequireAnyColumn(table, header, c.logical, c.aliases...); err != nil {
			return nil, err
		}
	}
	if requireArea {
		if err := bridge.RequireColumns(table, header, "area_fips"); err != nil {
			return nil, err
		}
	}

	colIdx := mapColumns(header)
	cols := struct {
		sector, wages, employment, establishments, area, year int
	}{
		sector:         findColumn(colIdx, sectorAliases...),
		wages:          findColumn(colIdx, wagesAliases...),
		employment:     findColumn(colIdx, employmentAliases...),
		establishments: findColumn(colIdx, establishmentsAliases...),
		area:           findColumn(colIdx, "area_fips"),
		year:           findColumn(colIdx, "year"),
	}

	var records []bridge.WageRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		sector := normalizeSector(getIdx(record, cols.sector))
		if sector == "" {
			continue
		}

		rec := bridge.WageRecord{
			QCEWSector:     sector,
			Year:           bridge.NoYear,
			Wages:          parseValueOr(getIdx(record, cols.wages), 0),
			Employment:     parseValueOr(getIdx(record, cols.employment), 0),
			Establishments: parseValueOr(getIdx(record, cols.establishments), 0),
		}
		if cols.area >= 0 {
			rec.AreaFIPS = NormalizeAreaFIPS(getIdx(record, cols.area))
		}
		if cols.year >= 0 {
			rec.Year = parseYearOr(getIdx(record, cols.year), bridge.NoYear)
		}
		records = append(records, rec)
	}
	return records, nil
}
