package qcew

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/rampr-project/rampr-cli/internal/bridge"
)

// cleanHeader trims header cells and drops a UTF-8 BOM from the first one
// so exact-match schema checks see the written column names.
func cleanHeader(record []string) []string {
	header := make([]string, len(record))
	for i, col := range record {
		header[i] = strings.TrimSpace(col)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "﻿")
	}
	return header
}

// ReadMapping reads the sector mapping table from a CSV or XLSX file.
// Required columns are qcew_sector and io_sector; qcew_label and io_label
// are carried when present. Rows missing either key are dropped.
func ReadMapping(path, encoding string) ([]bridge.MappingRow, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readMappingXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "qcew: open mapping")
	}
	defer f.Close()

	r, err := DecodeReader(f, encoding)
	if err != nil {
		return nil, err
	}
	return readMappingCSV(r)
}

func readMappingCSV(r io.Reader) ([]bridge.MappingRow, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	record, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "qcew: read mapping header")
	}
	header := cleanHeader(record)
	if err := bridge.RequireColumns("mapping", header, "qcew_sector", "io_sector"); err != nil {
		return nil, err
	}
	colIdx := mapColumns(header)

	var rows []bridge.MappingRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if row, ok := parseMappingRecord(record, colIdx); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func readMappingXLSX(path string) ([]bridge.MappingRow, error) {
	records, err := readSheetRows(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, bridge.NewSchemaError("mapping", "qcew_sector", "io_sector")
	}

	header := cleanHeader(records[0])
	if err := bridge.RequireColumns("mapping", header, "qcew_sector", "io_sector"); err != nil {
		return nil, err
	}
	colIdx := mapColumns(header)

	var rows []bridge.MappingRow
	for _, record := range records[1:] {
		if parsed, ok := parseMappingRecord(record, colIdx); ok {
			rows = append(rows, parsed)
		}
	}
	return rows, nil
}

func parseMappingRecord(record []string, colIdx map[string]int) (bridge.MappingRow, bool) {
	row := bridge.MappingRow{
		QCEWSector: normalizeSector(getCol(record, colIdx, "qcew_sector")),
		IOSector:   trimQuotes(getCol(record, colIdx, "io_sector")),
		QCEWLabel:  trimQuotes(getCol(record, colIdx, "qcew_label")),
		IOLabel:    trimQuotes(getCol(record, colIdx, "io_label")),
	}
	if row.QCEWSector == "" || row.IOSector == "" {
		return bridge.MappingRow{}, false
	}
	return row, true
}

// ReadMissingSectors reads the list of sectors to introduce during
// imputation. Requires an io_sector column; io_label is optional.
func ReadMissingSectors(path, encoding string) ([]bridge.MissingSector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "qcew: open missing sectors")
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
		return nil, eris.Wrap(err, "qcew: read missing sectors header")
	}
	header := cleanHeader(record)
	if err := bridge.RequireColumns("missing_sectors", header, "io_sector"); err != nil {
		return nil, err
	}
	colIdx := mapColumns(header)

	var sectors []bridge.MissingSector
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		code := trimQuotes(getCol(record, colIdx, "io_sector"))
		if code == "" {
			continue
		}
		sectors = append(sectors, bridge.MissingSector{
			IOSector: code,
			IOLabel:  trimQuotes(getCol(record, colIdx, "io_label")),
		})
	}
	return sectors, nil
}
