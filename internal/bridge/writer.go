package bridge

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
)

// bridgeColumns defines the ordered bridge CSV output columns.
var bridgeColumns = []string{
	"area_fips",
	"year",
	"qcew_sector",
	"io_sector",
	"qcew_label",
	"io_label",
	"weight",
	"source",
}

// totalsColumns defines the ordered sector-totals CSV output columns.
var totalsColumns = []string{
	"io_sector",
	"io_label",
	"year",
	"area_fips",
	"establishments",
	"wages",
	"employment",
	"source",
}

// WriteBridgeCSV writes the weighted crosswalk to path. Output is a pure
// function of rows: re-running on identical input produces an identical
// file.
func WriteBridgeCSV(rows []BridgeRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "bridge export: create file")
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(bridgeColumns); err != nil {
		return eris.Wrap(err, "bridge export: write header")
	}

	for _, r := range rows {
		record := []string{
			r.AreaFIPS,
			strconv.Itoa(r.Year),
			r.QCEWSector,
			r.IOSector,
			r.QCEWLabel,
			r.IOLabel,
			formatValue(r.Weight),
			r.Source.String(),
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "bridge export: write row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "bridge export: flush")
}

// WriteTotalsCSV writes the aggregated sector totals to path. Cells that
// stayed missing after imputation are written empty.
func WriteTotalsCSV(rows []SectorTotal, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "totals export: create file")
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(totalsColumns); err != nil {
		return eris.Wrap(err, "totals export: write header")
	}

	for _, t := range rows {
		record := []string{
			t.IOSector,
			t.IOLabel,
			strconv.Itoa(t.Year),
			t.AreaFIPS,
			formatValue(t.Establishments),
			formatValue(t.Wages),
			formatValue(t.Employment),
			t.Source.String(),
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "totals export: write row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "totals export: flush")
}

// formatValue renders a float with the shortest exact representation.
// NaN (a cell that could not be imputed) renders empty.
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
