package bridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSectorFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sectors.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSectorCodes_CleansAndDeduplicates(t *testing.T) {
	path := writeSectorFile(t, `# BEA IO sector codes
111CA

113 FF
111CA
  230
`)

	list, err := LoadSectorCodes(path)
	require.NoError(t, err)

	// Comments and blanks are skipped, interior whitespace is stripped,
	// and duplicates keep their first position.
	assert.Equal(t, []string{"111CA", "113FF", "230"}, list.Codes())
	assert.Equal(t, 3, list.Len())
	assert.Equal(t, 1, list.Duplicates())

	rank, ok := list.Rank("113FF")
	require.True(t, ok)
	assert.Equal(t, 1, rank)
	assert.False(t, list.Contains("999"))
}

func TestLoadSectorCodes_MissingFile(t *testing.T) {
	_, err := LoadSectorCodes(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, IsSequencingError(err))
}

func TestLoadSectorCodes_EmptyFile(t *testing.T) {
	path := writeSectorFile(t, "# only comments\n\n")
	_, err := LoadSectorCodes(path)
	require.Error(t, err)
	assert.True(t, IsSequencingError(err))
}

func TestNewSectorList_Empty(t *testing.T) {
	_, err := NewSectorList(nil)
	assert.Error(t, err)
}

func TestAlignBridge_CanonicalOrderAndDrop(t *testing.T) {
	list := mustSectorList(t, "X", "Y", "Z")
	rows := []BridgeRow{
		{AreaFIPS: "06003", Year: 2024, QCEWSector: "C", IOSector: "Z", Weight: 1},
		{AreaFIPS: "06001", Year: 2024, QCEWSector: "A", IOSector: "Y", Weight: 1},
		{AreaFIPS: "06001", Year: 2024, QCEWSector: "B", IOSector: "ROGUE", Weight: 1},
		{AreaFIPS: "06001", Year: 2024, QCEWSector: "B", IOSector: "X", Weight: 0.75},
		{AreaFIPS: "06001", Year: 2024, QCEWSector: "A", IOSector: "X", Weight: 0.25},
	}

	aligned := list.AlignBridge(rows)
	require.Len(t, aligned, 4)

	assert.Equal(t, "X", aligned[0].IOSector)
	assert.Equal(t, "A", aligned[0].QCEWSector)
	assert.Equal(t, "X", aligned[1].IOSector)
	assert.Equal(t, "B", aligned[1].QCEWSector)
	assert.Equal(t, "Y", aligned[2].IOSector)
	assert.Equal(t, "Z", aligned[3].IOSector)

	for _, r := range aligned {
		assert.NotEqual(t, "ROGUE", r.IOSector)
	}
}

func TestAlignBridge_DistinctSequenceIsCanonicalSubsequence(t *testing.T) {
	list := mustSectorList(t, "X", "Y", "Z", "W")
	rows := []BridgeRow{
		{AreaFIPS: "06001", QCEWSector: "A", IOSector: "W"},
		{AreaFIPS: "06002", QCEWSector: "B", IOSector: "X"},
		{AreaFIPS: "06001", QCEWSector: "C", IOSector: "Z"},
		{AreaFIPS: "06002", QCEWSector: "D", IOSector: "X"},
	}

	aligned := list.AlignBridge(rows)
	assert.Empty(t, checkCanonicalOrder(aligned, list))
}

func TestAlignTotals_Order(t *testing.T) {
	list := mustSectorList(t, "X", "Y")
	rows := []SectorTotal{
		{IOSector: "Y", AreaFIPS: "06001", Year: 2024, Wages: 1},
		{IOSector: "X", AreaFIPS: "06003", Year: 2024, Wages: 2},
		{IOSector: "X", AreaFIPS: "06001", Year: 2024, Wages: 3},
		{IOSector: "GONE", AreaFIPS: "06001", Year: 2024, Wages: 4},
	}

	aligned := list.AlignTotals(rows)
	require.Len(t, aligned, 3)
	assert.Equal(t, "X", aligned[0].IOSector)
	assert.Equal(t, "06001", aligned[0].AreaFIPS)
	assert.Equal(t, "X", aligned[1].IOSector)
	assert.Equal(t, "06003", aligned[1].AreaFIPS)
	assert.Equal(t, "Y", aligned[2].IOSector)
}

func TestPadTotals_FillsCanonicalGrid(t *testing.T) {
	list := mustSectorList(t, "X", "Y", "Z")
	rows := []SectorTotal{
		{IOSector: "X", AreaFIPS: "06001", Year: 2024, Wages: 10, Source: SourcePrimary},
		{IOSector: "Z", AreaFIPS: "06003", Year: 2024, Wages: 20, Source: SourceFallback},
	}

	padded := list.PadTotals(rows)
	require.Len(t, padded, 6)

	// Every (area, year) combination now carries all three codes.
	byArea := make(map[string][]SectorTotal)
	for _, r := range padded {
		byArea[r.AreaFIPS] = append(byArea[r.AreaFIPS], r)
	}
	require.Len(t, byArea["06001"], 3)
	require.Len(t, byArea["06003"], 3)

	assert.Equal(t, "X", byArea["06001"][0].IOSector)
	assert.Equal(t, 10.0, byArea["06001"][0].Wages)
	assert.Equal(t, SourcePadded, byArea["06001"][1].Source)
	assert.Equal(t, 0.0, byArea["06001"][1].Wages)
	assert.Equal(t, SourcePadded, byArea["06003"][0].Source)
	assert.Equal(t, 20.0, byArea["06003"][2].Wages)
}
