package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWeights_TwoSectorSplit(t *testing.T) {
	mappings := []MappingRow{
		{QCEWSector: "A", IOSector: "X"},
		{QCEWSector: "B", IOSector: "X"},
	}
	national := []WageRecord{
		{QCEWSector: "A", Wages: 300},
		{QCEWSector: "B", Wages: 700},
	}

	res := BuildWeights(mappings, national, BuildOptions{})
	require.Len(t, res.Rows, 2)

	assert.Equal(t, "A", res.Rows[0].QCEWSector)
	assert.InDelta(t, 0.3, res.Rows[0].Weight, 1e-9)
	assert.Equal(t, "B", res.Rows[1].QCEWSector)
	assert.InDelta(t, 0.7, res.Rows[1].Weight, 1e-9)
	assert.InDelta(t, 1.0, res.Rows[0].Weight+res.Rows[1].Weight, 1e-9)
	assert.True(t, res.Matched["X"])
}

func TestBuildWeights_ZeroWageGroup(t *testing.T) {
	mappings := []MappingRow{
		{QCEWSector: "A", IOSector: "Y"},
		{QCEWSector: "B", IOSector: "Y"},
	}
	national := []WageRecord{
		{QCEWSector: "A", Wages: 0},
		{QCEWSector: "B", Wages: 0},
	}

	res := BuildWeights(mappings, national, BuildOptions{})
	require.Len(t, res.Rows, 2)

	var sum float64
	for _, r := range res.Rows {
		assert.Equal(t, 0.0, r.Weight)
		sum += r.Weight
	}
	assert.Equal(t, 0.0, sum)
	// Zero wages still count as a national match.
	assert.True(t, res.Matched["Y"])
}

func TestBuildWeights_UnmatchedMappingCarriedAtZero(t *testing.T) {
	mappings := []MappingRow{
		{QCEWSector: "A", IOSector: "X"},
		{QCEWSector: "C", IOSector: "Z"},
	}
	national := []WageRecord{
		{QCEWSector: "A", Wages: 100},
	}

	res := BuildWeights(mappings, national, BuildOptions{})
	require.Len(t, res.Rows, 2)

	// Sorted by IOSector: X first, then Z.
	assert.Equal(t, "X", res.Rows[0].IOSector)
	assert.InDelta(t, 1.0, res.Rows[0].Weight, 1e-9)

	zeroCarry := res.Rows[1]
	assert.Equal(t, "Z", zeroCarry.IOSector)
	assert.Equal(t, "C", zeroCarry.QCEWSector)
	assert.Equal(t, 0.0, zeroCarry.Weight)
	assert.Equal(t, "", zeroCarry.AreaFIPS)
	assert.Equal(t, NoYear, zeroCarry.Year)

	// A zero-basis placeholder is not a match: fallback must still fire.
	assert.False(t, res.Matched["Z"])
}

func TestBuildWeights_DuplicateMappingRowsSummed(t *testing.T) {
	mappings := []MappingRow{
		{QCEWSector: "A", IOSector: "X"},
		{QCEWSector: "A", IOSector: "X"},
		{QCEWSector: "B", IOSector: "X"},
	}
	national := []WageRecord{
		{QCEWSector: "A", Wages: 300},
		{QCEWSector: "B", Wages: 700},
	}

	res := BuildWeights(mappings, national, BuildOptions{})
	require.Len(t, res.Rows, 2)

	// The duplicate join doubles A's contribution to both its row and
	// the group total.
	assert.InDelta(t, 600.0/1300.0, res.Rows[0].Weight, 1e-9)
	assert.InDelta(t, 700.0/1300.0, res.Rows[1].Weight, 1e-9)
	assert.InDelta(t, 1.0, res.Rows[0].Weight+res.Rows[1].Weight, 1e-9)
}

func TestBuildWeights_GroupsPerAreaAndYear(t *testing.T) {
	mappings := []MappingRow{
		{QCEWSector: "A", IOSector: "X"},
		{QCEWSector: "B", IOSector: "X"},
	}
	national := []WageRecord{
		{QCEWSector: "A", AreaFIPS: "06001", Year: 2024, Wages: 250},
		{QCEWSector: "B", AreaFIPS: "06001", Year: 2024, Wages: 750},
		{QCEWSector: "A", AreaFIPS: "06003", Year: 2024, Wages: 100},
	}

	res := BuildWeights(mappings, national, BuildOptions{})
	require.Len(t, res.Rows, 3)

	byArea := make(map[string][]BridgeRow)
	for _, r := range res.Rows {
		byArea[r.AreaFIPS] = append(byArea[r.AreaFIPS], r)
	}

	require.Len(t, byArea["06001"], 2)
	assert.InDelta(t, 0.25, byArea["06001"][0].Weight, 1e-9)
	assert.InDelta(t, 0.75, byArea["06001"][1].Weight, 1e-9)

	// A is alone in 06003, so it takes the whole group.
	require.Len(t, byArea["06003"], 1)
	assert.InDelta(t, 1.0, byArea["06003"][0].Weight, 1e-9)
}

func TestBuildWeights_WeightOnEmployment(t *testing.T) {
	mappings := []MappingRow{
		{QCEWSector: "A", IOSector: "X"},
		{QCEWSector: "B", IOSector: "X"},
	}
	national := []WageRecord{
		{QCEWSector: "A", Wages: 999, Employment: 32},
		{QCEWSector: "B", Wages: 1, Employment: 96},
	}

	res := BuildWeights(mappings, national, BuildOptions{WeightOn: WeightEmployment})
	require.Len(t, res.Rows, 2)
	assert.InDelta(t, 0.25, res.Rows[0].Weight, 1e-9)
	assert.InDelta(t, 0.75, res.Rows[1].Weight, 1e-9)
}

func TestBuildWeights_LabelsCarried(t *testing.T) {
	mappings := []MappingRow{
		{QCEWSector: "A", IOSector: "X", QCEWLabel: "Oilseed farming", IOLabel: "Farms"},
	}
	national := []WageRecord{
		{QCEWSector: "A", Wages: 10},
	}

	res := BuildWeights(mappings, national, BuildOptions{})
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Farms", res.Rows[0].IOLabel)
	assert.Equal(t, "Oilseed farming", res.Rows[0].QCEWLabel)
	assert.Equal(t, SourcePrimary, res.Rows[0].Source)
}
