package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSectorList(t *testing.T, codes ...string) *SectorList {
	t.Helper()
	l, err := NewSectorList(codes)
	require.NoError(t, err)
	return l
}

func TestResolveFallback_RecoversRegionalOnlySector(t *testing.T) {
	mappings := []MappingRow{
		{QCEWSector: "A", IOSector: "X"},
		{QCEWSector: "C", IOSector: "Z"},
		{QCEWSector: "D", IOSector: "Z"},
	}
	national := []WageRecord{
		{QCEWSector: "A", Wages: 100},
	}
	regional := []WageRecord{
		{QCEWSector: "C", AreaFIPS: "06001", Year: 2024, Wages: 30},
		{QCEWSector: "D", AreaFIPS: "06001", Year: 2024, Wages: 90},
		{QCEWSector: "C", AreaFIPS: "06003", Year: 2024, Wages: 50},
	}
	expected := mustSectorList(t, "X", "Z")

	primary := BuildWeights(mappings, national, BuildOptions{})
	merged, uncovered := ResolveFallback(primary, mappings, regional, expected, BuildOptions{})
	assert.Empty(t, uncovered)

	var recovered []BridgeRow
	for _, r := range merged {
		if r.Source == SourceFallback {
			recovered = append(recovered, r)
		}
	}
	require.Len(t, recovered, 3)

	// Weights normalize within each region, not across regions.
	assert.Equal(t, "C", recovered[0].QCEWSector)
	assert.InDelta(t, 0.25, recovered[0].Weight, 1e-9)
	assert.Equal(t, "D", recovered[1].QCEWSector)
	assert.InDelta(t, 0.75, recovered[1].Weight, 1e-9)

	assert.Equal(t, "06003", recovered[2].AreaFIPS)
	assert.InDelta(t, 1.0, recovered[2].Weight, 1e-9)
}

func TestResolveFallback_SkipsSectorsMatchedByPrimary(t *testing.T) {
	mappings := []MappingRow{
		{QCEWSector: "A", IOSector: "X"},
	}
	national := []WageRecord{
		{QCEWSector: "A", Wages: 100},
	}
	regional := []WageRecord{
		{QCEWSector: "A", AreaFIPS: "06001", Wages: 500},
	}
	expected := mustSectorList(t, "X")

	primary := BuildWeights(mappings, national, BuildOptions{})
	merged, uncovered := ResolveFallback(primary, mappings, regional, expected, BuildOptions{})
	assert.Empty(t, uncovered)

	require.Len(t, merged, 1)
	assert.Equal(t, SourcePrimary, merged[0].Source)
}

func TestResolveFallback_ReportsUncoveredSectors(t *testing.T) {
	mappings := []MappingRow{
		{QCEWSector: "A", IOSector: "X"},
	}
	national := []WageRecord{
		{QCEWSector: "A", Wages: 100},
	}
	expected := mustSectorList(t, "X", "W", "V")

	primary := BuildWeights(mappings, national, BuildOptions{})
	_, uncovered := ResolveFallback(primary, mappings, nil, expected, BuildOptions{})

	// W has no mapping at all; V has neither mapping nor data. Both are
	// reported in canonical order, not silently dropped.
	assert.Equal(t, []string{"W", "V"}, uncovered)
}

func TestResolveFallback_PrimaryWinsOnDuplicateKey(t *testing.T) {
	primary := []BridgeRow{
		{AreaFIPS: "06001", Year: 2024, QCEWSector: "C", IOSector: "Z", Weight: 0.4, Source: SourcePrimary},
	}
	fallback := []BridgeRow{
		{AreaFIPS: "06001", Year: 2024, QCEWSector: "C", IOSector: "Z", Weight: 0.9, Source: SourceFallback},
		{AreaFIPS: "06003", Year: 2024, QCEWSector: "C", IOSector: "Z", Weight: 1.0, Source: SourceFallback},
	}

	merged := mergeBySource(primary, fallback)
	require.Len(t, merged, 2)

	// The duplicate is dropped, not summed, and precedence follows the
	// source tag rather than merge order.
	assert.Equal(t, SourcePrimary, merged[0].Source)
	assert.Equal(t, 0.4, merged[0].Weight)
	assert.Equal(t, "06003", merged[1].AreaFIPS)
}

func TestResolveFallback_RecoveryReplacesPlaceholder(t *testing.T) {
	mappings := []MappingRow{
		{QCEWSector: "C", IOSector: "Z"},
	}
	regional := []WageRecord{
		{QCEWSector: "C", AreaFIPS: "06001", Year: 2024, Wages: 50},
	}
	expected := mustSectorList(t, "Z")

	primary := BuildWeights(mappings, nil, BuildOptions{})
	merged, uncovered := ResolveFallback(primary, mappings, regional, expected, BuildOptions{})
	assert.Empty(t, uncovered)

	// The zero-basis placeholder for Z is superseded by the recovered
	// region-scoped row.
	require.Len(t, merged, 1)
	assert.Equal(t, SourceFallback, merged[0].Source)
	assert.Equal(t, "06001", merged[0].AreaFIPS)
	assert.InDelta(t, 1.0, merged[0].Weight, 1e-9)
}

func TestResolveFallback_PlaceholderPersistsWithoutRecovery(t *testing.T) {
	mappings := []MappingRow{
		{QCEWSector: "C", IOSector: "Z"},
	}
	expected := mustSectorList(t, "Z")

	primary := BuildWeights(mappings, nil, BuildOptions{})
	merged, uncovered := ResolveFallback(primary, mappings, nil, expected, BuildOptions{})

	// Nothing recovers Z, so its mapping still surfaces at weight 0 and
	// the sector is reported uncovered.
	assert.Equal(t, []string{"Z"}, uncovered)
	require.Len(t, merged, 1)
	assert.Equal(t, SourcePrimary, merged[0].Source)
	assert.Equal(t, "", merged[0].AreaFIPS)
	assert.Equal(t, NoYear, merged[0].Year)
	assert.Equal(t, 0.0, merged[0].Weight)
}
