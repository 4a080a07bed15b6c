package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuildLog(t *testing.T) *BuildLog {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "builds.db")
	l, err := NewBuildLog(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() }) //nolint:errcheck
	require.NoError(t, l.Migrate(context.Background()))
	return l
}

func TestBuildLog_StartComplete(t *testing.T) {
	l := newTestBuildLog(t)
	ctx := context.Background()

	id, err := l.Start(ctx, "wages", "bridge.csv")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	err = l.Complete(ctx, id, BuildResult{
		BridgeRows: 1200,
		TotalsRows: 804,
		Expected:   402,
		Covered:    398,
		Fallback:   11,
	})
	require.NoError(t, err)

	entries, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "complete", e.Status)
	assert.Equal(t, "wages", e.WeightOn)
	assert.Equal(t, "bridge.csv", e.Output)
	assert.Equal(t, int64(1200), e.BridgeRows)
	assert.Equal(t, int64(804), e.TotalsRows)
	assert.Equal(t, 402, e.Expected)
	assert.Equal(t, 398, e.Covered)
	assert.Equal(t, 11, e.Fallback)
	assert.Empty(t, e.Error)
	require.NotNil(t, e.CompletedAt)
	assert.False(t, e.CompletedAt.Before(e.StartedAt))
}

func TestBuildLog_Fail(t *testing.T) {
	l := newTestBuildLog(t)
	ctx := context.Background()

	id, err := l.Start(ctx, "wages", "bridge.csv")
	require.NoError(t, err)

	require.NoError(t, l.Fail(ctx, id, "mapping: required column missing: io_sector"))

	entries, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Status)
	assert.Contains(t, entries[0].Error, "required column missing")
	assert.NotNil(t, entries[0].CompletedAt)
}

func TestBuildLog_CompleteUnknownID(t *testing.T) {
	l := newTestBuildLog(t)

	err := l.Complete(context.Background(), "no-such-id", BuildResult{})
	assert.Error(t, err)
}

func TestBuildLog_RecentOrderAndLimit(t *testing.T) {
	l := newTestBuildLog(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := l.Start(ctx, "wages", "bridge.csv")
		require.NoError(t, err)
	}

	entries, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	all, err := l.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, e := range all {
		assert.Equal(t, "running", e.Status)
	}
}

func TestBuildLog_EmptyRecent(t *testing.T) {
	l := newTestBuildLog(t)

	entries, err := l.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
