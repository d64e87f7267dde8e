package database

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citewatch/citewatch/internal/domain"
)

func newTestRepo(t *testing.T) domain.HistoryRepo {
	t.Helper()

	db, err := NewDB(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewHistoryRepo(zerolog.Nop(), db)
}

func TestHistoryRepo_RecordAndRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Record(ctx, domain.HistoryPoint{
			Date:           base.AddDate(0, 0, i),
			TotalCitations: 100 + i,
			HIndex:         10,
			I10Index:       8,
		}, 365))
	}

	points, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// Chronological order, most recent three.
	assert.Equal(t, 102, points[0].TotalCitations)
	assert.Equal(t, 103, points[1].TotalCitations)
	assert.Equal(t, 104, points[2].TotalCitations)
	assert.True(t, points[0].Date.Before(points[2].Date))
}

func TestHistoryRepo_RecentEmpty(t *testing.T) {
	repo := newTestRepo(t)

	points, err := repo.Recent(context.Background(), 90)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestHistoryRepo_RecordPrunesOldest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		require.NoError(t, repo.Record(ctx, domain.HistoryPoint{
			Date:           base.AddDate(0, 0, i),
			TotalCitations: i,
		}, 4))
	}

	points, err := repo.Recent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, 6, points[0].TotalCitations)
	assert.Equal(t, 9, points[3].TotalCitations)
}
