package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensealert/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestInitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	repo, err := NewSQLiteRepository(dbPath)
	require.NoError(t, err)

	_, err = repo.Append(ctx, core.Invoice{ExternalID: "INV-1", Date: "2026-01-01", Amount: 10, Category: "Food"})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// Reopening runs migrations again; existing data must survive.
	repo, err = NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	defer repo.Close()

	total, err := repo.TotalSpent(ctx, "Food")
	require.NoError(t, err)
	require.NotNil(t, total)
	assert.Equal(t, 10.0, *total)
}

func TestUpsertLimitsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.UpsertLimits(ctx, map[string]float64{"Food": 100.0}))
	require.NoError(t, repo.UpsertLimits(ctx, map[string]float64{"Food": 50.0}))

	limit, err := repo.LimitFor(ctx, "Food")
	require.NoError(t, err)
	require.NotNil(t, limit)
	assert.Equal(t, 50.0, *limit)

	// Exactly one row for the category.
	var count int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM categories WHERE category = ?`, "Food").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUpsertLimitsRejectsNegative(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.UpsertLimits(context.Background(), map[string]float64{"Food": -1})
	assert.Error(t, err)
}

func TestAppendAndTotalSpent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	// No rows yet: nil total, not zero.
	total, err := repo.TotalSpent(ctx, "Food")
	require.NoError(t, err)
	assert.Nil(t, total)

	for _, amount := range []float64{30.0, 40.0, 40.0} {
		_, err := repo.Append(ctx, core.Invoice{ExternalID: "INV", Date: "2026-01-01", Amount: amount, Category: "Food"})
		require.NoError(t, err)
	}

	total, err = repo.TotalSpent(ctx, "Food")
	require.NoError(t, err)
	require.NotNil(t, total)
	assert.InDelta(t, 110.0, *total, 1e-9)

	// Exact, case-sensitive category match.
	total, err = repo.TotalSpent(ctx, "food")
	require.NoError(t, err)
	assert.Nil(t, total)
}

func TestAppendAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first, err := repo.Append(ctx, core.Invoice{ExternalID: "a", Date: "2026-01-01", Amount: 1, Category: "Food"})
	require.NoError(t, err)
	second, err := repo.Append(ctx, core.Invoice{ExternalID: "b", Date: "2026-01-02", Amount: 2, Category: "Food"})
	require.NoError(t, err)

	assert.Greater(t, second, first)
}

func TestLimitForUnsetCategory(t *testing.T) {
	repo := newTestRepo(t)
	limit, err := repo.LimitFor(context.Background(), "Travel")
	require.NoError(t, err)
	assert.Nil(t, limit)
}

func TestListMiscellaneousOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	ids := make([]int64, 0, 3)
	for _, ext := range []string{"m1", "m2", "m3"} {
		id, err := repo.Append(ctx, core.Invoice{ExternalID: ext, Date: "2026-01-01", Amount: 5, Category: core.DefaultCategory})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err := repo.Append(ctx, core.Invoice{ExternalID: "f1", Date: "2026-01-01", Amount: 5, Category: "Food"})
	require.NoError(t, err)

	misc, err := repo.ListMiscellaneous(ctx)
	require.NoError(t, err)
	require.Len(t, misc, 3)
	for i, si := range misc {
		assert.Equal(t, ids[i], si.ID)
		assert.Equal(t, core.DefaultCategory, si.Category)
	}
}

func TestRecategorize(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Append(ctx, core.Invoice{ExternalID: "m1", Date: "2026-01-01", Amount: 5, Category: core.DefaultCategory})
	require.NoError(t, err)

	require.NoError(t, repo.Recategorize(ctx, id, "Food"))

	misc, err := repo.ListMiscellaneous(ctx)
	require.NoError(t, err)
	assert.Empty(t, misc)

	total, err := repo.TotalSpent(ctx, "Food")
	require.NoError(t, err)
	require.NotNil(t, total)
	assert.Equal(t, 5.0, *total)
}

func TestRecategorizeMissingRecord(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.Recategorize(context.Background(), 9999, "Food")
	assert.True(t, errors.Is(err, core.ErrNotFound), "expected core.ErrNotFound, got %v", err)
}
