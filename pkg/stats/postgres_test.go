package stats

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindyourbiz9000/clippnj/pkg/database"
	"github.com/Mindyourbiz9000/clippnj/test/util"
)

func TestPostgresStore_IncrementAndSnapshot(t *testing.T) {
	db := util.SetupTestDatabase(t)
	ctx := context.Background()
	store := NewPostgresStore(db)

	// The migration seeds the counter row at zero.
	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.ScansPerformed)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.IncrementScans(ctx))
	}

	snap, err = store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), snap.ScansPerformed)
}

func TestPostgresStore_ConcurrentIncrements(t *testing.T) {
	db := util.SetupTestDatabase(t)
	ctx := context.Background()
	store := NewPostgresStore(db)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.IncrementScans(ctx))
		}()
	}
	wg.Wait()

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20), snap.ScansPerformed)
}

func TestPostgresStore_MissingCounterRow(t *testing.T) {
	db := util.SetupTestDatabase(t)
	ctx := context.Background()
	store := NewPostgresStore(db)

	_, err := db.ExecContext(ctx, `DELETE FROM scan_stats WHERE id = 1`)
	require.NoError(t, err)

	err = store.IncrementScans(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = store.Snapshot(ctx)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPostgresStore_DatabaseHealth(t *testing.T) {
	db := util.SetupTestDatabase(t)
	ctx := context.Background()

	health, err := database.Health(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Greater(t, health.MaxOpenConns, 0)

	// Re-applying migrations on an up-to-date schema is a no-op.
	require.NoError(t, database.RunMigrations(db, "test"))
}
