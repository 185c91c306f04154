package stats

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("starts at zero", func(t *testing.T) {
		store := NewMemoryStore()

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), snap.ScansPerformed)
	})

	t.Run("counts increments", func(t *testing.T) {
		store := NewMemoryStore()

		for i := 0; i < 3; i++ {
			require.NoError(t, store.IncrementScans(ctx))
		}

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), snap.ScansPerformed)
	})

	t.Run("safe under concurrent increments", func(t *testing.T) {
		store := NewMemoryStore()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = store.IncrementScans(ctx)
			}()
		}
		wg.Wait()

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(50), snap.ScansPerformed)
	})
}
