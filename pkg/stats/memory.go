package stats

import (
	"context"
	"sync/atomic"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore counts scans in process memory. It backs deployments that run
// without PostgreSQL; the counter resets on restart.
type MemoryStore struct {
	scans atomic.Int64
}

// NewMemoryStore creates an in-memory scan counter starting at zero.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) IncrementScans(_ context.Context) error {
	s.scans.Add(1)
	return nil
}

func (s *MemoryStore) Snapshot(_ context.Context) (models.ScanStats, error) {
	return models.ScanStats{ScansPerformed: s.scans.Load()}, nil
}
