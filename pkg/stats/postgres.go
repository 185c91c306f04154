package stats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore persists the scan counter in the single-row scan_stats table
// created by the embedded migrations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle. The caller owns the
// handle's lifecycle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// IncrementScans bumps the counter row. The row is seeded by the migration,
// so sql.ErrNoRows here means the schema was never applied.
func (s *PostgresStore) IncrementScans(ctx context.Context) error {
	var scans int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE scan_stats
		SET scans_performed = scans_performed + 1, updated_at = now()
		WHERE id = 1
		RETURNING scans_performed`).Scan(&scans)
	if err != nil {
		return fmt.Errorf("failed to increment scan counter: %w", err)
	}
	return nil
}

func (s *PostgresStore) Snapshot(ctx context.Context) (models.ScanStats, error) {
	var stats models.ScanStats
	err := s.db.QueryRowContext(ctx,
		`SELECT scans_performed FROM scan_stats WHERE id = 1`).Scan(&stats.ScansPerformed)
	if err != nil {
		return models.ScanStats{}, fmt.Errorf("failed to read scan counter: %w", err)
	}
	return stats, nil
}
