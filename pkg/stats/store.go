// Package stats tracks the service-level scan counter: how many video
// analyses the service has completed since it was first deployed. The
// counter is the only state that outlives a run.
package stats

import (
	"context"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
)

// Store persists the scan counter.
type Store interface {
	// IncrementScans records one completed analysis.
	IncrementScans(ctx context.Context) error

	// Snapshot returns the current counter values.
	Snapshot(ctx context.Context) (models.ScanStats, error)
}
