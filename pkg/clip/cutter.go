// Package clip defines the boundary for turning detected moments into video
// artifacts. The service itself never transcodes; deployments plug in a
// Cutter (e.g. an ffmpeg wrapper or a render farm client) and the API exposes
// it. Without one, clip requests answer 501.
package clip

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no Cutter implementation is wired in.
var ErrNotConfigured = errors.New("clip cutter not configured")

// Cutter extracts a clip from a video on demand.
type Cutter interface {
	// Cut produces a clip artifact for the given video starting at startSec
	// and lasting durationSec seconds. It returns a path or URL to the
	// artifact.
	Cut(ctx context.Context, videoID string, startSec, durationSec int) (string, error)
}
