// Package services wraps the analysis pipeline with the service concerns the
// HTTP API needs: per-video single-flight, a global concurrency cap, run
// cancellation, progress events, scan counting, and metrics.
package services

import (
	"errors"
	"fmt"

	"github.com/Mindyourbiz9000/clippnj/pkg/analysis"
	"github.com/Mindyourbiz9000/clippnj/pkg/clip"
	"github.com/Mindyourbiz9000/clippnj/pkg/twitch"
)

var (
	// ErrAnalysisInProgress is returned when an analysis for the same video
	// is already running; the caller should watch that run instead.
	ErrAnalysisInProgress = errors.New("analysis already in progress for this video")

	// ErrUpstreamUnavailable wraps comment feed failures that survived the
	// fetch layer's retries.
	ErrUpstreamUnavailable = errors.New("comment feed unavailable")
)

// ValidationError reports invalid caller input (bad URL, bad query, bad
// option value) with the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Error categories. Every failure surfaced by the service layer falls into
// exactly one; the HTTP layer maps them to status codes and the event layer
// carries them in analysis.failed payloads.
const (
	CategoryInvalidInput        = "invalid-input"
	CategoryConflict            = "conflict"
	CategoryUpstreamUnavailable = "upstream-unavailable"
	CategoryNoData              = "no-data"
	CategoryNotImplemented      = "not-implemented"
	CategoryInternal            = "internal"
)

// Categorize resolves an error to its taxonomy category. Unrecognized errors
// are internal.
func Categorize(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidationError(err),
		errors.Is(err, twitch.ErrInvalidVideoURL),
		errors.Is(err, analysis.ErrInvalidVideoID):
		return CategoryInvalidInput
	case errors.Is(err, ErrAnalysisInProgress):
		return CategoryConflict
	case errors.Is(err, ErrUpstreamUnavailable):
		return CategoryUpstreamUnavailable
	case errors.Is(err, analysis.ErrNoMessages):
		return CategoryNoData
	case errors.Is(err, clip.ErrNotConfigured):
		return CategoryNotImplemented
	default:
		return CategoryInternal
	}
}
