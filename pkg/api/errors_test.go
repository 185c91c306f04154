package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Mindyourbiz9000/clippnj/pkg/analysis"
	"github.com/Mindyourbiz9000/clippnj/pkg/clip"
	"github.com/Mindyourbiz9000/clippnj/pkg/services"
	"github.com/Mindyourbiz9000/clippnj/pkg/twitch"
)

func TestServiceErrorResponse(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectCode     int
		expectCategory string
	}{
		{
			name:           "validation error maps to 400",
			err:            services.NewValidationError("query", "must not be empty"),
			expectCode:     http.StatusBadRequest,
			expectCategory: services.CategoryInvalidInput,
		},
		{
			name:           "invalid video URL maps to 400",
			err:            fmt.Errorf("wrapped: %w", twitch.ErrInvalidVideoURL),
			expectCode:     http.StatusBadRequest,
			expectCategory: services.CategoryInvalidInput,
		},
		{
			name:           "analysis in progress maps to 409",
			err:            services.ErrAnalysisInProgress,
			expectCode:     http.StatusConflict,
			expectCategory: services.CategoryConflict,
		},
		{
			name:           "upstream unavailable maps to 502",
			err:            fmt.Errorf("%w: boom", services.ErrUpstreamUnavailable),
			expectCode:     http.StatusBadGateway,
			expectCategory: services.CategoryUpstreamUnavailable,
		},
		{
			name:           "no messages maps to 404",
			err:            analysis.ErrNoMessages,
			expectCode:     http.StatusNotFound,
			expectCategory: services.CategoryNoData,
		},
		{
			name:           "unset cutter maps to 501",
			err:            clip.ErrNotConfigured,
			expectCode:     http.StatusNotImplemented,
			expectCategory: services.CategoryNotImplemented,
		},
		{
			name:           "unknown error maps to 500",
			err:            errors.New("something unexpected happened"),
			expectCode:     http.StatusInternalServerError,
			expectCategory: services.CategoryInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := serviceErrorResponse(tt.err)
			assert.Equal(t, tt.expectCode, status)
			assert.Equal(t, tt.expectCategory, resp.Category)
			assert.NotEmpty(t, resp.Message)
		})
	}

	t.Run("internal errors hide the detail", func(t *testing.T) {
		_, resp := serviceErrorResponse(errors.New("password=swordfish leaked into an error"))
		assert.Equal(t, "internal server error", resp.Message)
	})
}
