package api

import (
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/Mindyourbiz9000/clippnj/pkg/services"
)

// writeError sends the uniform error body: a category the UI can dispatch on
// plus a human-readable message.
func writeError(c *echo.Context, status int, category, message string) error {
	return c.JSON(status, ErrorResponse{Category: category, Message: message})
}

// badRequest is the shorthand for caller-input failures spotted at the HTTP
// layer, before any service is involved.
func badRequest(c *echo.Context, message string) error {
	return writeError(c, http.StatusBadRequest, services.CategoryInvalidInput, message)
}

// mapServiceError renders a service-layer error as an HTTP error response.
func mapServiceError(c *echo.Context, err error) error {
	status, body := serviceErrorResponse(err)
	return c.JSON(status, body)
}

// serviceErrorResponse resolves an error to a status code and response body.
// Unexpected errors answer 500 with the detail logged, not echoed.
func serviceErrorResponse(err error) (int, ErrorResponse) {
	category := services.Categorize(err)
	status := statusForCategory(category)
	if status == http.StatusInternalServerError {
		slog.Error("Unexpected service error", "error", err)
		return status, ErrorResponse{Category: category, Message: "internal server error"}
	}
	return status, ErrorResponse{Category: category, Message: err.Error()}
}

// statusForCategory resolves an error category to its status code.
func statusForCategory(category string) int {
	switch category {
	case services.CategoryInvalidInput:
		return http.StatusBadRequest
	case services.CategoryConflict:
		return http.StatusConflict
	case services.CategoryUpstreamUnavailable:
		return http.StatusBadGateway
	case services.CategoryNoData:
		return http.StatusNotFound
	case services.CategoryNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
