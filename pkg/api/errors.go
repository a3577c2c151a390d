package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/gl4d3/powerpulse/pkg/orchestrator"
	"github.com/gl4d3/powerpulse/pkg/storage"
)

// mapError translates an orchestrator/storage error into an HTTP error
// response.
func mapError(err error) *echo.HTTPError {
	if errors.Is(err, orchestrator.ErrFileTooLarge) {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	}
	if errors.Is(err, orchestrator.ErrInvalidPayload) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}

	slog.Error("unexpected error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
