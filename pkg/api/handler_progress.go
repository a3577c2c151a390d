package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// handleProgress handles GET /api/progress/:upload_id.
func (s *Server) handleProgress(c *echo.Context) error {
	uploadID := c.Param("upload_id")

	snap, err := s.tracker.Get(uploadID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "upload not found")
	}

	return c.JSON(http.StatusOK, snap)
}
