package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"
)

// handleUpload handles POST /api/upload-json: multipart/form-data with a
// "file" part (the JSON chat payload) and an optional "force_reprocess"
// bool field. Accept runs synchronously and returns 202 immediately; the
// pipeline itself runs in the background, tracked by upload_id.
func (s *Server) handleUpload(c *echo.Context) error {
	form, err := parseUploadForm(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp, err := s.orchestrator.Accept(form.raw, form.forceReprocess)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusAccepted, resp)
}

func parseUploadForm(c *echo.Context) (uploadForm, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return uploadForm{}, errors.New("missing \"file\" form field")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return uploadForm{}, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return uploadForm{}, err
	}

	forceReprocess := false
	if v := c.FormValue("force_reprocess"); v != "" {
		forceReprocess, err = strconv.ParseBool(v)
		if err != nil {
			return uploadForm{}, errors.New("force_reprocess must be a bool")
		}
	}

	return uploadForm{raw: raw, forceReprocess: forceReprocess}, nil
}
