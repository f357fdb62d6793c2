package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kicklink/social-backend/internal/media"
)

// maxUploadBytes caps attachment size at 25 MiB.
const maxUploadBytes = 25 << 20

type MediaHandler struct {
	uploader *media.Uploader
}

func NewMediaHandler(uploader *media.Uploader) *MediaHandler {
	return &MediaHandler{uploader: uploader}
}

func (h *MediaHandler) Upload(c echo.Context) error {
	if _, ok := requestUID(c); !ok {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxUploadBytes)

	contentType := req.Header.Get("Content-Type")
	url, err := h.uploader.Upload(req.Context(), "attachments", contentType, req.Body)
	if err != nil {
		if errors.Is(err, media.ErrNotConfigured) {
			return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "media storage is not configured"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, map[string]string{"url": url})
}
