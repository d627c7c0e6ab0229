package httpserver

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/transport"
	"github.com/Skotchmaster/phone_shop/internal/upload"
)

type UploadHTTP struct {
	Store *upload.Store
}

// storeError maps a failed save to 400 when the client sent something we
// refuse, else 500 with msg.
func storeError(l *slog.Logger, err error, msg string) error {
	if re, ok := upload.Rejected(err); ok {
		l.Warn("upload_error", "status", http.StatusBadRequest, "reason", re.Error())
		return echo.NewHTTPError(http.StatusBadRequest, re.Error())
	}
	l.Error("upload_error", "status", http.StatusInternalServerError, "reason", "store failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, msg).SetInternal(err)
}

func (h *UploadHTTP) UploadImage(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "upload.image")

	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return echo.NewHTTPError(http.StatusBadRequest, upload.ErrNoFiles.Error())
		}
		l.Warn("upload_error", "status", http.StatusBadRequest, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}

	url, err := h.Store.Save(fh)
	if err != nil {
		return storeError(l, err, "Failed to upload image")
	}

	l.Info("upload_success", "files", 1)
	return transport.OK(c, http.StatusCreated, map[string]string{"url": url})
}

func (h *UploadHTTP) UploadImages(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "upload.images")

	form, err := c.MultipartForm()
	if err != nil {
		l.Warn("upload_error", "status", http.StatusBadRequest, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}
	var files []*multipart.FileHeader
	if form != nil {
		files = form.File["images"]
	}

	urls, err := h.Store.SaveAll(files)
	if err != nil {
		return storeError(l, err, "Failed to upload images")
	}

	l.Info("upload_success", "files", len(urls))
	return transport.OK(c, http.StatusCreated, urls)
}
