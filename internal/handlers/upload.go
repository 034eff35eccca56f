package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/nats-backoffice/httpx"
	"github.com/diewo77/nats-backoffice/internal/services"
	"go.uber.org/zap"
)

// multipartOverhead covers boundaries and part headers on top of the file.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	uploads *services.UploadService
	errs    errorWriter
}

func NewUploadHandler(uploads *services.UploadService, log *zap.Logger, dev bool) *UploadHandler {
	return &UploadHandler{uploads: uploads, errs: newErrorWriter(log, dev)}
}

// Upload reads the "file" part of a multipart form.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes()+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.errs.write(w, r, services.ErrPayloadTooLarge, "Failed to upload file")
			return
		}
		h.errs.write(w, r, services.ErrNoFile, "Failed to upload file")
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	res, err := h.uploads.Upload(r.Context(), services.UploadFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.errs.write(w, r, err, "Failed to upload file")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "url": res.URL, "filename": res.Filename})
}
