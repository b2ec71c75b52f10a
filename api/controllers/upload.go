package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/craftline/cartengine/api/backend"
	"github.com/craftline/cartengine/api/responses"
	"github.com/craftline/cartengine/pkg/config"
	pkgerrors "github.com/craftline/cartengine/pkg/errors"
	"github.com/craftline/cartengine/pkg/logger"
)

// UploadImage accepts a multipart image and returns its stored URL.
func UploadImage(store *backend.Store, cfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(cfg.MaxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file field is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, cfg.MaxUploadBytes+1))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload"))
			return
		}
		if int64(len(data)) > cfg.MaxUploadBytes {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "upload exceeds %d bytes", cfg.MaxUploadBytes))
			return
		}

		detected := mimetype.Detect(data)
		if !strings.HasPrefix(detected.String(), "image/") {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "payload is %s, not an image", detected.String()))
			return
		}

		folder := r.FormValue("folder")
		if folder == "" {
			folder = "custom"
		}

		path := store.SaveUpload(folder, header.Filename, data)
		responses.WriteSuccess(w, map[string]string{"image_url": path})
	}
}
