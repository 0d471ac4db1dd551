package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bprateek14/video-generation-platform/internal/storage"
)

// DownloadAsset streams generated media by key.
func (a *App) DownloadAsset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		a.error(w, http.StatusNotFound, "not_found", "asset not found")
		return
	}
	rc, err := a.Media.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "asset not found")
			return
		}
		a.logger().Warn().Err(err).Str("key", key).Msg("handlers: open asset")
		a.error(w, http.StatusBadRequest, "invalid_key", "asset could not be opened")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentTypeFor(key))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		a.logger().Debug().Err(err).Str("key", key).Msg("handlers: asset stream interrupted")
	}
}

var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

func contentTypeFor(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ct, ok := mediaTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
