package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/bprateek14/video-generation-platform/internal/authgate"
	"github.com/bprateek14/video-generation-platform/internal/chat"
	"github.com/bprateek14/video-generation-platform/internal/generation"
	"github.com/bprateek14/video-generation-platform/internal/infra"
	"github.com/bprateek14/video-generation-platform/internal/infra/credentials"
	"github.com/bprateek14/video-generation-platform/internal/library"
)

type App struct {
	Chat        *chat.Service
	Library     *library.Library
	Credentials *credentials.Store
	Host        *credentials.Host
	Gate        *authgate.Gate
	Media       generation.MediaStore
	Logger      *infra.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return false
	}
	return true
}

func (a *App) logger() *infra.Logger {
	if a.Logger == nil {
		return infra.NopLogger()
	}
	return a.Logger
}
