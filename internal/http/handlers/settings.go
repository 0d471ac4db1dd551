package handlers

import (
	"errors"
	"net/http"

	"github.com/bprateek14/video-generation-platform/internal/library"
)

func (a *App) GetSettings(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"settings":  a.Library.Settings(r.Context()),
		"providers": library.Providers,
	})
}

func (a *App) PutSettings(w http.ResponseWriter, r *http.Request) {
	var s library.Settings
	if !a.decode(w, r, &s) {
		return
	}
	saved, err := a.Library.SaveSettings(r.Context(), s)
	if err != nil {
		if errors.Is(err, library.ErrInvalidSettings) {
			a.error(w, http.StatusBadRequest, "invalid_settings", err.Error())
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to save settings")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"settings": saved})
}
