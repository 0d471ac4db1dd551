package handlers

import (
	"errors"
	"net/http"

	"github.com/bprateek14/video-generation-platform/internal/chat"
)

func (a *App) History(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"messages":   a.Chat.History(),
		"generating": a.Chat.Busy(),
	})
}

func (a *App) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := a.Chat.Clear(r.Context()); err != nil {
		if errors.Is(err, chat.ErrBusy) {
			a.error(w, http.StatusConflict, "busy", "a generation is still running")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) GeneratedHistory(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.Chat.GeneratedItems()})
}

func (a *App) Dashboard(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Chat.Stats(r.Context()))
}
