package handlers

import (
	"errors"
	"net/http"

	"github.com/bprateek14/video-generation-platform/internal/chat"
	"github.com/bprateek14/video-generation-platform/internal/generation"
	"github.com/bprateek14/video-generation-platform/internal/middleware"
)

type generateReq struct {
	Kind   string `json:"kind"`
	Prompt string `json:"prompt"`
}

// CreateGeneration submits a prompt to the conversation. The generation runs in
// the background; clients follow it on the event stream or by polling history.
func (a *App) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if !a.decode(w, r, &req) {
		return
	}
	kind, err := generation.ParseKind(req.Kind)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_kind", "kind must be image or video")
		return
	}

	user, bot, err := a.Chat.Submit(r.Context(), kind, req.Prompt)
	switch {
	case errors.Is(err, chat.ErrEmptyPrompt):
		a.error(w, http.StatusBadRequest, "empty_prompt", "prompt is required")
		return
	case errors.Is(err, chat.ErrBusy):
		a.error(w, http.StatusConflict, "busy", "a generation is already running")
		return
	case errors.Is(err, generation.ErrInvalidRequest):
		a.error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	case err != nil:
		a.logger().Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("handlers: submit generation")
		a.error(w, http.StatusInternalServerError, "internal", "failed to submit generation")
		return
	}

	a.json(w, http.StatusAccepted, map[string]any{"user": user, "bot": bot})
}
