package handlers

import (
	"errors"
	"net/http"

	"github.com/bprateek14/video-generation-platform/internal/infra/credentials"
)

type credentialReq struct {
	APIKey string `json:"api_key"`
}

func (a *App) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	hasKey, err := a.Host.HasSelectedCredential(r.Context())
	if err != nil {
		a.logger().Error().Err(err).Msg("handlers: credential status")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read credentials")
		return
	}
	a.json(w, http.StatusOK, map[string]bool{
		"authorized": a.Gate.Authorized(),
		"has_key":    hasKey,
	})
}

// PutCredential stores the selected Gemini key. The gate picks it up on the
// next video request.
func (a *App) PutCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialReq
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.Credentials.SetGeminiAPIKey(r.Context(), req.APIKey); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_key", err.Error())
		return
	}
	a.logger().Info().Msg("handlers: gemini api key selected")
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := a.Credentials.ClearGeminiAPIKey(r.Context()); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to clear key")
		return
	}
	a.Gate.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// OpenSelector asks connected clients to show the key selector.
func (a *App) OpenSelector(w http.ResponseWriter, r *http.Request) {
	if err := a.Host.OpenCredentialSelector(r.Context()); err != nil {
		if errors.Is(err, credentials.ErrNoSelector) {
			a.error(w, http.StatusNotImplemented, "unavailable", "API Key selection dialog is not available.")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to open key selector")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
