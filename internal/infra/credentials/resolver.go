package credentials

import (
	"context"
	"strings"

	"github.com/bprateek14/video-generation-platform/internal/library"
)

// SettingsReader exposes the persisted user settings.
type SettingsReader interface {
	Settings(ctx context.Context) library.Settings
}

// Resolver picks the API key used for the next Gemini call: the selected key,
// then a key entered in the Google settings, then the environment fallback.
type Resolver struct {
	store    *Store
	settings SettingsReader
	envKey   string
}

// NewResolver builds a Resolver. settings may be nil.
func NewResolver(store *Store, settings SettingsReader, envKey string) *Resolver {
	return &Resolver{store: store, settings: settings, envKey: strings.TrimSpace(envKey)}
}

// APIKey returns the active key, or "" when none is available.
func (r *Resolver) APIKey(ctx context.Context) (string, error) {
	key, err := r.store.GeminiAPIKey(ctx)
	if err != nil {
		return "", err
	}
	if key != "" {
		return key, nil
	}
	if r.settings != nil {
		s := r.settings.Settings(ctx)
		if s.Provider == library.ProviderGoogle {
			if key := strings.TrimSpace(s.APIKey); key != "" {
				return key, nil
			}
		}
	}
	return r.envKey, nil
}
