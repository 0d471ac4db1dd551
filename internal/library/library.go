// Package library persists the conversation history and user settings in a
// kv.Store. Persistence is best effort: read failures fall back to defaults
// and write failures are logged.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bprateek14/video-generation-platform/internal/infra"
	"github.com/bprateek14/video-generation-platform/internal/kv"
)

// Fixed storage keys.
const (
	HistoryKey  = "genforge-history"
	SettingsKey = "genforge-settings"
)

// Library reads and writes the persisted application state.
type Library struct {
	store    kv.Store
	defaults Settings
	logger   *infra.Logger
}

// DefaultSettings returns the settings used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		Provider:   ProviderGoogle,
		ImageModel: infra.DefaultImageModel,
		VideoModel: infra.DefaultVideoModel,
	}
}

// New creates a Library. Zero-valued default fields are taken from
// DefaultSettings.
func New(store kv.Store, defaults Settings, logger *infra.Logger) *Library {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Library{
		store:    store,
		defaults: defaults.WithDefaults(DefaultSettings()),
		logger:   logger,
	}
}

// History returns the stored conversation, or an empty one.
func (l *Library) History(ctx context.Context) []Message {
	var messages []Message
	if !l.load(ctx, HistoryKey, &messages) {
		return []Message{}
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages
}

// SaveHistory replaces the stored conversation.
func (l *Library) SaveHistory(ctx context.Context, messages []Message) error {
	return l.save(ctx, HistoryKey, messages)
}

// Settings returns the stored settings with defaults applied.
func (l *Library) Settings(ctx context.Context) Settings {
	var s Settings
	if !l.load(ctx, SettingsKey, &s) {
		return l.defaults
	}
	return s.WithDefaults(l.defaults)
}

// SaveSettings validates and stores s.
func (l *Library) SaveSettings(ctx context.Context, s Settings) (Settings, error) {
	s = s.WithDefaults(l.defaults)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	if err := l.save(ctx, SettingsKey, s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Defaults returns the configured default settings.
func (l *Library) Defaults() Settings {
	return l.defaults
}

func (l *Library) load(ctx context.Context, key string, dst any) bool {
	raw, err := l.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			l.logger.Warn().Err(err).Str("key", key).Msg("library: read failed; using defaults")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		l.logger.Warn().Err(err).Str("key", key).Msg("library: stored value is corrupt; using defaults")
		return false
	}
	return true
}

func (l *Library) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("library: encode %s: %w", key, err)
	}
	if err := l.store.Set(ctx, key, raw); err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("library: write failed")
		return fmt.Errorf("library: write %s: %w", key, err)
	}
	return nil
}
