package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bprateek14/video-generation-platform/internal/kv"
)

const (
	ProviderGemini = "gemini"
)

type record struct {
	Token     string         `json:"token"`
	Props     map[string]any `json:"props,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type Store struct {
	kv kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

func tokenKey(provider string) string {
	return "credentials:" + provider
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	raw, err := s.kv.Get(ctx, tokenKey(provider))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", fmt.Errorf("credentials: decode %s: %w", provider, err)
	}
	return strings.TrimSpace(rec.Token), nil
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("gemini api key is required")
	}
	return s.upsert(ctx, ProviderGemini, key, nil)
}

func (s *Store) ClearGeminiAPIKey(ctx context.Context) error {
	return s.kv.Delete(ctx, tokenKey(ProviderGemini))
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	raw, err := json.Marshal(record{Token: token, Props: props, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, tokenKey(provider), raw)
}
