package library

import (
	"context"
	"errors"
	"testing"

	"github.com/bprateek14/video-generation-platform/internal/kv"
)

type failingStore struct {
	kv.Store
	err error
}

func (f failingStore) Get(ctx context.Context, key string) ([]byte, error) { return nil, f.err }

func (f failingStore) Set(ctx context.Context, key string, value []byte) error { return f.err }

func TestHistoryRoundTrip(t *testing.T) {
	lib := New(kv.NewMemory(), Settings{}, nil)
	ctx := context.Background()

	if got := lib.History(ctx); got == nil || len(got) != 0 {
		t.Fatalf("expected empty history, got %#v", got)
	}
	msgs := []Message{
		{ID: "user-1", Author: AuthorUser, Text: "a red cube"},
		{ID: "bot-1", Author: AuthorBot, Text: "Here is your generated image:", ImageURL: "data:image/jpeg;base64,AA=="},
	}
	if err := lib.SaveHistory(ctx, msgs); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	got := lib.History(ctx)
	if len(got) != 2 || got[1].ImageURL != msgs[1].ImageURL || got[0].Author != AuthorUser {
		t.Fatalf("history mismatch: %#v", got)
	}
}

func TestSettingsDefaults(t *testing.T) {
	lib := New(kv.NewMemory(), Settings{}, nil)
	s := lib.Settings(context.Background())
	if s.Provider != ProviderGoogle || s.ImageModel != "imagen-4.0-generate-001" || s.VideoModel != "veo-3.1-fast-generate-preview" {
		t.Fatalf("unexpected defaults: %#v", s)
	}
}

func TestSaveSettingsValidates(t *testing.T) {
	lib := New(kv.NewMemory(), Settings{}, nil)
	ctx := context.Background()

	if _, err := lib.SaveSettings(ctx, Settings{Provider: "Acme"}); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
	if _, err := lib.SaveSettings(ctx, Settings{Provider: ProviderCustom}); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings for missing endpoint, got %v", err)
	}

	saved, err := lib.SaveSettings(ctx, Settings{Provider: ProviderOpenAI, APIKey: "k", VideoModel: "veo-x"})
	if err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if saved.ImageModel != "imagen-4.0-generate-001" {
		t.Fatalf("defaults not applied: %#v", saved)
	}
	if got := lib.Settings(ctx); got != saved {
		t.Fatalf("settings mismatch: %#v vs %#v", got, saved)
	}
}

func TestBestEffortReads(t *testing.T) {
	ctx := context.Background()

	corrupt := kv.NewMemory()
	_ = corrupt.Set(ctx, HistoryKey, []byte("{not json"))
	_ = corrupt.Set(ctx, SettingsKey, []byte("[]"))
	lib := New(corrupt, Settings{}, nil)
	if got := lib.History(ctx); len(got) != 0 {
		t.Fatalf("expected empty history for corrupt value, got %#v", got)
	}
	if got := lib.Settings(ctx); got != DefaultSettings() {
		t.Fatalf("expected defaults for corrupt value, got %#v", got)
	}

	broken := New(failingStore{err: errors.New("disk gone")}, Settings{}, nil)
	if got := broken.History(ctx); len(got) != 0 {
		t.Fatalf("expected empty history, got %#v", got)
	}
	if err := broken.SaveHistory(ctx, nil); err == nil {
		t.Fatal("expected write error to be reported")
	}
}
