package library

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Author identifies who wrote a conversation message.
type Author string

const (
	AuthorUser Author = "user"
	AuthorBot  Author = "bot"
)

// Source is a citation attached to a bot message.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Message is one entry of the persisted conversation.
type Message struct {
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	VideoURL  string    `json:"videoUrl,omitempty"`
	IsLoading bool      `json:"isLoading,omitempty"`
	IsError   bool      `json:"isError,omitempty"`
	Sources   []Source  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Provider names a model vendor selectable in settings.
type Provider string

const (
	ProviderGoogle    Provider = "Google"
	ProviderOpenAI    Provider = "OpenAI"
	ProviderAnthropic Provider = "Anthropic"
	ProviderStability Provider = "Stability AI"
	ProviderReplicate Provider = "Replicate"
	ProviderCustom    Provider = "Custom Endpoint"
)

// Providers lists every selectable provider in display order.
var Providers = []Provider{
	ProviderGoogle,
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderStability,
	ProviderReplicate,
	ProviderCustom,
}

// ErrInvalidSettings is returned by Settings.Validate.
var ErrInvalidSettings = errors.New("library: invalid settings")

// Settings are the user preferences persisted alongside the history.
type Settings struct {
	Provider       Provider `json:"provider"`
	APIKey         string   `json:"apiKey"`
	ImageModel     string   `json:"imageModel"`
	VideoModel     string   `json:"videoModel"`
	CustomEndpoint string   `json:"customEndpoint"`
}

// WithDefaults fills blank fields from defaults.
func (s Settings) WithDefaults(defaults Settings) Settings {
	if s.Provider == "" {
		s.Provider = defaults.Provider
	}
	if strings.TrimSpace(s.ImageModel) == "" {
		s.ImageModel = defaults.ImageModel
	}
	if strings.TrimSpace(s.VideoModel) == "" {
		s.VideoModel = defaults.VideoModel
	}
	return s
}

// Validate checks the provider and the custom endpoint requirement.
func (s Settings) Validate() error {
	known := false
	for _, p := range Providers {
		if s.Provider == p {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidSettings, s.Provider)
	}
	if s.Provider == ProviderCustom && strings.TrimSpace(s.CustomEndpoint) == "" {
		return fmt.Errorf("%w: custom endpoint is required", ErrInvalidSettings)
	}
	return nil
}
