package chat

import (
	"context"
	"fmt"

	"github.com/bprateek14/video-generation-platform/internal/library"
)

// Simulated per-item prices in cents.
const (
	imageCostCents = 4
	videoCostCents = 20
)

const promptNotFound = "Prompt not found"

// GeneratedItem pairs a bot message that carries media with its prompt.
type GeneratedItem struct {
	Message library.Message `json:"message"`
	Prompt  string          `json:"prompt"`
}

// GeneratedItems lists generated media in conversation order. The prompt is
// the user message directly preceding the bot message.
func (s *Service) GeneratedItems() []GeneratedItem {
	history := s.History()
	items := []GeneratedItem{}
	for i, msg := range history {
		if msg.Author != library.AuthorBot || (msg.ImageURL == "" && msg.VideoURL == "") {
			continue
		}
		prompt := promptNotFound
		if i > 0 && history[i-1].Author == library.AuthorUser {
			prompt = history[i-1].Text
		}
		items = append(items, GeneratedItem{Message: msg, Prompt: prompt})
	}
	return items
}

// Stats summarizes usage for the dashboard.
type Stats struct {
	ImageGenerations int    `json:"imageGenerations"`
	VideoGenerations int    `json:"videoGenerations"`
	TotalCost        string `json:"totalCost"`
	Provider         string `json:"provider"`
	ImageModel       string `json:"imageModel"`
	VideoModel       string `json:"videoModel"`
}

// Stats counts generated media and prices it at simulated rates.
func (s *Service) Stats(ctx context.Context) Stats {
	var stats Stats
	for _, msg := range s.History() {
		if msg.Author != library.AuthorBot {
			continue
		}
		if msg.ImageURL != "" {
			stats.ImageGenerations++
		}
		if msg.VideoURL != "" {
			stats.VideoGenerations++
		}
	}
	cents := stats.ImageGenerations*imageCostCents + stats.VideoGenerations*videoCostCents
	stats.TotalCost = fmt.Sprintf("%d.%02d", cents/100, cents%100)

	settings := s.lib.Settings(ctx)
	stats.Provider = string(settings.Provider)
	stats.ImageModel = settings.ImageModel
	stats.VideoModel = settings.VideoModel
	return stats
}
