// Package chat runs generation requests as a conversation: every request adds
// a user message and a bot message that tracks progress and carries the
// resulting media.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bprateek14/video-generation-platform/internal/generation"
	"github.com/bprateek14/video-generation-platform/internal/infra"
	"github.com/bprateek14/video-generation-platform/internal/library"
)

var (
	ErrEmptyPrompt = errors.New("chat: prompt is required")
	ErrBusy        = errors.New("chat: a generation is already running")
)

const (
	textImageReady = "Here is your generated image:"
	textVideoReady = "Your generated video is ready:"
	textStale      = "Error: generation was interrupted before it finished."
)

// Generator runs a single generation request.
type Generator interface {
	Request(ctx context.Context, req generation.Request, onProgress generation.ProgressFunc) (*generation.Result, error)
}

// Publisher is notified of every message change.
type Publisher interface {
	PublishMessage(msg library.Message)
}

// Options configures a Service.
type Options struct {
	Library   *library.Library
	Generator Generator
	Publisher Publisher
	// AssetURL maps a media key to the URL clients use to fetch it.
	AssetURL func(key string) string
	Logger   *infra.Logger
	Now      func() time.Time
}

// Service owns the in-memory conversation and mirrors it to the library.
type Service struct {
	lib      *library.Library
	gen      Generator
	pub      Publisher
	assetURL func(string) string
	logger   *infra.Logger
	now      func() time.Time

	mu       sync.Mutex
	messages []library.Message
	busy     bool
	wg       sync.WaitGroup
}

// New restores the stored conversation. Messages still marked as loading from a
// previous process are turned into errors.
func New(ctx context.Context, opts Options) (*Service, error) {
	if opts.Library == nil || opts.Generator == nil {
		return nil, errors.New("chat: library and generator are required")
	}
	if opts.AssetURL == nil {
		opts.AssetURL = func(key string) string { return "/v1/assets/" + key }
	}
	if opts.Logger == nil {
		opts.Logger = infra.NopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Service{
		lib:      opts.Library,
		gen:      opts.Generator,
		pub:      opts.Publisher,
		assetURL: opts.AssetURL,
		logger:   opts.Logger,
		now:      opts.Now,
	}

	messages := opts.Library.History(ctx)
	stale := 0
	for i := range messages {
		if messages[i].IsLoading {
			messages[i].IsLoading = false
			messages[i].IsError = true
			messages[i].Text = textStale
			stale++
		}
	}
	s.messages = messages
	if stale > 0 {
		s.logger.Warn().Int("count", stale).Msg("chat: marked interrupted generations as failed")
		_ = s.lib.SaveHistory(ctx, messages)
	}
	return s, nil
}

// Submit starts a generation in the background and returns the user message
// and the placeholder bot message. Only one generation runs at a time.
func (s *Service) Submit(ctx context.Context, kind generation.Kind, prompt string) (library.Message, library.Message, error) {
	req, user, bot, err := s.begin(ctx, kind, prompt)
	if err != nil {
		return library.Message{}, library.Message{}, err
	}
	go func() {
		_, _ = s.execute(context.WithoutCancel(ctx), req, bot.ID, nil)
	}()
	return user, bot, nil
}

// Run is the synchronous form of Submit. It records the conversation the same
// way and returns the generation outcome. onProgress may be nil.
func (s *Service) Run(ctx context.Context, kind generation.Kind, prompt string, onProgress generation.ProgressFunc) (*generation.Result, error) {
	req, _, bot, err := s.begin(ctx, kind, prompt)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, req, bot.ID, onProgress)
}

func (s *Service) begin(ctx context.Context, kind generation.Kind, prompt string) (generation.Request, library.Message, library.Message, error) {
	var (
		user, bot library.Message
		req       generation.Request
	)
	if strings.TrimSpace(prompt) == "" {
		return req, user, bot, ErrEmptyPrompt
	}
	settings := s.lib.Settings(ctx)
	model := settings.ImageModel
	if kind == generation.KindVideo {
		model = settings.VideoModel
	}
	req, err := generation.NewRequest(kind, prompt, model)
	if err != nil {
		return req, user, bot, err
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return req, user, bot, ErrBusy
	}
	s.busy = true
	now := s.now().UTC()
	user = library.Message{
		ID:        "user-" + uuid.NewString(),
		Author:    library.AuthorUser,
		Text:      req.Prompt,
		CreatedAt: now,
	}
	bot = library.Message{
		ID:        "bot-" + uuid.NewString(),
		Author:    library.AuthorBot,
		Text:      fmt.Sprintf("Generating %s...", kind),
		IsLoading: true,
		CreatedAt: now,
	}
	s.messages = append(s.messages, user, bot)
	snapshot := s.snapshotLocked()
	s.wg.Add(1)
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.publish(user)
	s.publish(bot)

	s.logger.Info().
		Str("kind", string(kind)).
		Str("model", model).
		Str("message_id", bot.ID).
		Msg("chat: generation submitted")
	return req, user, bot, nil
}

func (s *Service) execute(ctx context.Context, req generation.Request, botID string, onProgress generation.ProgressFunc) (*generation.Result, error) {
	defer s.wg.Done()

	res, err := s.gen.Request(ctx, req, func(status string) {
		s.update(ctx, botID, func(m *library.Message) {
			m.Text = status
		})
		if onProgress != nil {
			onProgress(status)
		}
	})

	s.update(ctx, botID, func(m *library.Message) {
		m.IsLoading = false
		if err != nil {
			m.IsError = true
			m.Text = "Error: " + errorMessage(err)
			return
		}
		switch res.Kind {
		case generation.KindImage:
			m.Text = textImageReady
			m.ImageURL = res.Image.DataURL()
		case generation.KindVideo:
			m.Text = textVideoReady
			m.VideoURL = s.assetURL(res.Video.Key)
		}
	})

	if err != nil {
		s.logger.Error().Err(err).Str("message_id", botID).Msg("chat: generation failed")
	} else {
		s.logger.Info().Str("message_id", botID).Msg("chat: generation finished")
	}

	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
	return res, err
}

func errorMessage(err error) string {
	if genErr, ok := generation.AsError(err); ok {
		return genErr.Message
	}
	return err.Error()
}

// update applies fn to the message with id, then persists and publishes it.
// Updates for messages removed by Clear are dropped.
func (s *Service) update(ctx context.Context, id string, fn func(*library.Message)) {
	s.mu.Lock()
	idx := -1
	for i := range s.messages {
		if s.messages[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	fn(&s.messages[idx])
	msg := s.messages[idx]
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.publish(msg)
}

func (s *Service) snapshotLocked() []library.Message {
	out := make([]library.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Service) persist(ctx context.Context, messages []library.Message) {
	if err := s.lib.SaveHistory(ctx, messages); err != nil {
		s.logger.Warn().Err(err).Msg("chat: history not persisted")
	}
}

func (s *Service) publish(msg library.Message) {
	if s.pub != nil {
		s.pub.PublishMessage(msg)
	}
}

// History returns a copy of the conversation.
func (s *Service) History() []library.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Busy reports whether a generation is running.
func (s *Service) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Clear removes every message. It is rejected while a generation runs.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.messages = []library.Message{}
	s.mu.Unlock()
	return s.lib.SaveHistory(ctx, []library.Message{})
}

// Wait blocks until background generations finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
