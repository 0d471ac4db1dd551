// Package app assembles the service graph shared by the API server and the
// CLI from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/bprateek14/video-generation-platform/internal/authgate"
	"github.com/bprateek14/video-generation-platform/internal/chat"
	"github.com/bprateek14/video-generation-platform/internal/generation"
	"github.com/bprateek14/video-generation-platform/internal/infra"
	"github.com/bprateek14/video-generation-platform/internal/infra/credentials"
	"github.com/bprateek14/video-generation-platform/internal/kv"
	"github.com/bprateek14/video-generation-platform/internal/library"
	"github.com/bprateek14/video-generation-platform/internal/providers/genai"
	"github.com/bprateek14/video-generation-platform/internal/storage"
)

// Hooks are the environment-specific pieces supplied by the entrypoint.
type Hooks struct {
	// Selector starts interactive key selection. Nil disables it.
	Selector credentials.Selector
	// Publisher receives conversation updates. May be nil.
	Publisher chat.Publisher
}

// App is the assembled service graph.
type App struct {
	Config       *infra.Config
	Logger       *infra.Logger
	KV           kv.Store
	Library      *library.Library
	Credentials  *credentials.Store
	Resolver     *credentials.Resolver
	Host         *credentials.Host
	Gate         *authgate.Gate
	Media        generation.MediaStore
	Orchestrator *generation.Orchestrator
	Chat         *chat.Service

	closers []func()
}

// Build wires every component from cfg. Call Close when done.
func Build(ctx context.Context, cfg *infra.Config, logger *infra.Logger, hooks Hooks) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	a := &App{Config: cfg, Logger: logger}

	store, err := a.openKV(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.KV = store

	media, err := openMedia(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Media = media

	a.Library = library.New(store, library.Settings{
		ImageModel: cfg.ImageModel,
		VideoModel: cfg.VideoModel,
	}, logger)
	a.Credentials = credentials.NewStore(store)
	a.Resolver = credentials.NewResolver(a.Credentials, a.Library, cfg.GeminiAPIKey)
	a.Host = credentials.NewHost(a.Resolver, hooks.Selector)
	a.Gate = authgate.New(a.Host, nil, logger)

	service, err := genai.NewClient(genai.Options{
		Keys:    a.Resolver,
		BaseURL: cfg.GeminiBaseURL,
		Logger:  logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Orchestrator, err = generation.NewOrchestrator(generation.Options{
		Service:      service,
		Gate:         a.Gate,
		Media:        media,
		PollInterval: cfg.VideoPollInterval,
		Logger:       logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Chat, err = chat.New(ctx, chat.Options{
		Library:   a.Library,
		Generator: a.Orchestrator,
		Publisher: hooks.Publisher,
		Logger:    logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// openKV picks Postgres when DATABASE_URL is set and BadgerDB otherwise.
func (a *App) openKV(ctx context.Context) (kv.Store, error) {
	cfg := a.Config
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		pg := kv.NewPostgres(infra.NewSQLRunner(pool, *a.Logger))
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		a.Logger.Info().Msg("app: using postgres state store")
		return pg, nil
	}

	db, err := kv.NewBadger(kv.BadgerOptions{Dir: cfg.StateDir, Logger: a.Logger})
	if err != nil {
		return nil, fmt.Errorf("app: open state dir %s: %w", cfg.StateDir, err)
	}
	a.closers = append(a.closers, func() {
		if err := db.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("app: close state store")
		}
	})
	a.Logger.Info().Str("dir", cfg.StateDir).Msg("app: using badger state store")
	return db, nil
}

// openMedia picks S3 when a bucket is configured and the local filesystem
// otherwise.
func openMedia(ctx context.Context, cfg *infra.Config) (generation.MediaStore, error) {
	if cfg.S3Bucket != "" {
		client, err := storage.NewS3Client(ctx, storage.S3Options{
			Region:       cfg.S3Region,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix)
	}
	return storage.NewFileStore(cfg.StoragePath)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
