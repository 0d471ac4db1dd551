package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bprateek14/video-generation-platform/internal/app"
	"github.com/bprateek14/video-generation-platform/internal/http/handlers"
	httpapi "github.com/bprateek14/video-generation-platform/internal/http/httpapi"
	"github.com/bprateek14/video-generation-platform/internal/http/stream"
	"github.com/bprateek14/video-generation-platform/internal/infra"
)

func main() {
	_ = godotenv.Load(".env", ".env.local")

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// Browser clients learn about progress and key selection over the stream.
	hub := stream.NewHub(cfg.CORSOrigins, &logger)

	ctx := context.Background()
	svc, err := app.Build(ctx, cfg, &logger, app.Hooks{
		Selector: func(context.Context) error {
			hub.PublishSelectionRequested()
			return nil
		},
		Publisher: hub,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build application")
	}
	defer svc.Close()

	router := httpapi.NewRouter(&handlers.App{
		Chat:        svc.Chat,
		Library:     svc.Library,
		Credentials: svc.Credentials,
		Host:        svc.Host,
		Gate:        svc.Gate,
		Media:       svc.Media,
		Logger:      &logger,
	}, httpapi.Options{
		Logger:      &logger,
		CORSOrigins: cfg.CORSOrigins,
		Stream:      hub,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	// Let a running generation record its outcome before the store closes.
	if err := svc.Chat.Wait(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("generation still running at shutdown")
	}
	logger.Info().Msg("server stopped")
}
