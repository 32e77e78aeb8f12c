// Command merkuze is the hospital information assistant.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/merkuze-health/merkuze/internal/adapters/driving/cli"
	"github.com/merkuze-health/merkuze/internal/bootstrap"
	"github.com/merkuze-health/merkuze/internal/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetInitialiser(initialise)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// initialise builds the services a command needs.
func initialise(scope cli.Scope) (*cli.Services, func(), error) {
	app, err := bootstrap.New(bootstrap.Options{
		SettingsOnly: scope == cli.ScopeSettings,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := app.Close(); err != nil {
			logger.Warn("close: %v", err)
		}
	}

	services := &cli.Services{
		Settings:  app.SettingsService,
		Extractor: app.Extractor,
	}
	if scope == cli.ScopeSettings {
		return services, cleanup, nil
	}

	services.Chat = app.ChatService
	services.Index = app.IndexService
	services.Ingestion = app.IngestionService
	services.Document = app.DocumentService
	services.Prompts = app.Prompts
	services.StartEmbedder = app.StartEmbedder
	services.WarmupEmbedder = app.WarmupEmbedder
	services.Server = cli.ServerConfig{
		Addr:            app.Settings.Server.Addr,
		AllowedOrigins:  app.Settings.Server.AllowedOrigins,
		FallbackMessage: app.ChatConfig.FallbackMessage,
	}
	return services, cleanup, nil
}
