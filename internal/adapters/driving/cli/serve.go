package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	httpapi "github.com/merkuze-health/merkuze/internal/adapters/driving/http"
	"github.com/merkuze-health/merkuze/internal/logger"
)

var (
	serveAddr         string
	serveOrigins      []string
	serveWatchPrompts bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat HTTP endpoint",
	Long: `Serve the chat endpoint used by the hospital web front end.

Endpoints:
  POST /api/chat       {"message": "..."} -> {"answer": "..."}
  GET  /api/health     embedding readiness and collection statistics
  GET  /api/documents  uploaded knowledge documents

Every decodable chat request gets a 200 response with an answer; failures
are answered with the fallback message and logged.

With --watch-prompts, edits to the prompt files in ~/.merkuze/prompts are
picked up without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from settings, :3001)")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "origin", nil, "allowed CORS origin, repeatable (default from settings)")
	serveCmd.Flags().BoolVar(&serveWatchPrompts, "watch-prompts", false, "reload prompts when their files change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	cfg := httpapi.Config{
		Addr:            serverConfig.Addr,
		AllowedOrigins:  serverConfig.AllowedOrigins,
		FallbackMessage: serverConfig.FallbackMessage,
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if len(serveOrigins) > 0 {
		cfg.AllowedOrigins = serveOrigins
	}
	if cfg.Addr == "" {
		cfg.Addr = ":3001"
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Chat:     chatService,
		Index:    indexService,
		Document: documentService,
	}, cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	if serveWatchPrompts {
		if err := watchPrompts(ctx, cmd); err != nil {
			return err
		}
	}

	if startEmbedder != nil {
		startEmbedder()
	}

	if err := server.Start(); err != nil {
		return err
	}
	cmd.Printf("Chat endpoint listening on %s (origins: %s)\n", server.Addr(), strings.Join(cfg.AllowedOrigins, ", "))

	<-ctx.Done()
	cmd.Println("Shutting down...")
	return server.Stop()
}

// watchPrompts reloads prompts in the background until ctx is done.
func watchPrompts(ctx context.Context, cmd *cobra.Command) error {
	if promptWatcher == nil {
		return errors.New("prompt store not configured")
	}

	changes, err := promptWatcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch prompts: %w", err)
	}

	go func() {
		for name := range changes {
			logger.Debug("Prompt reload: %s", name)
			cmd.Printf("Prompt %q reloaded\n", name)
		}
	}()
	return nil
}
