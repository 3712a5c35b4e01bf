package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yourusername/catbot-chat/internal/config"
	"github.com/yourusername/catbot-chat/internal/logging"
	"github.com/yourusername/catbot-chat/internal/server"
)

var cfg = config.LoadServer()

var rootCmd = &cobra.Command{
	Use:   "catbot-server",
	Short: "Reference backend for the cat bot chat client",
	RunE:  runServer,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port (env PORT)")
	flags.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite message log (env DB_PATH)")
	flags.StringSliceVar(&cfg.AllowedOrigins, "allowed-origins", cfg.AllowedOrigins, "CORS origins (env ALLOWED_ORIGINS)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error (env LOG_LEVEL)")
	flags.IntVar(&cfg.HistoryWindow, "history-window", cfg.HistoryWindow, "earlier turns sent to the model (env HISTORY_WINDOW)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := server.OpenStore(ctx, cfg.DBPath)
	if err != nil {
		logger.Error().Err(err).Msg("open store")
		return err
	}
	defer store.Close()

	responder := newResponder(logger)
	logger.Info().Str("responder", responder.Name()).Msg("assistant ready")

	chat := server.NewChatManager(store, responder, logger, cfg.HistoryWindow)
	router := server.NewRouter(server.NewHandler(chat, logger), logger, cfg.AllowedOrigins)

	// no write timeout: a chat turn waits on the model
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("db", cfg.DBPath).
			Msg("starting catbot server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server failed to start")
			return err
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

// newResponder picks OpenAI, then Gemini, then the offline responder, depending on
// which keys are configured
func newResponder(logger zerolog.Logger) server.Responder {
	cats := server.NewCatAPI("", cfg.CatAPIKey)

	switch {
	case cfg.OpenAIKey != "":
		return server.NewOpenAIResponder(server.OpenAIConfig{
			APIKey: cfg.OpenAIKey,
			Model:  cfg.OpenAIModel,
		}, cats, logger)
	case cfg.GeminiKey != "":
		return server.NewGeminiResponder(server.GeminiConfig{
			APIKey: cfg.GeminiKey,
			Model:  cfg.GeminiModel,
		}, cats, logger)
	default:
		logger.Warn().Msg("no OPENAI_API_KEY or GEMINI_API_KEY set, using offline replies")
		return server.NewOfflineResponder(cats)
	}
}
