package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yourusername/catbot-chat/internal/client/connection"
	"github.com/yourusername/catbot-chat/internal/client/ui"
	"github.com/yourusername/catbot-chat/internal/config"
	"github.com/yourusername/catbot-chat/internal/logging"
)

var cfg = config.LoadClient()

var rootCmd = &cobra.Command{
	Use:   "catbot",
	Short: "Terminal client for the cat bot chat service",
	RunE:  runClient,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "chat backend base URL (env CATBOT_SERVER_URL)")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "file receiving client logs (env CATBOT_LOG_FILE)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error (env CATBOT_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runClient(cmd *cobra.Command, args []string) error {
	// the terminal belongs to the TUI, so logs go to a file
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	logger := logging.New(f, cfg.LogLevel, false)

	api, err := connection.NewManager(cfg.ServerURL, connection.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info().Str("server", api.BaseURL()).Msg("starting client")

	model := ui.NewModel(api,
		ui.WithLogger(logger),
		ui.WithServerURL(api.BaseURL()),
	)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("client exited with error")
		return err
	}
	return nil
}
