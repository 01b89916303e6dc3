package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/glabrego/memefeed-cli/internal/app"
	"github.com/glabrego/memefeed-cli/internal/config"
	"github.com/glabrego/memefeed-cli/internal/feed"
	"github.com/glabrego/memefeed-cli/internal/feedapi"
	"github.com/glabrego/memefeed-cli/internal/logging"
	"github.com/glabrego/memefeed-cli/internal/storage"
	"github.com/glabrego/memefeed-cli/internal/tui"
	tuitheme "github.com/glabrego/memefeed-cli/internal/tui/theme"
)

type App struct {
	ConfigPath string
	APIURL     string

	// runProgram drives the TUI until it exits.
	runProgram func(tea.Model) error
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{runProgram: runTeaProgram})
}

func newRootCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "memefeed",
		Short:        "Browse and rate recommendations from a meme feed service",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive feed
  memefeed

  # Point at another service
  memefeed --api-url http://10.0.0.5:18080

  # Scriptable commands
  memefeed status
  memefeed recommend
  memefeed feedback like 42
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, a)
		},
	}

	cmd.PersistentFlags().StringVar(&a.ConfigPath, "config", "", "Path to a YAML config file (default: $"+config.PathEnvVar+" or ./memefeed.yaml)")
	cmd.PersistentFlags().StringVar(&a.APIURL, "api-url", "", "Feed service base URL (overrides config)")

	cmd.AddCommand(newStatusCmd(a))
	cmd.AddCommand(newRecommendCmd(a))
	cmd.AddCommand(newFeedbackCmd(a))
	return cmd
}

func (a *App) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	if a.APIURL != "" {
		cfg.APIBaseURL = a.APIURL
		if err := cfg.Validate(); err != nil {
			return config.Config{}, fmt.Errorf("config error: %w", err)
		}
	}
	return cfg, nil
}

func newFeedClient(cfg config.Config) app.FeedClient {
	client := feedapi.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.RequestTimeout})
	if !cfg.Breaker.Enabled {
		return client
	}
	return feedapi.NewBreakerClient(client, feedapi.BreakerSettings{
		MaxFailures: cfg.Breaker.MaxFailures,
		OpenTimeout: cfg.Breaker.OpenTimeout,
	})
}

// scriptSetup loads config and sends logs to stderr for the one-shot commands.
func (a *App) scriptSetup(cmd *cobra.Command) (config.Config, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return config.Config{}, err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: "console", Output: cmd.ErrOrStderr()})
	return cfg, nil
}

func runTUI(cmd *cobra.Command, a *App) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return writeErr(cmd, err)
	}

	var logOut io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			return writeErr(cmd, fmt.Errorf("open log file: %w", err))
		}
		defer f.Close()
		logOut = f
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: logOut})

	journal, err := storage.NewJournal(cfg.JournalPath)
	if err != nil {
		return writeErr(cmd, fmt.Errorf("journal init error: %w", err))
	}
	defer journal.Close()

	initCtx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	err = journal.Init(initCtx)
	cancel()
	if err != nil {
		return writeErr(cmd, fmt.Errorf("journal schema error: %w", err))
	}

	service := app.NewService(newFeedClient(cfg), journal, feed.WithRefreshDelay(cfg.RefreshDelay))
	logging.Info().Str("session", service.SessionID()).Str("api", cfg.APIBaseURL).Msg("starting feed session")

	tuitheme.ApplyColorProfile()
	model := tui.NewModel(service, tui.Options{
		BaseURL:          cfg.APIBaseURL,
		RequestTimeout:   cfg.RequestTimeout,
		NearEndLookahead: cfg.NearEndLookahead,
		ImagePreview:     cfg.ImagePreview,
	})
	if err := a.runProgram(model); err != nil {
		return writeErr(cmd, fmt.Errorf("tui error: %w", err))
	}

	sumCtx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()
	summary, err := service.Summary(sumCtx)
	if err != nil {
		logging.Warn().Err(err).Msg("session summary unavailable")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "session: %s\n", summary)
	return nil
}

func runTeaProgram(model tea.Model) error {
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
