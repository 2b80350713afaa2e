package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/stagescout/internal/adapter"
	"github.com/amishk599/stagescout/internal/config"
	"github.com/amishk599/stagescout/internal/filter"
	"github.com/amishk599/stagescout/internal/model"
	"github.com/amishk599/stagescout/internal/notifier"
	"github.com/amishk599/stagescout/internal/poller"
	"github.com/amishk599/stagescout/internal/ratelimit"
)

var (
	cfgPath   string
	debugLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "stagescout",
	Short: "Internship radar for company career boards",
	Long:  "stagescout scrapes company career boards, keeps CS internships in French or English and stores them idempotently.",
	// Default to `run` so that `stagescout` with no args performs one scrape.
	RunE:         runRun,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+config.EnvPath+" env var or ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "enable debug logging")
}

// mustLoad builds the logger and loads the config named by --config,
// STAGESCOUT_CONFIG or ./config.yaml. It exits the process on failure.
func mustLoad() (*config.Config, *slog.Logger) {
	logger := setupLogger(debugLogs)
	cfg, err := config.Load(config.Path(cfgPath))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg, logger
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// setupHTTPClient returns the client shared by every source, spaced per host.
func setupHTTPClient(cfg *config.Config) *http.Client {
	limiter := ratelimit.NewHostLimiter(cfg.RateLimit.MinDelay, cfg.RateLimit.HostOverrides)
	return adapter.NewHTTPClient(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, limiter.Transport(nil))
}

// setupNotifier returns nil when notifications are disabled.
func setupNotifier(cfg *config.Config, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, &http.Client{Timeout: cfg.HTTP.Timeout}, logger)
	case "log":
		return notifier.NewLogNotifier(logger)
	default:
		return nil
	}
}

func setupFilter(cfg *config.Config) filter.Chain {
	chain := filter.Chain{filter.NewClassifierFilter(filter.Options{
		InternOnly:   cfg.Filters.InternOnly,
		CSOnly:       cfg.Filters.CSOnly,
		FranceOnly:   cfg.Filters.FranceOnly,
		LangFrEnOnly: cfg.Filters.LangFrEnOnly,
	})}
	if kw := filter.NewKeywordFilter(cfg.Filters.ExcludeTitleKeywords, cfg.Filters.Locations); !kw.Empty() {
		chain = append(chain, kw)
	}
	return chain
}

func buildRunner(cfg *config.Config, jobStore model.JobStore, n model.Notifier, logger *slog.Logger) *poller.Runner {
	logger.Info("rate limit configured", "min_delay", cfg.RateLimit.MinDelay.String(), "overrides", len(cfg.RateLimit.HostOverrides))

	deps := adapter.Deps{Client: setupHTTPClient(cfg), Logger: logger}
	sources := poller.BuildSources(cfg.EnabledSources(), deps, logger)
	if len(sources) == 0 {
		logger.Warn("no usable sources configured")
	}
	return poller.NewRunner(sources, setupFilter(cfg), jobStore, n, cfg.Concurrency, logger)
}
