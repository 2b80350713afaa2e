package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/stagescout/internal/scheduler"
	"github.com/amishk599/stagescout/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scraping daemon",
	Long:  "Run on the configured schedule; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	logger.Info("config loaded",
		"schedule", cfg.Schedule,
		"sources", len(cfg.EnabledSources()),
		"concurrency", cfg.Concurrency,
		"intern_only", cfg.Filters.InternOnly,
		"cs_only", cfg.Filters.CSOnly,
		"france_only", cfg.Filters.FranceOnly,
		"lang_fr_en_only", cfg.Filters.LangFrEnOnly,
	)

	ctx, stop := signalContext()
	defer stop()

	jobStore, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer jobStore.Close()

	if err := jobStore.Init(ctx); err != nil {
		logger.Error("failed to initialise store", "error", err)
		jobStore.Close()
		os.Exit(1)
	}

	runner := buildRunner(cfg, jobStore, setupNotifier(cfg, logger), logger)
	sched := scheduler.New(cfg.Schedule, func(ctx context.Context) {
		report, err := runner.Run(ctx)
		if err != nil {
			logger.Error("run failed", "error", err)
			return
		}
		printReport(cmd.OutOrStdout(), report)
	}, logger)

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		jobStore.Close()
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
