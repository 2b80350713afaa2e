package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/stagescout/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape every source once, store kept jobs, exit",
	Long:  "One-shot run: drains every enabled source, filters, stores kept jobs and prints a per-source report.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	ctx, stop := signalContext()
	defer stop()

	jobStore, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer jobStore.Close()

	runner := buildRunner(cfg, jobStore, setupNotifier(cfg, logger), logger)
	report, err := runner.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		jobStore.Close()
		os.Exit(1)
	}

	printReport(cmd.OutOrStdout(), report)
	fmt.Fprintf(cmd.OutOrStdout(), "Scraped %d postings, kept %d\n", report.Seen, report.Kept)
	return nil
}
