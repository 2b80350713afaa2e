package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/stagescout/internal/notifier"
	"github.com/amishk599/stagescout/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Scrape once, print kept jobs, exit",
	Long:  "Dry run: drains every enabled source and logs the jobs that pass the filters. Nothing is written to the database.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	logger.Info("check mode: no jobs will be stored")

	ctx, stop := signalContext()
	defer stop()

	runner := buildRunner(cfg, store.NewNopStore(), notifier.NewLogNotifier(logger), logger)
	report, err := runner.Run(ctx)
	if err != nil {
		logger.Error("check failed", "error", err)
		os.Exit(1)
	}

	printReport(cmd.OutOrStdout(), report)
	logger.Info("check complete", "seen", report.Seen, "kept", report.Kept)
	return nil
}
