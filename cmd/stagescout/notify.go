package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/stagescout/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Inspect the configured notifier",
}

func init() {
	notifyCmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Deliver a sample job through the configured notifier",
		Args:  cobra.NoArgs,
		RunE:  runNotifyTest,
	})
	rootCmd.AddCommand(notifyCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	n := setupNotifier(cfg, logger)
	if n == nil {
		logger.Error("no notifier configured; set notification.type to \"log\" or \"slack\"")
		os.Exit(1)
	}

	if err := notifier.SendTestMessage(n); err != nil {
		logger.Error("test notification failed", "type", cfg.Notification.Type, "error", err)
		os.Exit(1)
	}
	logger.Info("test notification delivered", "type", cfg.Notification.Type)
	return nil
}
