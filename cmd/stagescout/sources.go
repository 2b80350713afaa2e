package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/stagescout/internal/adapter"
	"github.com/amishk599/stagescout/internal/config"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured sources",
	Long:  "Reads the config and prints a table of all configured sources with their status.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Path(cfgPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	t := newTable("LABEL", "TYPE", "IDENTIFIER", "STATUS")
	usable := 0
	for _, s := range cfg.Sources {
		st := sourceStatus(s)
		if st == "enabled" {
			usable++
		}
		t.Row(s.Label(), s.Type, s.ID.String(), st)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, t.Render())
	fmt.Fprintf(out, "\nTotal: %d sources (%d usable)\n", len(cfg.Sources), usable)
	fmt.Fprintf(out, "Supported types: %s\n", strings.Join(adapter.Types(), ", "))
	return nil
}

func sourceStatus(s config.SourceConfig) string {
	switch {
	case !s.Enabled:
		return "disabled"
	case s.Err != nil:
		return "invalid"
	case s.IsPlaceholder():
		return "placeholder"
	}
	if _, ok := adapter.Registry[strings.ToLower(strings.TrimSpace(s.Type))]; !ok {
		return "unknown type"
	}
	return "enabled"
}
