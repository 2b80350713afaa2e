package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amishk599/stagescout/internal/adapter"
	"github.com/amishk599/stagescout/internal/audit"
	"github.com/amishk599/stagescout/internal/classify"
	"github.com/amishk599/stagescout/internal/config"
	"github.com/amishk599/stagescout/internal/filter"
	"github.com/amishk599/stagescout/internal/model"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browse a source's filter verdicts interactively (TUI)",
	Long:  "Shows the source picker TUI, discovers the chosen source live, then launches the split-pane audit view.",
	RunE:  runAuditCmd,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, _ := mustLoad()

	// Log output before the alt-screen starts corrupts the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := adapter.Deps{Client: setupHTTPClient(cfg), Logger: silentLogger}
	runAudit(cfg, deps, setupFilter(cfg))
	return nil
}

func runAudit(cfg *config.Config, deps adapter.Deps, chain filter.Chain) {
	enabled := cfg.EnabledSources()
	if len(enabled) == 0 {
		fmt.Println("No enabled sources in config.")
		return
	}

	for {
		choice, err := audit.RunSourcePicker(enabled)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return
		}
		if choice < 0 {
			return
		}
		src := enabled[choice]
		if src.IsPlaceholder() {
			fmt.Printf("%s uses a placeholder identifier\n", src.Label())
			continue
		}

		d, err := adapter.New(src.Type, src.ID, src.Company, deps)
		if err != nil {
			fmt.Printf("Cannot build %s: %v\n", src.Label(), err)
			continue
		}

		jobs, err := audit.RunLoader(src.Label(), d)
		if err != nil {
			fmt.Printf("Discovery stopped after %d records: %v\n", len(jobs), err)
			if len(jobs) == 0 {
				continue
			}
		}

		wantQuit, err := audit.RunAuditTUI(src.Label(), verdicts(jobs, chain))
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return
		}
		// else: loop → back to picker
	}
}

func verdicts(jobs []model.Job, chain filter.Chain) []audit.Entry {
	entries := make([]audit.Entry, len(jobs))
	for i, j := range jobs {
		entries[i] = audit.Entry{Job: classify.Annotate(j), Reason: chain.Reason(j)}
	}
	return entries
}
