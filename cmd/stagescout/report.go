package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/amishk599/stagescout/internal/model"
	"github.com/amishk599/stagescout/internal/poller"
)

const maxStatusWidth = 48

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
}

// printReport renders one row per source, in configuration order.
func printReport(w io.Writer, report poller.Report) {
	t := newTable("SOURCE", "SEEN", "KEPT", "NEW", "FAILED", "REJECTED", "STATUS")
	for _, s := range report.Sources {
		t.Row(
			s.Label,
			strconv.Itoa(s.Seen),
			strconv.Itoa(s.Kept),
			strconv.Itoa(s.Inserted),
			strconv.Itoa(s.Failed),
			rejections(s.Rejected),
			status(s.Err),
		)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "run %s finished in %s\n", report.RunID, report.Duration.Round(time.Millisecond))
}

// rejections renders reason counts as "cs=3 internship=12".
func rejections(m map[string]int) string {
	if len(m) == 0 {
		return "-"
	}
	reasons := make([]string, 0, len(m))
	for r := range m {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = fmt.Sprintf("%s=%d", r, m[r])
	}
	return strings.Join(parts, " ")
}

func status(err error) string {
	if err == nil {
		return "ok"
	}
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("HTTP %d", httpErr.StatusCode)
	}
	msg := err.Error()
	if len(msg) > maxStatusWidth {
		msg = msg[:maxStatusWidth-3] + "..."
	}
	return msg
}
