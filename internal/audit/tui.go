package audit

import (
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/stagescout/internal/model"
)

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

const (
	colorAccent  = lipgloss.Color("39")
	colorDim     = lipgloss.Color("240")
	colorMuted   = lipgloss.Color("245")
	colorText    = lipgloss.Color("252")
	colorBright  = lipgloss.Color("15")
	colorBar     = lipgloss.Color("236")
	colorCursor  = lipgloss.Color("24")
	colorKept    = lipgloss.Color("42")
	colorRejects = lipgloss.Color("203")
)

func bordered(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c)
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	activeBorderStyle   = bordered(colorAccent)
	inactiveBorderStyle = bordered(colorDim)
	activeHeaderStyle   = fg(colorAccent).Bold(true).Padding(0, 1)
	inactiveHeaderStyle = fg(colorDim).Bold(true).Padding(0, 1)
	statusBarStyle      = fg(colorText).Background(colorBar).Padding(0, 1)

	jobTitleStyle            = lipgloss.NewStyle().Bold(true)
	jobSubtitleStyle         = fg(colorMuted)
	selectedJobTitleStyle    = fg(colorBright).Background(colorCursor).Bold(true)
	selectedJobSubtitleStyle = fg(colorText).Background(colorCursor)

	detailTitleStyle = fg(colorBright).Bold(true).MarginBottom(1)
	detailLabelStyle = fg(colorAccent).Bold(true).Width(16)
	descDividerStyle = fg(colorDim)
	descHintStyle    = fg(colorMuted).Italic(true)
	descBodyStyle    = fg(colorText)

	keptStyle     = fg(colorKept)
	rejectedStyle = fg(colorRejects)
)

// Entry is one discovered record and the filter verdict it received.
type Entry struct {
	Job    model.Job
	Reason string // rejection reason, empty when kept
}

// Kept reports whether the record passed every filter.
func (e Entry) Kept() bool { return e.Reason == "" }

// pane is one scrollable column of entries with its own cursor.
type pane struct {
	title   string
	entries []Entry
	cursor  int
	vp      viewport.Model
}

func (p *pane) move(delta int) {
	p.cursor = clamp(p.cursor+delta, 0, max(len(p.entries)-1, 0))

	top := p.cursor * jobItemHeight
	bottom := top + jobItemHeight - 1
	switch {
	case top < p.vp.YOffset:
		p.vp.SetYOffset(top)
	case bottom >= p.vp.YOffset+p.vp.Height:
		p.vp.SetYOffset(bottom - p.vp.Height + 1)
	}
}

func (p *pane) resize(width, height int) {
	p.vp.Width = width
	p.vp.Height = height
}

func (p *pane) refresh(active bool) {
	p.vp.SetContent(renderJobs(p.entries, p.cursor, active))
}

func (p pane) selected() (Entry, bool) {
	if len(p.entries) == 0 {
		return Entry{}, false
	}
	return p.entries[p.cursor], true
}

func (p pane) render(active bool) (header, body string) {
	headerSt, borderSt := inactiveHeaderStyle, inactiveBorderStyle
	if active {
		headerSt, borderSt = activeHeaderStyle, activeBorderStyle
	}
	header = lipgloss.NewStyle().Width(p.vp.Width + 2).
		Render(headerSt.Render(fmt.Sprintf(" %s (%d)", p.title, len(p.entries))))
	return header, borderSt.Width(p.vp.Width).Render(p.vp.View())
}

type auditModel struct {
	panes  [2]pane // all records, kept records
	active int
	width  int
	height int
	label  string
	ready  bool

	view            viewState
	detail          Entry
	detailViewport  viewport.Model
	showDescription bool

	wantQuit bool
}

func newAuditModel(label string, entries []Entry) auditModel {
	all, kept := Split(entries)
	return auditModel{
		label: label,
		panes: [2]pane{
			{title: label + ": all records", entries: all},
			{title: "Kept", entries: kept},
		},
	}
}

func (m auditModel) Init() tea.Cmd {
	return nil
}

func (m auditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}
	return m, nil
}

func (m auditModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		return m, tea.Quit
	case "tab", "left", "right":
		m.active = 1 - m.active
		m.refresh()
		return m, nil
	case "up", "k":
		m.panes[m.active].move(-1)
		m.refresh()
		return m, nil
	case "down", "j":
		m.panes[m.active].move(1)
		m.refresh()
		return m, nil
	case "enter":
		e, ok := m.panes[m.active].selected()
		if !ok {
			return m, nil
		}
		m.view = viewDetail
		m.detail = e
		m.showDescription = false
		m.detailViewport = viewport.New(m.width-4, m.height-4)
		m.detailViewport.SetContent(m.renderDetail())
		return m, nil
	}

	// pgup/pgdn/home/end scroll the active pane.
	var cmd tea.Cmd
	m.panes[m.active].vp, cmd = m.panes[m.active].vp.Update(msg)
	return m, cmd
}

func (m auditModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		openURL(m.detail.Job.ApplyURL)
		return m, nil
	case "r":
		if m.detail.Job.Description != "" {
			m.showDescription = !m.showDescription
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

// layout sizes both panes: 2 border columns each plus a 1-column gap, and
// 4 rows for header, borders and status bar.
func (m *auditModel) layout() {
	width := max((m.width-5)/2, 20)
	height := max(m.height-4, 5)
	for i := range m.panes {
		if !m.ready {
			m.panes[i].vp = viewport.New(width, height)
		} else {
			m.panes[i].resize(width, height)
		}
	}
	m.ready = true
	m.refresh()
}

func (m *auditModel) refresh() {
	for i := range m.panes {
		m.panes[i].refresh(i == m.active)
	}
}

func (m auditModel) View() string {
	switch {
	case !m.ready:
		return "Initializing..."
	case m.view == viewDetail:
		return m.viewDetail()
	}

	leftHeader, left := m.panes[0].render(m.active == 0)
	rightHeader, right := m.panes[1].render(m.active == 1)

	status := statusBarStyle.Width(m.width).Render(fmt.Sprintf(
		" %s    ←/→/Tab switch  ↑/↓ cursor  Enter detail  Esc back  q quit", summarize(m.panes[0].entries)))

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, leftHeader, " ", rightHeader),
		lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right),
		status,
	)
}

func (m auditModel) viewDetail() string {
	hint := " o open URL  esc/backspace back  ↑/↓ scroll  q quit"
	if m.detail.Job.Description != "" {
		hint = " o open URL  r desc  esc/backspace back  ↑/↓ scroll  q quit"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		detailTitleStyle.Render("Job Details"),
		activeBorderStyle.Width(m.width-2).Render(m.detailViewport.View()),
		statusBarStyle.Width(m.width).Render(hint),
	)
}

func (m auditModel) renderDetail() string {
	e := m.detail
	j := e.Job
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", j.Title)
	addField("Company", j.Company)
	addField("Location", j.Location)
	addField("Country", j.CountryCode)
	if j.IsRemote {
		addField("Remote", "yes")
	}
	addField("Language", j.Language)
	addField("Source", j.Source)
	addField("Source Job ID", j.SourceJobID)

	b.WriteByte('\n')
	addField("Posted At", j.PostedAt)
	if len(j.Tags) > 0 {
		addField("Tags", strings.Join(j.Tags, ", "))
	}
	addField("Verdict", verdict(e))

	b.WriteByte('\n')
	addField("Apply URL", j.ApplyURL)

	wrapWidth := max(m.width-8, 20)
	if j.Description != "" {
		b.WriteByte('\n')
		if m.showDescription {
			label := "── Job Description "
			fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
			b.WriteString(descDividerStyle.Render(label+fill) + "\n\n")
			b.WriteString(descBodyStyle.Render(wordWrap(j.Description, wrapWidth)) + "\n")
		} else {
			b.WriteString(descHintStyle.Render("  press r to read job description") + "\n")
		}
	}

	return b.String()
}

func verdict(e Entry) string {
	if e.Kept() {
		return keptStyle.Render("kept")
	}
	return rejectedStyle.Render("rejected: " + e.Reason)
}

// summarize renders "N total | K kept | reason: n ..." with reasons sorted.
func summarize(entries []Entry) string {
	reasons := make(map[string]int)
	kept := 0
	for _, e := range entries {
		if e.Kept() {
			kept++
			continue
		}
		reasons[e.Reason]++
	}
	parts := []string{fmt.Sprintf("%d total", len(entries)), fmt.Sprintf("%d kept", kept)}
	names := make([]string, 0, len(reasons))
	for r := range reasons {
		names = append(names, r)
	}
	sort.Strings(names)
	for _, r := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", r, reasons[r]))
	}
	return strings.Join(parts, " | ")
}

func renderJobs(entries []Entry, cursor int, isActive bool) string {
	if len(entries) == 0 {
		return "  (no jobs)"
	}

	var b strings.Builder
	for i, e := range entries {
		isSelected := isActive && i == cursor

		titleSt := jobTitleStyle
		subtitleSt := jobSubtitleStyle
		prefix := "  "
		if isSelected {
			titleSt = selectedJobTitleStyle
			subtitleSt = selectedJobSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(e.Job.Title))
		b.WriteByte('\n')

		posted := "n/a"
		if t, ok := postedTime(e.Job.PostedAt); ok {
			posted = t.Format("2006-01-02")
		}
		subtitle := fmt.Sprintf("%s · %s", orNA(e.Job.Location), posted)
		if !e.Kept() {
			subtitle += " · " + e.Reason
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(subtitle))
		b.WriteByte('\n')

		if i < len(entries)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

var postedLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// postedTime parses the source-native PostedAt forms that carry a date.
func postedTime(s string) (time.Time, bool) {
	for _, layout := range postedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sortByPosted orders newest first; undated records keep their order at the end.
func sortByPosted(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, iok := postedTime(entries[i].Job.PostedAt)
		tj, jok := postedTime(entries[j].Job.PostedAt)
		if !iok {
			return false
		}
		if !jok {
			return true
		}
		return ti.After(tj)
	})
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "n/a"
	}
	return s
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	if url == "" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Split separates kept entries from the full list, both sorted newest first.
func Split(entries []Entry) (all, kept []Entry) {
	all = append([]Entry(nil), entries...)
	sortByPosted(all)
	for _, e := range all {
		if e.Kept() {
			kept = append(kept, e)
		}
	}
	return all, kept
}

// RunAuditTUI launches the interactive split-pane audit TUI.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed esc to return to the picker.
func RunAuditTUI(label string, entries []Entry) (bool, error) {
	p := tea.NewProgram(newAuditModel(label, entries), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(auditModel)
	return final.wantQuit, nil
}
