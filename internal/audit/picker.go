package audit

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/stagescout/internal/config"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	pickerHintStyle = pickerDimStyle.
			Padding(1, 0, 0, 2)
)

const (
	pickerPending = -1
	pickerQuit    = -2
)

type pickerModel struct {
	sources []config.SourceConfig
	query   string // typed filter, matched against labels
	visible []int  // indexes into sources matching query
	cursor  int    // position in visible
	chosen  int
}

func newPickerModel(sources []config.SourceConfig) pickerModel {
	m := pickerModel{sources: sources, chosen: pickerPending}
	m.refilter()
	return m
}

func (m *pickerModel) refilter() {
	q := strings.ToLower(m.query)
	m.visible = nil
	for i, s := range m.sources {
		if q == "" || strings.Contains(strings.ToLower(s.Label()), q) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = clamp(m.cursor, 0, max(len(m.visible)-1, 0))
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.chosen = pickerQuit
		return m, tea.Quit
	case tea.KeyUp:
		m.cursor = max(m.cursor-1, 0)
	case tea.KeyDown:
		m.cursor = clamp(m.cursor+1, 0, max(len(m.visible)-1, 0))
	case tea.KeyEnter:
		if len(m.visible) > 0 {
			m.chosen = m.visible[m.cursor]
			return m, tea.Quit
		}
	case tea.KeyBackspace:
		if m.query != "" {
			r := []rune(m.query)
			m.query = string(r[:len(r)-1])
			m.refilter()
		}
	case tea.KeyRunes, tea.KeySpace:
		typed := string(key.Runes)
		if key.Type == tea.KeySpace && typed == "" {
			typed = " "
		}
		m.query += typed
		m.refilter()
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Filter audit: select a source"))
	b.WriteString("\n")
	if m.query != "" {
		b.WriteString(pickerItemStyle.Render("filter: "+m.query) + "\n\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(pickerItemStyle.Render(pickerDimStyle.Render("no source matches")) + "\n")
	}
	for pos, i := range m.visible {
		src := m.sources[i]
		label := src.Label()
		if src.IsPlaceholder() {
			label += pickerDimStyle.Render("  placeholder")
		}
		if pos == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("> "+label) + "\n")
		} else {
			b.WriteString(pickerItemStyle.Render(label) + "\n")
		}
	}

	b.WriteString(pickerHintStyle.Render("type to filter  ↑/↓ navigate  enter select  esc quit"))
	return b.String()
}

// RunSourcePicker shows an interactive source selector.
// Returns the index of the chosen source, or a negative value if the user quit.
func RunSourcePicker(sources []config.SourceConfig) (int, error) {
	p := tea.NewProgram(newPickerModel(sources))
	result, err := p.Run()
	if err != nil {
		return pickerQuit, err
	}
	return result.(pickerModel).chosen, nil
}
