package audit

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/stagescout/internal/config"
	"github.com/amishk599/stagescout/internal/model"
)

func pickerSources() []config.SourceConfig {
	return []config.SourceConfig{
		{Type: "greenhouse", ID: model.Slug("doctolib"), Company: "Doctolib", Enabled: true},
		{Type: "lever", ID: model.Slug("qonto"), Company: "Qonto", Enabled: true},
		{Type: "greenhouse", ID: model.Slug("datadog"), Company: "Datadog", Enabled: true},
	}
}

func typeText(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestPickerFiltersByLabel(t *testing.T) {
	var m tea.Model = newPickerModel(pickerSources())
	m = typeText(m, "DOG")

	pm := m.(pickerModel)
	if len(pm.visible) != 1 || pm.visible[0] != 2 {
		t.Fatalf("visible = %v, want [2]", pm.visible)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.(pickerModel).chosen; got != 2 {
		t.Errorf("chosen = %d, want 2", got)
	}
}

func TestPickerBackspaceWidensFilter(t *testing.T) {
	var m tea.Model = newPickerModel(pickerSources())
	m = typeText(m, "greenhouse:q")
	if n := len(m.(pickerModel).visible); n != 0 {
		t.Fatalf("visible = %d, want 0", n)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if n := len(m.(pickerModel).visible); n != 2 {
		t.Errorf("visible = %d, want 2", n)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.(pickerModel).chosen; got != 0 {
		t.Errorf("chosen = %d, want 0", got)
	}
}

func TestPickerNavigationAndQuit(t *testing.T) {
	var m tea.Model = newPickerModel(pickerSources())
	for range 5 {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if got := m.(pickerModel).cursor; got != 2 {
		t.Errorf("cursor = %d, want clamped 2", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.(pickerModel).chosen; got != pickerQuit {
		t.Errorf("chosen = %d, want quit", got)
	}
}

func TestPickerEnterWithNoMatchKeepsPending(t *testing.T) {
	var m tea.Model = newPickerModel(pickerSources())
	m = typeText(m, "zzz")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.(pickerModel).chosen; got != pickerPending {
		t.Errorf("chosen = %d, want pending", got)
	}
}
