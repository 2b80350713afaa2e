package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/stagescout/internal/model"
)

const discoverTimeout = 3 * time.Minute

var errCancelled = errors.New("cancelled")

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type discoverDoneMsg struct {
	jobs []model.Job
	err  error
}

// progressMsg reports how many records have been read so far.
type progressMsg int

type spinnerTickMsg struct{}

type loaderModel struct {
	label    string
	jobs     chan model.Job
	done     chan discoverDoneMsg
	received int
	frame    int
	result   []model.Job
	err      error
	finished bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.waitForJob(), m.tick())
}

// waitForJob hands the next record, or the final result, to Update.
func (m loaderModel) waitForJob() tea.Cmd {
	jobs, done := m.jobs, m.done
	return func() tea.Msg {
		if _, ok := <-jobs; ok {
			return progressMsg(1)
		}
		return <-done
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.received += int(msg)
		return m, m.waitForJob()
	case discoverDoneMsg:
		m.result = msg.jobs
		m.err = msg.err
		m.finished = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.finished = true
			m.err = errCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.finished {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	return fmt.Sprintf("%s Discovering %s... %d records\n", spinner, m.label, m.received)
}

// RunLoader drains d behind a spinner. It renders inline (no alt screen).
// Records read before an error are returned together with it.
func RunLoader(label string, d model.JobDiscoverer) ([]model.Job, error) {
	ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
	defer cancel()

	m := loaderModel{
		label: label,
		jobs:  make(chan model.Job),
		done:  make(chan discoverDoneMsg, 1),
	}
	go drain(ctx, d, m.jobs, m.done)

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}

// drain collects the sequence, announcing each record on progress until the
// context ends.
func drain(ctx context.Context, d model.JobDiscoverer, progress chan<- model.Job, done chan<- discoverDoneMsg) {
	defer close(progress)
	var res discoverDoneMsg
	for job, err := range d.Discover(ctx) {
		if err != nil {
			res.err = err
			break
		}
		res.jobs = append(res.jobs, job)
		select {
		case progress <- job:
		case <-ctx.Done():
		}
	}
	done <- res
}
