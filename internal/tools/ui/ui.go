// Package ui renders a progress view while a CLI command talks to the API.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	detailStyle = lipgloss.NewStyle().PaddingLeft(2)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var ErrCanceled = errors.New("canceled")

// Task does the work behind a view and returns lines to print.
type Task func(ctx context.Context) ([]string, error)

type tickMsg time.Time

type doneMsg struct {
	lines []string
	err   error
}

type model struct {
	title   string
	ctx     context.Context
	cancel  context.CancelFunc
	frame   int
	started time.Time
	done    bool
	lines   []string
	err     error
}

func newModel(ctx context.Context, title string) *model {
	ctx, cancel := context.WithCancel(ctx)
	return &model{title: title, ctx: ctx, cancel: cancel, started: time.Now()}
}

func (m *model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(90*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancel()
			m.done = true
			m.err = ErrCanceled
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, tick()
	case doneMsg:
		m.done = true
		m.lines = msg.lines
		m.err = msg.err
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) View() string {
	if !m.done {
		elapsed := time.Since(m.started).Round(100 * time.Millisecond)
		return fmt.Sprintf("%s %s %s\n", spinnerFrames[m.frame], titleStyle.Render(m.title), dimStyle.Render(elapsed.String()))
	}
	return Render(m.title, m.lines, m.err)
}

// Render formats a finished task the way the interactive view leaves it.
func Render(title string, lines []string, err error) string {
	var b strings.Builder
	if err != nil {
		b.WriteString(errStyle.Render("✗ ") + titleStyle.Render(title) + "\n")
	} else {
		b.WriteString(okStyle.Render("✓ ") + titleStyle.Render(title) + "\n")
	}
	for _, l := range lines {
		b.WriteString(detailStyle.Render(l) + "\n")
	}
	if err != nil {
		b.WriteString(detailStyle.Render(errStyle.Render(err.Error())) + "\n")
	}
	return b.String()
}

// Run shows a spinner until task returns and leaves its result on screen.
// Cancelling ctx or pressing q cancels the task; Run returns only after the
// task has.
func Run(ctx context.Context, title string, task Task, opts ...tea.ProgramOption) ([]string, error) {
	m := newModel(ctx, title)
	p := tea.NewProgram(m, opts...)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		lines, err := task(m.ctx)
		p.Send(doneMsg{lines: lines, err: err})
	}()
	final, err := p.Run()
	m.cancel()
	<-finished
	if err != nil {
		return nil, err
	}
	fm := final.(*model)
	return fm.lines, fm.err
}
