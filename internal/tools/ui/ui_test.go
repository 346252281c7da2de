package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestModelFinishesWithTaskResult(t *testing.T) {
	m := newModel(context.Background(), "login")
	next, cmd := m.Update(doneMsg{lines: []string{"signed in"}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	view := next.View()
	if !strings.Contains(view, "login") || !strings.Contains(view, "signed in") {
		t.Fatalf("unexpected view %q", view)
	}
}

func TestModelShowsError(t *testing.T) {
	m := newModel(context.Background(), "profile")
	next, _ := m.Update(doneMsg{err: errors.New("not signed in")})
	if !strings.Contains(next.View(), "not signed in") {
		t.Fatalf("expected error in view, got %q", next.View())
	}
}

func TestCtrlCCancelsTask(t *testing.T) {
	m := newModel(context.Background(), "home")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !errors.Is(m.err, ErrCanceled) {
		t.Fatalf("expected canceled, got %v", m.err)
	}
	if m.ctx.Err() == nil {
		t.Fatal("expected task context to be canceled")
	}
}

func TestSpinnerAdvancesUntilDone(t *testing.T) {
	m := newModel(context.Background(), "ping")
	m.Update(tickMsg{})
	if m.frame != 1 {
		t.Fatalf("expected frame 1, got %d", m.frame)
	}
	m.Update(doneMsg{})
	if _, cmd := m.Update(tickMsg{}); cmd != nil {
		t.Fatal("finished model must stop ticking")
	}
}

func TestRunCancelsTaskWithContextAndWaitsForIt(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(20*time.Millisecond, cancel)

	var finished atomic.Bool
	_, err := Run(ctx, "slow", func(ctx context.Context) ([]string, error) {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		finished.Store(true)
		return nil, ctx.Err()
	}, tea.WithInput(nil), tea.WithOutput(io.Discard))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if !finished.Load() {
		t.Fatal("Run returned before the task did")
	}
}

func TestRunReturnsTaskLines(t *testing.T) {
	lines, err := Run(t.Context(), "ping", func(context.Context) ([]string, error) {
		return []string{"pong"}, nil
	}, tea.WithInput(nil), tea.WithOutput(io.Discard))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(lines) != 1 || lines[0] != "pong" {
		t.Fatalf("unexpected lines %v", lines)
	}
}
