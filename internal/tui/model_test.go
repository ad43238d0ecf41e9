// Tests for the launcher model.
package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cmtonkinson/agentfleet/internal/form"
	"github.com/cmtonkinson/agentfleet/internal/host"
	"github.com/cmtonkinson/agentfleet/internal/workflow"
)

// recordingRunner records commands and reports success.
type recordingRunner struct {
	commands [][]string
}

func (runner *recordingRunner) Run(ctx context.Context, command host.Command) host.Result {
	runner.commands = append(runner.commands, command.Argv)
	return host.Result{ExitCode: workflow.ExitCodeOf(0), Stdout: []byte("/home/u/myrepo\n")}
}

func testEnv() form.Environment {
	return form.Environment{
		User:  "u",
		PID:   4242,
		Getwd: func() (string, error) { return "/home/u/myrepo", nil },
	}
}

// newModel builds a model around a fresh machine.
func newModel(cfg form.Config) (Model, *recordingRunner, *recordingRunner) {
	commands := &recordingRunner{}
	panes := &recordingRunner{}
	machine := workflow.New(cfg, testEnv())
	executor := host.NewExecutor(commands, host.NewZellij(panes))
	return New(machine, executor), commands, panes
}

// update feeds msg to the model and returns the concrete result.
func update(t *testing.T, model Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := model.Update(msg)
	typed, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return typed, cmd
}

// TestLinesRenderForm verifies the field lines before any launch.
func TestLinesRenderForm(t *testing.T) {
	model, _, _ := newModel(form.Defaults(testEnv()))
	lines := model.Lines()

	if !strings.Contains(lines[0], "=== Agent Fleet ===") {
		t.Fatalf("title = %q", lines[0])
	}
	want := map[int]string{
		2: "Program: claude",
		3: "Branch:  u/af-4242",
		4: "Worktree: <auto>",
		5: "Base:     origin/main",
		6: "Create worktree: yes",
	}
	for index, line := range want {
		if lines[index] != line {
			t.Fatalf("line %d = %q, want %q", index, lines[index], line)
		}
	}
	if !strings.Contains(lines[8], "launch") || !strings.Contains(lines[8], "quit") {
		t.Fatalf("help line = %q", lines[8])
	}
	for _, line := range lines {
		if strings.Contains(line, "Status:") {
			t.Fatalf("unexpected status line %q", line)
		}
	}
}

// TestLinesTruncateToHeight verifies window height limits the output.
func TestLinesTruncateToHeight(t *testing.T) {
	model, _, _ := newModel(form.Defaults(testEnv()))
	model, _ = update(t, model, tea.WindowSizeMsg{Width: 80, Height: 3})
	if got := len(model.Lines()); got != 3 {
		t.Fatalf("len(Lines) = %d, want 3", got)
	}
	if strings.Count(model.View(), "\n") != 2 {
		t.Fatalf("View = %q", model.View())
	}
}

// TestQuit verifies q ends the program.
func TestQuit(t *testing.T) {
	model, _, _ := newModel(form.Defaults(testEnv()))
	model, cmd := update(t, model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if model.View() != "" {
		t.Fatalf("View after quit = %q", model.View())
	}
}

// TestLaunchRoundTrip drives a worktree launch through the executor.
func TestLaunchRoundTrip(t *testing.T) {
	model, commands, panes := newModel(form.Defaults(testEnv()))

	model, cmd := update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected root detection command")
	}
	detected := cmd()
	if _, ok := detected.(workflow.Completion); !ok {
		t.Fatalf("msg = %T, want workflow.Completion", detected)
	}
	if strings.Join(commands.commands[0], " ") != "git rev-parse --show-toplevel" {
		t.Fatalf("first command = %v", commands.commands[0])
	}

	model, cmd = update(t, model, detected)
	if cmd == nil {
		t.Fatal("expected worktree command")
	}
	created := cmd()
	if commands.commands[1][0] != "bash" {
		t.Fatalf("second command = %v", commands.commands[1])
	}

	model, cmd = update(t, model, created)
	if cmd == nil {
		t.Fatal("expected pane command")
	}
	if model.machine.Status() != "Launched in /home/u/myrepo-af-4242 on u/af-4242" {
		t.Fatalf("Status = %q", model.machine.Status())
	}
	lines := model.Lines()
	if lines[4] != "Worktree: /home/u/myrepo-af-4242" {
		t.Fatalf("worktree line = %q", lines[4])
	}
	if !strings.Contains(lines[len(lines)-1], "Status: Launched in") {
		t.Fatalf("status line = %q", lines[len(lines)-1])
	}
	if len(panes.commands) != 0 {
		t.Fatal("panes should open only when the sequence runs")
	}
}

// TestOpenLogBeforeLaunch verifies l is a no-op until the log is known.
func TestOpenLogBeforeLaunch(t *testing.T) {
	model, _, _ := newModel(form.Defaults(testEnv()))
	_, cmd := update(t, model, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	if cmd != nil {
		t.Fatal("expected no command before the log path is known")
	}
}

// TestPaneErrorReportsStatus verifies multiplexer failures reach the status line.
func TestPaneErrorReportsStatus(t *testing.T) {
	model, _, _ := newModel(form.Defaults(testEnv()))
	model, _ = update(t, model, host.PaneError{Kind: host.PaneTerminal, Err: errors.New("zellij: no session")})
	if model.machine.Status() != "Failed to open pane: zellij: no session" {
		t.Fatalf("Status = %q", model.machine.Status())
	}
}

// TestDirectLaunchLabels verifies the create flag rendering in mode B.
func TestDirectLaunchLabels(t *testing.T) {
	cfg := form.Defaults(testEnv())
	cfg.CreateIsolatedCopy = false
	model, commands, _ := newModel(cfg)
	if model.Lines()[6] != "Create worktree: no" {
		t.Fatalf("line = %q", model.Lines()[6])
	}
	model, cmd := update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected pane command")
	}
	if len(commands.commands) != 0 {
		t.Fatal("direct launch must not run git")
	}
	if model.machine.Status() != "Launched agent without creating worktree" {
		t.Fatalf("Status = %q", model.machine.Status())
	}
}
