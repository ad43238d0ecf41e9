// Package tui provides the interactive launcher front-end.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cmtonkinson/agentfleet/internal/host"
	"github.com/cmtonkinson/agentfleet/internal/workflow"
)

const (
	// title heads the rendered form.
	title = "Agent Fleet"
	// paneFailedPrefix prefixes multiplexer errors on the status line.
	paneFailedPrefix = "Failed to open pane"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// keyMap lists the bindings understood by the launcher.
type keyMap struct {
	Launch  key.Binding
	OpenLog key.Binding
	Quit    key.Binding
}

// ShortHelp returns the bindings shown in the help line.
func (keys keyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Launch, keys.OpenLog, keys.Quit}
}

// FullHelp returns the bindings grouped for the expanded help view.
func (keys keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{keys.ShortHelp()}
}

func defaultKeys() keyMap {
	return keyMap{
		Launch: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "launch"),
		),
		OpenLog: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "open log"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the bubbletea model wrapping the launch machine. The machine is
// only touched from Update, which bubbletea calls on a single goroutine.
type Model struct {
	machine  *workflow.Machine
	executor *host.Executor
	keys     keyMap
	help     help.Model
	height   int
	quitting bool
}

// New creates a launcher model.
func New(machine *workflow.Machine, executor *host.Executor) Model {
	return Model{
		machine:  machine,
		executor: executor,
		keys:     defaultKeys(),
		help:     help.New(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key presses, window changes, and host events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Launch):
			return m, m.execute(m.machine.Launch())
		case key.Matches(msg, m.keys.OpenLog):
			return m, m.execute(m.machine.OpenLog())
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case workflow.Completion:
		actions, _ := m.machine.Complete(msg)
		return m, m.execute(actions)

	case host.PaneError:
		m.machine.ReportError(paneFailedPrefix, msg.Err)
		return m, nil
	}
	return m, nil
}

func (m Model) execute(actions []workflow.Action) tea.Cmd {
	if m.executor == nil || len(actions) == 0 {
		return nil
	}
	return m.executor.Execute(actions...)
}

// Lines returns the rendered form, truncated to the window height when known.
func (m Model) Lines() []string {
	cfg := m.machine.Form()
	target := cfg.TargetLabel()
	if attempt, ok := m.machine.Attempt(); ok {
		target = attempt.TargetLabel()
	}
	createLabel := "no"
	if cfg.CreateIsolatedCopy {
		createLabel = "yes"
	}

	lines := []string{
		titleStyle.Render(fmt.Sprintf("=== %s ===", title)),
		"",
		fmt.Sprintf("Program: %s", cfg.Program),
		fmt.Sprintf("Branch:  %s", cfg.BranchName),
		fmt.Sprintf("Worktree: %s", target),
		fmt.Sprintf("Base:     %s", cfg.BaseRevision),
		fmt.Sprintf("Create worktree: %s", createLabel),
		"",
		m.help.ShortHelpView(m.keys.ShortHelp()),
		"",
	}
	if status := m.machine.Status(); status != "" {
		style := statusStyle
		if m.machine.Phase() == workflow.PhaseFailed || strings.HasPrefix(status, paneFailedPrefix) {
			style = errorStyle
		}
		lines = append(lines, style.Render("Status: "+status))
	}

	if m.height > 0 && m.height < len(lines) {
		lines = lines[:m.height]
	}
	return lines
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return strings.Join(m.Lines(), "\n")
}

// Run starts the interactive launcher.
func Run(machine *workflow.Machine, executor *host.Executor) error {
	p := tea.NewProgram(
		New(machine, executor),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
