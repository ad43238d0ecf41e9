package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cmtonkinson/agentfleet/internal/workflow"
)

const (
	// PaneTerminal labels shell panes.
	PaneTerminal = "terminal"
	// PaneCommand labels panes running the agent program.
	PaneCommand = "command"
	// PaneFile labels files opened for viewing.
	PaneFile = "file"
	// defaultPaneTimeout bounds a single multiplexer invocation.
	defaultPaneTimeout = 10 * time.Second
)

// PaneError is delivered to the front-end when a pane could not be opened.
type PaneError struct {
	Kind string
	Err  error
}

// Error renders the failure.
func (paneErr PaneError) Error() string {
	return fmt.Sprintf("open %s pane: %v", paneErr.Kind, paneErr.Err)
}

// Unwrap returns the underlying error.
func (paneErr PaneError) Unwrap() error {
	return paneErr.Err
}

// PaneLogger receives pane events for auditing.
type PaneLogger interface {
	LogPaneOpen(kind string, dir string, program string)
	LogPaneError(kind string, err error)
}

// Executor turns workflow actions into bubbletea commands.
type Executor struct {
	runner      Runner
	mux         Multiplexer
	log         PaneLogger
	paneTimeout time.Duration
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithPaneLogger reports pane events to logger.
func WithPaneLogger(logger PaneLogger) ExecutorOption {
	return func(executor *Executor) {
		executor.log = logger
	}
}

// WithPaneTimeout bounds each multiplexer invocation.
func WithPaneTimeout(timeout time.Duration) ExecutorOption {
	return func(executor *Executor) {
		if timeout > 0 {
			executor.paneTimeout = timeout
		}
	}
}

// NewExecutor builds an executor running commands on runner and panes on mux.
func NewExecutor(runner Runner, mux Multiplexer, opts ...ExecutorOption) *Executor {
	if runner == nil {
		runner = ExecRunner{}
	}
	executor := &Executor{
		runner:      runner,
		mux:         mux,
		paneTimeout: defaultPaneTimeout,
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

// Execute returns a command performing actions in order. Dispatches yield a
// workflow.Completion; failed panes yield a PaneError.
func (executor *Executor) Execute(actions ...workflow.Action) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(actions))
	for _, action := range actions {
		action := action
		cmds = append(cmds, func() tea.Msg {
			return executor.perform(action)
		})
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Sequence(cmds...)
	}
}

// perform runs a single action and returns the message to deliver, if any.
func (executor *Executor) perform(action workflow.Action) tea.Msg {
	switch typed := action.(type) {
	case workflow.Dispatch:
		result := executor.runner.Run(context.Background(), Command{
			Argv: typed.Argv,
			Env:  typed.Env,
			Dir:  typed.Dir,
		})
		return workflow.Completion{
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			Tags:     typed.Tags.Clone(),
		}
	case workflow.OpenTerminal:
		return executor.openPane(PaneTerminal, typed.Dir, "", func(ctx context.Context, mux Multiplexer) error {
			return mux.OpenTerminal(ctx, typed.Dir)
		})
	case workflow.OpenCommandPane:
		return executor.openPane(PaneCommand, typed.Dir, typed.Program.String(), func(ctx context.Context, mux Multiplexer) error {
			return mux.OpenCommandPane(ctx, typed.Program, typed.Dir)
		})
	case workflow.OpenFile:
		return executor.openPane(PaneFile, typed.Path, "", func(ctx context.Context, mux Multiplexer) error {
			return mux.OpenFile(ctx, typed.Path)
		})
	default:
		return PaneError{Kind: "unknown", Err: fmt.Errorf("unsupported action %T", action)}
	}
}

// openPane runs a multiplexer operation under the pane timeout.
func (executor *Executor) openPane(kind string, dir string, prog string, open func(context.Context, Multiplexer) error) tea.Msg {
	if executor.mux == nil {
		err := errors.New("no multiplexer configured")
		executor.logError(kind, err)
		return PaneError{Kind: kind, Err: err}
	}
	ctx, cancel := context.WithTimeout(context.Background(), executor.paneTimeout)
	defer cancel()
	if err := open(ctx, executor.mux); err != nil {
		executor.logError(kind, err)
		return PaneError{Kind: kind, Err: err}
	}
	if executor.log != nil {
		executor.log.LogPaneOpen(kind, dir, prog)
	}
	return nil
}

func (executor *Executor) logError(kind string, err error) {
	if executor.log != nil {
		executor.log.LogPaneError(kind, err)
	}
}
