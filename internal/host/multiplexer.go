package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cmtonkinson/agentfleet/internal/program"
	"github.com/kballard/go-shellquote"
)

const (
	// MultiplexerAuto picks a backend from the environment.
	MultiplexerAuto = "auto"
	// MultiplexerZellij drives zellij through `zellij action` and `zellij run`.
	MultiplexerZellij = "zellij"
	// MultiplexerTmux drives tmux through split-window and new-window.
	MultiplexerTmux = "tmux"
	// defaultEditor opens files when $EDITOR is unset.
	defaultEditor = "vi"
)

// Multiplexer opens panes next to the front-end.
type Multiplexer interface {
	Name() string
	OpenTerminal(ctx context.Context, dir string) error
	OpenCommandPane(ctx context.Context, prog program.Program, dir string) error
	OpenFile(ctx context.Context, path string) error
}

// Detect returns the backend for name. "auto" (or blank) picks zellij when
// $ZELLIJ is set and tmux when $TMUX is set.
func Detect(name string, getenv func(string) string, runner Runner) (Multiplexer, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MultiplexerAuto:
		if getenv("ZELLIJ") != "" {
			return &Zellij{runner: runner}, nil
		}
		if getenv("TMUX") != "" {
			return &Tmux{runner: runner, editor: getenv("EDITOR")}, nil
		}
		return nil, errors.New("no terminal multiplexer detected: run inside zellij or tmux, or set host.multiplexer")
	case MultiplexerZellij:
		return &Zellij{runner: runner}, nil
	case MultiplexerTmux:
		return &Tmux{runner: runner, editor: getenv("EDITOR")}, nil
	default:
		return nil, fmt.Errorf("unsupported multiplexer %q", name)
	}
}

// Zellij opens panes in the current zellij session.
type Zellij struct {
	runner Runner
}

// NewZellij builds a zellij backend on runner.
func NewZellij(runner Runner) *Zellij {
	return &Zellij{runner: runner}
}

// Name returns the backend name.
func (backend *Zellij) Name() string {
	return MultiplexerZellij
}

// TerminalArgv builds the command for a shell pane.
func (backend *Zellij) TerminalArgv(dir string) []string {
	return []string{"zellij", "action", "new-pane", "--cwd", dir}
}

// CommandPaneArgv builds the command for a pane running prog.
func (backend *Zellij) CommandPaneArgv(prog program.Program, dir string) []string {
	argv := []string{"zellij", "run", "--cwd", dir, "--"}
	return append(argv, prog.Argv()...)
}

// FileArgv builds the command that opens path in the pane editor.
func (backend *Zellij) FileArgv(path string) []string {
	return []string{"zellij", "action", "edit", path}
}

// OpenTerminal opens a shell pane rooted at dir.
func (backend *Zellij) OpenTerminal(ctx context.Context, dir string) error {
	return runPaneCommand(ctx, backend.runner, backend.TerminalArgv(dir))
}

// OpenCommandPane opens a pane running prog in dir.
func (backend *Zellij) OpenCommandPane(ctx context.Context, prog program.Program, dir string) error {
	return runPaneCommand(ctx, backend.runner, backend.CommandPaneArgv(prog, dir))
}

// OpenFile opens path in a new editor pane.
func (backend *Zellij) OpenFile(ctx context.Context, path string) error {
	return runPaneCommand(ctx, backend.runner, backend.FileArgv(path))
}

// Tmux opens panes in the current tmux window.
type Tmux struct {
	runner Runner
	editor string
}

// NewTmux builds a tmux backend on runner, opening files with editor.
func NewTmux(runner Runner, editor string) *Tmux {
	return &Tmux{runner: runner, editor: editor}
}

// Name returns the backend name.
func (backend *Tmux) Name() string {
	return MultiplexerTmux
}

// TerminalArgv builds the command for a shell pane.
func (backend *Tmux) TerminalArgv(dir string) []string {
	return []string{"tmux", "split-window", "-c", dir}
}

// CommandPaneArgv builds the command for a pane running prog. tmux hands the
// shell-command to /bin/sh, so the program is passed quoted.
func (backend *Tmux) CommandPaneArgv(prog program.Program, dir string) []string {
	return []string{"tmux", "split-window", "-c", dir, prog.String()}
}

// FileArgv builds the command that opens path in a new window.
func (backend *Tmux) FileArgv(path string) []string {
	editor := strings.TrimSpace(backend.editor)
	if editor == "" {
		editor = defaultEditor
	}
	return []string{"tmux", "new-window", editor + " " + shellquote.Join(path)}
}

// OpenTerminal opens a shell pane rooted at dir.
func (backend *Tmux) OpenTerminal(ctx context.Context, dir string) error {
	return runPaneCommand(ctx, backend.runner, backend.TerminalArgv(dir))
}

// OpenCommandPane opens a pane running prog in dir.
func (backend *Tmux) OpenCommandPane(ctx context.Context, prog program.Program, dir string) error {
	return runPaneCommand(ctx, backend.runner, backend.CommandPaneArgv(prog, dir))
}

// OpenFile opens path in a new window.
func (backend *Tmux) OpenFile(ctx context.Context, path string) error {
	return runPaneCommand(ctx, backend.runner, backend.FileArgv(path))
}

// runPaneCommand executes a multiplexer command, turning failures into errors.
func runPaneCommand(ctx context.Context, runner Runner, argv []string) error {
	result := runner.Run(ctx, Command{Argv: argv})
	if result.ExitCode != nil && *result.ExitCode == 0 {
		return nil
	}
	detail := strings.TrimSpace(string(result.Stderr))
	if detail == "" && result.Err != nil {
		detail = result.Err.Error()
	}
	if detail == "" {
		if result.ExitCode != nil {
			detail = fmt.Sprintf("exit status %d", *result.ExitCode)
		} else {
			detail = "no exit status"
		}
	}
	return fmt.Errorf("%s: %s", argv[0], detail)
}
