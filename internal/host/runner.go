// Package host performs the side effects requested by the launch workflow:
// running commands and opening panes in the terminal multiplexer.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

// Command describes one external process invocation.
type Command struct {
	Argv []string
	Env  map[string]string
	Dir  string
}

// Result captures a finished process. ExitCode is nil when the process could
// not be started or was terminated by a signal; Err explains why.
type Result struct {
	ExitCode *int
	Stdout   []byte
	Stderr   []byte
	Err      error
}

// Runner executes commands and captures their output.
type Runner interface {
	Run(ctx context.Context, command Command) Result
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command, waiting for it to exit.
func (ExecRunner) Run(ctx context.Context, command Command) Result {
	if len(command.Argv) == 0 {
		return Result{Err: errors.New("command is required")}
	}

	cmd := exec.CommandContext(ctx, command.Argv[0], command.Argv[1:]...)
	cmd.Dir = command.Dir
	cmd.Env = mergeEnv(os.Environ(), command.Env)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		code := 0
		result.ExitCode = &code
		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			result.ExitCode = &code
			return result
		}
		result.Err = fmt.Errorf("run %s: %w", command.Argv[0], err)
		return result
	}

	// The process never started; surface the reason where a caller looks for errors.
	result.Err = fmt.Errorf("start %s: %w", command.Argv[0], err)
	if len(result.Stderr) == 0 {
		result.Stderr = []byte(result.Err.Error())
	}
	return result
}

// mergeEnv overlays extra variables onto base. Later keys win.
func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return nil
	}
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	env := append([]string{}, base...)
	for _, key := range keys {
		env = append(env, fmt.Sprintf("%s=%s", key, extra[key]))
	}
	return env
}
