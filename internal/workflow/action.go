package workflow

import (
	"github.com/cmtonkinson/agentfleet/internal/program"
	"github.com/cmtonkinson/agentfleet/internal/stage"
)

// Action is a side effect the host performs on behalf of the machine.
type Action interface {
	action()
}

// Dispatch runs an external command asynchronously. Its completion must be
// fed back through Machine.Complete with the same tags.
type Dispatch struct {
	Argv []string
	Env  map[string]string
	Dir  string
	Tags stage.Context
}

// OpenTerminal opens an interactive shell pane rooted at Dir.
type OpenTerminal struct {
	Dir  string
	Tags stage.Context
}

// OpenCommandPane opens a pane running Program in Dir.
type OpenCommandPane struct {
	Program program.Program
	Dir     string
	Tags    stage.Context
}

// OpenFile opens Path for viewing next to the front-end.
type OpenFile struct {
	Path string
}

func (Dispatch) action()        {}
func (OpenTerminal) action()    {}
func (OpenCommandPane) action() {}
func (OpenFile) action()        {}

// Completion is the host's report for a finished Dispatch. ExitCode is nil
// when the process never produced an exit status.
type Completion struct {
	ExitCode *int
	Stdout   []byte
	Stderr   []byte
	Tags     stage.Context
}

// Succeeded reports whether the command exited with status 0.
func (completion Completion) Succeeded() bool {
	return completion.ExitCode != nil && *completion.ExitCode == 0
}

// ExitCodeOf is a helper for building completions.
func ExitCodeOf(code int) *int {
	return &code
}
