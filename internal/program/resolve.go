// Package program resolves the operator's free-form agent command into an
// executable path and argument list.
package program

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

const (
	// FallbackShell is launched when no usable program is configured.
	FallbackShell = "bash"
	// CustomSentinel selects the fallback shell explicitly.
	CustomSentinel = "custom"
)

// Program is a resolved executable path plus its arguments.
type Program struct {
	Path string
	Args []string
}

// Resolve splits command using shell word rules. Empty input, the custom
// sentinel, unbalanced quoting, and inputs without tokens all resolve to the
// fallback shell with no arguments.
func Resolve(command string) Program {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" || trimmed == CustomSentinel {
		return fallback()
	}
	words, err := shellquote.Split(trimmed)
	if err != nil || len(words) == 0 {
		return fallback()
	}
	return Program{Path: words[0], Args: words[1:]}
}

// IsFallback reports whether the program is the bare fallback shell.
func (program Program) IsFallback() bool {
	return program.Path == FallbackShell && len(program.Args) == 0
}

// Argv returns the path followed by the arguments.
func (program Program) Argv() []string {
	argv := make([]string, 0, len(program.Args)+1)
	argv = append(argv, program.Path)
	return append(argv, program.Args...)
}

// String renders the program as a single shell-quoted command line.
func (program Program) String() string {
	return shellquote.Join(program.Argv()...)
}

func fallback() Program {
	return Program{Path: FallbackShell, Args: []string{}}
}
