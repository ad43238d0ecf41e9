// Package worktree builds the git command lines that discover the repository
// root and create the isolated working copy.
package worktree

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
)

const (
	// DefaultLogFileName is the log written next to the repository root.
	DefaultLogFileName = "af_zellij_plugin.log"
	// UnknownRoot stands in for the repository root when discovery fails.
	UnknownRoot = "."
	// shellPath runs the copy-creation pipeline.
	shellPath = "bash"
)

// Spec defines the inputs needed to create a worktree.
type Spec struct {
	Branch       string
	Path         string
	BaseRevision string
	LogPath      string
}

// DetectRootArgv returns the command that prints the repository root.
func DetectRootArgv() []string {
	return []string{"git", "rev-parse", "--show-toplevel"}
}

// LogPath joins the repository root and log file name. Blank inputs fall
// back to the unknown root and the default file name.
func LogPath(repoRoot string, fileName string) string {
	if strings.TrimSpace(repoRoot) == "" {
		repoRoot = UnknownRoot
	}
	if strings.TrimSpace(fileName) == "" {
		fileName = DefaultLogFileName
	}
	return filepath.Join(repoRoot, fileName)
}

// AddArgv returns the command that creates (or resets, via -B) the branch and
// checks it out at spec.Path. git's combined output is appended to the log
// file and echoed on stderr; pipefail keeps git's exit status.
func AddArgv(spec Spec) ([]string, error) {
	script, err := AddScript(spec)
	if err != nil {
		return nil, err
	}
	return []string{shellPath, "-c", script}, nil
}

// AddScript renders the shell pipeline used by AddArgv.
func AddScript(spec Spec) (string, error) {
	if err := validateSpec(spec); err != nil {
		return "", err
	}
	git := shellquote.Join("git", "worktree", "add", "-B", spec.Branch, spec.Path, spec.BaseRevision)
	tee := shellquote.Join("tee", "-a", spec.LogPath)
	return fmt.Sprintf("set -o pipefail; %s 2>&1 | %s 1>&2", git, tee), nil
}

// validateSpec ensures every operand of the pipeline is present.
func validateSpec(spec Spec) error {
	if strings.TrimSpace(spec.Branch) == "" {
		return errors.New("branch is required")
	}
	if strings.TrimSpace(spec.Path) == "" {
		return errors.New("worktree path is required")
	}
	if strings.TrimSpace(spec.BaseRevision) == "" {
		return errors.New("base revision is required")
	}
	if strings.TrimSpace(spec.LogPath) == "" {
		return errors.New("log path is required")
	}
	return nil
}
