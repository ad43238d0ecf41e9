// Package workflow implements the launch state machine: it issues the
// root-detection and copy-creation commands, correlates their completions,
// and decides which panes to open.
package workflow

import "fmt"

// Phase labels where a launch attempt currently stands.
type Phase string

const (
	// PhaseIdle indicates no launch has been requested yet.
	PhaseIdle Phase = "idle"
	// PhaseDetectingRoot waits on the repository root discovery command.
	PhaseDetectingRoot Phase = "detecting_root"
	// PhaseCreatingCopy waits on the worktree creation command.
	PhaseCreatingCopy Phase = "creating_copy"
	// PhaseLaunched indicates the agent panes were requested.
	PhaseLaunched Phase = "launched"
	// PhaseFailed indicates the last attempt stopped with an error.
	PhaseFailed Phase = "failed"
)

// allowedTransitions defines the permitted phase changes. Every phase may
// start a new attempt (detecting_root, launched, failed) because the
// operator can re-trigger a launch at any time.
var allowedTransitions = map[Phase]map[Phase]struct{}{
	PhaseIdle: {
		PhaseDetectingRoot: {},
		PhaseLaunched:      {},
		PhaseFailed:        {},
	},
	PhaseDetectingRoot: {
		PhaseCreatingCopy:  {},
		PhaseDetectingRoot: {},
		PhaseLaunched:      {},
		PhaseFailed:        {},
	},
	PhaseCreatingCopy: {
		PhaseLaunched:      {},
		PhaseDetectingRoot: {},
		PhaseFailed:        {},
	},
	PhaseLaunched: {
		PhaseDetectingRoot: {},
		PhaseLaunched:      {},
		PhaseFailed:        {},
	},
	PhaseFailed: {
		PhaseDetectingRoot: {},
		PhaseLaunched:      {},
		PhaseFailed:        {},
	},
}

// IsValidTransition reports whether the workflow allows the requested change.
func IsValidTransition(from Phase, to Phase) bool {
	if from == "" || to == "" {
		return false
	}
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// ValidateTransition returns an error when a phase change is not allowed.
func ValidateTransition(from Phase, to Phase) error {
	if !IsValidTransition(from, to) {
		return fmt.Errorf("invalid workflow transition from %q to %q", from, to)
	}
	return nil
}

// Terminal reports whether the phase ends an attempt.
func (phase Phase) Terminal() bool {
	return phase == PhaseLaunched || phase == PhaseFailed
}
