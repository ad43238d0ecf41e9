package workflow

import (
	"fmt"
	"strings"

	"github.com/cmtonkinson/agentfleet/internal/form"
	"github.com/cmtonkinson/agentfleet/internal/program"
	"github.com/cmtonkinson/agentfleet/internal/stage"
	"github.com/cmtonkinson/agentfleet/internal/status"
	"github.com/cmtonkinson/agentfleet/internal/worktree"
)

const (
	// launchedDirectMessage is reported when no worktree is created.
	launchedDirectMessage = "Launched agent without creating worktree"
	// launchedCopyFormat is reported once the worktree panes are requested.
	launchedCopyFormat = "Launched in %s on %s"
	// copyFailedPrefix prefixes worktree creation errors.
	copyFailedPrefix = "Failed to create worktree"
	// invalidConfigPrefix prefixes validation errors.
	invalidConfigPrefix = "Invalid configuration"
	// workflowErrorPrefix prefixes internal sequencing errors.
	workflowErrorPrefix = "Workflow error"
)

// EventLogger receives workflow events for auditing.
type EventLogger interface {
	LogTransition(from string, to string)
	LogDispatch(stage string, argv []string, dir string)
	LogCompletion(stage string, exitCode *int)
	LogIgnored(tags map[string]string)
}

// Machine is the launch orchestrator. It is not safe for concurrent use; the
// host must deliver launches and completions from a single goroutine.
type Machine struct {
	form        form.Config
	env         form.Environment
	logFileName string
	events      EventLogger
	registry    *stage.Registry

	phase    Phase
	attempt  *form.Config
	repoRoot string
	logPath  string
	status   status.Reporter
}

// Option customizes a Machine.
type Option func(*Machine)

// WithEventLogger reports transitions and dispatches to logger.
func WithEventLogger(logger EventLogger) Option {
	return func(machine *Machine) {
		machine.events = logger
	}
}

// WithRegistry replaces the correlation registry, e.g. for deterministic tokens.
func WithRegistry(registry *stage.Registry) Option {
	return func(machine *Machine) {
		if registry != nil {
			machine.registry = registry
		}
	}
}

// WithLogFileName overrides the log file written under the repository root.
func WithLogFileName(name string) Option {
	return func(machine *Machine) {
		if strings.TrimSpace(name) != "" {
			machine.logFileName = name
		}
	}
}

// New builds an idle machine for the operator's form.
func New(cfg form.Config, env form.Environment, opts ...Option) *Machine {
	machine := &Machine{
		form:        cfg,
		env:         env,
		logFileName: worktree.DefaultLogFileName,
		registry:    stage.NewRegistry(),
		phase:       PhaseIdle,
	}
	for _, opt := range opts {
		opt(machine)
	}
	return machine
}

// Launch starts a new attempt and returns the actions the host must perform.
// Commands still in flight from an earlier attempt are abandoned: their
// completions no longer match a pending token and are ignored.
func (machine *Machine) Launch() []Action {
	machine.registry.Reset()
	resolved := machine.form.Resolve(machine.env)
	machine.attempt = &resolved

	if err := resolved.Validate(); err != nil {
		machine.status.Fail(invalidConfigPrefix, err.Error())
		machine.transition(PhaseFailed)
		return nil
	}

	cwd := machine.env.WorkingDir()
	if !resolved.CreateIsolatedCopy {
		machine.status.Set(launchedDirectMessage)
		machine.transition(PhaseLaunched)
		return agentPanes(resolved.Program, cwd, nil)
	}

	dispatch, err := machine.issue(stage.DetectRoot, worktree.DetectRootArgv(), cwd)
	if err != nil {
		machine.status.Fail(invalidConfigPrefix, err.Error())
		machine.transition(PhaseFailed)
		return nil
	}
	machine.transition(PhaseDetectingRoot)
	return []Action{dispatch}
}

// Complete feeds a finished command back into the machine. It reports false,
// with nothing mutated, when the completion does not belong to a pending stage.
func (machine *Machine) Complete(completion Completion) ([]Action, bool) {
	pending, ok := machine.registry.Take(completion.Tags)
	if !ok {
		if machine.events != nil {
			machine.events.LogIgnored(completion.Tags)
		}
		return nil, false
	}
	if machine.events != nil {
		machine.events.LogCompletion(string(pending), completion.ExitCode)
	}
	switch pending {
	case stage.DetectRoot:
		return machine.rootDetected(completion), true
	case stage.CreateCopy:
		return machine.copyCreated(completion), true
	default:
		return nil, false
	}
}

// rootDetected records the repository root and issues the worktree command.
// A failed detection degrades to the current directory instead of aborting.
func (machine *Machine) rootDetected(completion Completion) []Action {
	root := worktree.UnknownRoot
	if completion.Succeeded() {
		if trimmed := strings.TrimSpace(string(completion.Stdout)); trimmed != "" {
			root = trimmed
		}
	}
	machine.repoRoot = root
	machine.logPath = worktree.LogPath(root, machine.logFileName)

	attempt := machine.currentAttempt()
	argv, err := worktree.AddArgv(worktree.Spec{
		Branch:       attempt.BranchName,
		Path:         attempt.TargetPath,
		BaseRevision: attempt.BaseRevision,
		LogPath:      machine.logPath,
	})
	if err != nil {
		machine.status.Fail(copyFailedPrefix, err.Error())
		machine.transition(PhaseFailed)
		return nil
	}
	dispatch, err := machine.issue(stage.CreateCopy, argv, root)
	if err != nil {
		machine.status.Fail(copyFailedPrefix, err.Error())
		machine.transition(PhaseFailed)
		return nil
	}
	machine.transition(PhaseCreatingCopy)
	return []Action{dispatch}
}

// copyCreated opens the panes in the new worktree, or reports git's error.
func (machine *Machine) copyCreated(completion Completion) []Action {
	attempt := machine.currentAttempt()
	if !completion.Succeeded() {
		detail := strings.TrimSpace(string(completion.Stderr))
		if detail == "" {
			detail = strings.TrimSpace(string(completion.Stdout))
		}
		if detail == "" && completion.ExitCode == nil {
			detail = "command did not report an exit status"
		}
		machine.status.Fail(copyFailedPrefix, detail)
		machine.transition(PhaseFailed)
		return nil
	}
	machine.status.Succeed(launchedCopyFormat, attempt.TargetPath, attempt.BranchName)
	machine.transition(PhaseLaunched)
	return agentPanes(attempt.Program, attempt.TargetPath, stage.ForPurpose(stage.PurposeCreateCopy))
}

// OpenLog returns the action that shows the worktree log, once it is known.
func (machine *Machine) OpenLog() []Action {
	if machine.logPath == "" {
		return nil
	}
	return []Action{OpenFile{Path: machine.logPath}}
}

// issue registers a pending stage and builds its dispatch.
func (machine *Machine) issue(pending stage.Stage, argv []string, dir string) (Dispatch, error) {
	tags, err := machine.registry.Issue(pending)
	if err != nil {
		return Dispatch{}, fmt.Errorf("issue %s: %w", pending, err)
	}
	if machine.events != nil {
		machine.events.LogDispatch(string(pending), argv, dir)
	}
	return Dispatch{
		Argv: argv,
		Env:  map[string]string{},
		Dir:  dir,
		Tags: tags,
	}, nil
}

// transition moves to the next phase, reporting it to the event logger. A
// change the table does not allow fails the attempt instead.
func (machine *Machine) transition(to Phase) {
	from := machine.phase
	if err := ValidateTransition(from, to); err != nil {
		machine.status.Fail(workflowErrorPrefix, err.Error())
		to = PhaseFailed
	}
	machine.phase = to
	if machine.events != nil {
		machine.events.LogTransition(string(from), string(to))
	}
}

// currentAttempt returns the resolved config of the running attempt.
func (machine *Machine) currentAttempt() form.Config {
	if machine.attempt == nil {
		return machine.form.Resolve(machine.env)
	}
	return *machine.attempt
}

// agentPanes opens a shell and the resolved agent program side by side.
func agentPanes(command string, dir string, terminalTags stage.Context) []Action {
	return []Action{
		OpenTerminal{Dir: dir, Tags: terminalTags},
		OpenCommandPane{
			Program: program.Resolve(command),
			Dir:     dir,
			Tags:    stage.ForPurpose(stage.PurposeLaunchAgent),
		},
	}
}

// Phase returns the current workflow phase.
func (machine *Machine) Phase() Phase {
	return machine.phase
}

// Form returns the operator's form as entered.
func (machine *Machine) Form() form.Config {
	return machine.form
}

// Attempt returns the resolved config of the latest launch, if any.
func (machine *Machine) Attempt() (form.Config, bool) {
	if machine.attempt == nil {
		return form.Config{}, false
	}
	return *machine.attempt, true
}

// RepoRoot returns the detected repository root once known.
func (machine *Machine) RepoRoot() (string, bool) {
	return machine.repoRoot, machine.repoRoot != ""
}

// LogPath returns the worktree log path once known.
func (machine *Machine) LogPath() (string, bool) {
	return machine.logPath, machine.logPath != ""
}

// Status returns the latest status line.
func (machine *Machine) Status() string {
	return machine.status.String()
}

// ReportError overwrites the status line with a host-side failure.
func (machine *Machine) ReportError(prefix string, err error) {
	if err == nil {
		return
	}
	machine.status.Fail(prefix, err.Error())
}

// Pending reports how many stage-tagged commands are outstanding.
func (machine *Machine) Pending() int {
	return machine.registry.Len()
}
