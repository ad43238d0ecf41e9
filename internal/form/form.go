// Package form holds the operator-editable launch parameters and derives
// their defaults from an injected host environment.
package form

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// DefaultProgram is the agent launched when the operator changes nothing.
	DefaultProgram = "claude"
	// DefaultBaseRevision is the revision new branches start from.
	DefaultBaseRevision = "origin/main"
	// defaultUser stands in when the operating user is unknown.
	defaultUser = "user"
	// defaultRepoName stands in when the working directory has no basename.
	defaultRepoName = "repo"
	// suffixMarker separates the repo or user from the process id.
	suffixMarker = "af-"
)

// Config is the set of parameters for one launch workflow.
type Config struct {
	Program            string
	BranchName         string
	TargetPath         string
	BaseRevision       string
	CreateIsolatedCopy bool
}

// Environment supplies the host facts used to derive defaults.
type Environment struct {
	User  string
	PID   int
	Getwd func() (string, error)
}

// HostEnvironment reads the environment of the running process.
func HostEnvironment() Environment {
	return Environment{
		User:  os.Getenv("USER"),
		PID:   os.Getpid(),
		Getwd: hostWorkingDir,
	}
}

// hostWorkingDir prefers $PWD so symlinked paths stay as the operator typed them.
func hostWorkingDir() (string, error) {
	if pwd := strings.TrimSpace(os.Getenv("PWD")); pwd != "" {
		return pwd, nil
	}
	return os.Getwd()
}

// WorkingDir resolves the current directory, degrading to "." when unknown.
func (env Environment) WorkingDir() string {
	if env.Getwd == nil {
		return "."
	}
	dir, err := env.Getwd()
	if err != nil || strings.TrimSpace(dir) == "" {
		return "."
	}
	return dir
}

func (env Environment) user() string {
	if user := strings.TrimSpace(env.User); user != "" {
		return user
	}
	return defaultUser
}

func (env Environment) suffix() string {
	return suffixMarker + strconv.Itoa(env.PID)
}

// Defaults returns the generated form for a freshly started process.
func Defaults(env Environment) Config {
	return Config{
		Program:            DefaultProgram,
		BranchName:         DefaultBranchName(env),
		TargetPath:         "",
		BaseRevision:       DefaultBaseRevision,
		CreateIsolatedCopy: true,
	}
}

// DefaultBranchName returns <user>/af-<pid>.
func DefaultBranchName(env Environment) string {
	return env.user() + "/" + env.suffix()
}

// DefaultTargetPath returns <parent of cwd>/<basename of cwd>-af-<pid>.
// It reads the working directory each time it is called.
func DefaultTargetPath(env Environment) string {
	cwd := filepath.Clean(env.WorkingDir())
	name := filepath.Base(cwd)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = defaultRepoName
	}
	return filepath.Join(filepath.Dir(cwd), name+"-"+env.suffix())
}

// Resolve returns a copy of the config with a concrete target path.
func (cfg Config) Resolve(env Environment) Config {
	resolved := cfg
	if strings.TrimSpace(resolved.TargetPath) == "" {
		resolved.TargetPath = DefaultTargetPath(env)
	}
	if strings.TrimSpace(resolved.BaseRevision) == "" {
		resolved.BaseRevision = DefaultBaseRevision
	}
	return resolved
}

// Validate checks the fields a launch will consume.
func (cfg Config) Validate() error {
	if !cfg.CreateIsolatedCopy {
		return nil
	}
	if strings.TrimSpace(cfg.BranchName) == "" {
		return errors.New("branch name is required")
	}
	if err := ValidateBranchName(cfg.BranchName); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.TargetPath) == "" {
		return errors.New("target path is required")
	}
	if strings.TrimSpace(cfg.BaseRevision) == "" {
		return errors.New("base revision is required")
	}
	if strings.HasPrefix(strings.TrimSpace(cfg.BaseRevision), "-") {
		return fmt.Errorf("base revision %q must not start with '-'", cfg.BaseRevision)
	}
	return nil
}

// TargetLabel renders the target path for display.
func (cfg Config) TargetLabel() string {
	if strings.TrimSpace(cfg.TargetPath) == "" {
		return "<auto>"
	}
	return cfg.TargetPath
}
