package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cmtonkinson/agentfleet/internal/audit"
	"github.com/cmtonkinson/agentfleet/internal/buildinfo"
	"github.com/cmtonkinson/agentfleet/internal/config"
	"github.com/cmtonkinson/agentfleet/internal/form"
	"github.com/cmtonkinson/agentfleet/internal/host"
	"github.com/cmtonkinson/agentfleet/internal/repo"
	"github.com/cmtonkinson/agentfleet/internal/tui"
	"github.com/cmtonkinson/agentfleet/internal/workflow"
)

// options holds the root command flags.
type options struct {
	program     string
	branch      string
	path        string
	base        string
	multiplexer string
	noWorktree  bool
	verbose     bool
}

// newRootCommand builds the CLI writing to stdout and stderr.
func newRootCommand(stdout io.Writer, stderr io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "agentfleet",
		Short: "Launch a coding agent in an isolated git worktree",
		Long: `agentfleet shows a small launcher inside zellij or tmux. Pressing enter
creates a fresh git worktree next to the current repository and opens a
shell pane plus a pane running the agent program inside it.

Examples:
  agentfleet
  agentfleet --program "claude --resume" --base origin/develop
  agentfleet --no-worktree --program aider`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLauncher(cmd.Flags(), opts, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.Flags()
	flags.StringVar(&opts.program, "program", "", "Agent command line; empty or \"custom\" opens a bash pane (default from agent.program)")
	flags.StringVar(&opts.branch, "branch", "", "Branch created for the worktree (default <user>/af-<pid>)")
	flags.StringVar(&opts.path, "path", "", "Worktree directory (default ../<repo>-af-<pid>)")
	flags.StringVar(&opts.base, "base", "", "Revision the branch starts from (default from worktree.base)")
	flags.StringVar(&opts.multiplexer, "multiplexer", "", "Pane backend: auto, zellij, or tmux")
	flags.BoolVar(&opts.noWorktree, "no-worktree", false, "Launch in the current directory without creating a worktree")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(newVersionCommand(), newInitCommand(opts))
	return rootCmd
}

// newVersionCommand prints build metadata.
func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}

// newInitCommand writes the default repository config.
func newInitCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default .agentfleet.yaml to the current repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot, err := repo.DiscoverRootFromCWD()
			if err != nil {
				return err
			}
			written, err := config.InitRepoConfig(repoRoot, config.InitOptions{
				Verbose: opts.verbose,
				Writer:  cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintln(cmd.OutOrStdout(), "init ok")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", config.RepoConfigPath(repoRoot))
			}
			return nil
		},
	}
}

// runLauncher wires configuration, auditing, and the host into the TUI.
func runLauncher(flags *pflag.FlagSet, opts *options, stderr io.Writer) error {
	warn := func(message string) {
		fmt.Fprintf(stderr, "warning: %s\n", message)
	}

	env := form.HostEnvironment()
	repoRoot, err := repo.DiscoverRoot(env.WorkingDir())
	if err != nil {
		if opts.verbose {
			warn(fmt.Sprintf("skipping repo config: %v", err))
		}
		repoRoot = ""
	}

	cfg, err := config.Load(repoRoot, cliOverrides(flags, opts), warn)
	if err != nil {
		return err
	}

	logger := openAuditLog(cfg, warn)
	defer logger.Close()

	runner := host.ExecRunner{}
	mux, err := host.Detect(cfg.Host.Multiplexer, os.Getenv, runner)
	if err != nil {
		return err
	}

	machine := workflow.New(
		launchForm(cfg, flags, opts, env),
		env,
		workflow.WithEventLogger(logger),
		workflow.WithLogFileName(cfg.Worktree.LogFile),
	)
	executor := host.NewExecutor(runner, mux, host.WithPaneLogger(logger))
	return tui.Run(machine, executor)
}

// cliOverrides maps explicitly set flags onto config keys.
func cliOverrides(flags *pflag.FlagSet, opts *options) map[string]any {
	overrides := map[string]any{}
	agent := map[string]any{}
	worktree := map[string]any{}
	hostSettings := map[string]any{}

	if flags.Changed("program") {
		agent["program"] = opts.program
	}
	if flags.Changed("no-worktree") {
		worktree["create"] = !opts.noWorktree
	}
	if flags.Changed("base") {
		worktree["base"] = opts.base
	}
	if flags.Changed("multiplexer") {
		hostSettings["multiplexer"] = opts.multiplexer
	}
	if opts.verbose {
		overrides["audit"] = map[string]any{"level": "debug"}
	}

	if len(agent) > 0 {
		overrides["agent"] = agent
	}
	if len(worktree) > 0 {
		overrides["worktree"] = worktree
	}
	if len(hostSettings) > 0 {
		overrides["host"] = hostSettings
	}
	return overrides
}

// launchForm seeds the operator form from config and per-run flags.
func launchForm(cfg config.Config, flags *pflag.FlagSet, opts *options, env form.Environment) form.Config {
	launch := form.Defaults(env)
	launch.Program = cfg.Agent.Program
	launch.BaseRevision = cfg.Worktree.Base
	launch.CreateIsolatedCopy = cfg.Worktree.Create
	if flags.Changed("branch") {
		launch.BranchName = opts.branch
	}
	if flags.Changed("path") {
		launch.TargetPath = opts.path
	}
	return launch
}

// openAuditLog opens the configured audit log. Failures only warn: the
// launcher works without an audit trail.
func openAuditLog(cfg config.Config, warn func(string)) *audit.Logger {
	path := cfg.Audit.Path
	if path == "" {
		defaultPath, err := audit.DefaultPath()
		if err != nil {
			warn(fmt.Sprintf("audit log disabled: %v", err))
			return nil
		}
		path = defaultPath
	}
	logger, err := audit.Open(path, cfg.Audit.Level)
	if err != nil {
		warn(fmt.Sprintf("audit log disabled: %v", err))
		return nil
	}
	return logger
}
