// Package config provides default configuration handling.
package config

import (
	"path/filepath"
	"strings"
)

const (
	defaultAgentProgram    = "claude"
	defaultWorktreeCreate  = true
	defaultWorktreeBase    = "origin/main"
	defaultWorktreeLogFile = "af_zellij_plugin.log"
	defaultMultiplexer     = MultiplexerAuto
	defaultAuditLevel      = "info"
)

// Defaults returns the documented configuration defaults.
//
// Defaults:
// - agent.program: "claude"
// - worktree.create: true
// - worktree.base: "origin/main"
// - worktree.log_file: "af_zellij_plugin.log"
// - host.multiplexer: "auto"
// - audit.path: "" (uses the XDG state directory)
// - audit.level: "info"
func Defaults() Config {
	return Config{
		Agent: AgentConfig{
			Program: defaultAgentProgram,
		},
		Worktree: WorktreeConfig{
			Create:  defaultWorktreeCreate,
			Base:    defaultWorktreeBase,
			LogFile: defaultWorktreeLogFile,
		},
		Host: HostConfig{
			Multiplexer: defaultMultiplexer,
		},
		Audit: AuditConfig{
			Path:  "",
			Level: defaultAuditLevel,
		},
	}
}

// ApplyDefaults fills missing or invalid values with documented defaults.
func ApplyDefaults(cfg Config, warn func(string)) Config {
	defaults := Defaults()

	// An empty program is valid: it launches the fallback shell.
	cfg.Agent.Program = strings.TrimSpace(cfg.Agent.Program)

	cfg.Worktree.Base = normalizeBaseRevision(
		cfg.Worktree.Base,
		defaults.Worktree.Base,
		"worktree.base",
		warn,
	)
	cfg.Worktree.LogFile = normalizeLogFile(
		cfg.Worktree.LogFile,
		defaults.Worktree.LogFile,
		"worktree.log_file",
		warn,
	)
	cfg.Host.Multiplexer = normalizeChoice(
		cfg.Host.Multiplexer,
		defaults.Host.Multiplexer,
		"host.multiplexer",
		IsValidMultiplexer,
		warn,
	)
	cfg.Audit.Path = strings.TrimSpace(cfg.Audit.Path)
	cfg.Audit.Level = normalizeChoice(
		cfg.Audit.Level,
		defaults.Audit.Level,
		"audit.level",
		IsValidAuditLevel,
		warn,
	)
	return cfg
}

// normalizeBaseRevision ensures the base revision is non-empty and not an option.
func normalizeBaseRevision(value string, fallback string, key string, warn func(string)) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.HasPrefix(trimmed, "-") {
		emitWarning(warn, "invalid "+key+"; using default revision")
		return fallback
	}
	return trimmed
}

// normalizeLogFile requires a bare file name so the log stays under the repo root.
func normalizeLogFile(value string, fallback string, key string, warn func(string)) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed != filepath.Base(trimmed) || trimmed == "." || trimmed == ".." {
		emitWarning(warn, "invalid "+key+"; using default log file")
		return fallback
	}
	return trimmed
}

// normalizeChoice lower-cases value and defaults it when not accepted by valid.
func normalizeChoice(value string, fallback string, key string, valid func(string) bool, warn func(string)) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" || !valid(trimmed) {
		emitWarning(warn, "invalid "+key+"; using default")
		return fallback
	}
	return trimmed
}

// emitWarning forwards warnings to the provided sink.
func emitWarning(warn func(string), message string) {
	if warn == nil {
		return
	}
	warn(message)
}
