// Tests for configuration defaults.
package config

import (
	"strings"
	"testing"
)

// TestApplyDefaultsFallsBack verifies invalid values revert with a warning.
func TestApplyDefaultsFallsBack(t *testing.T) {
	var warnings []string
	warn := func(message string) { warnings = append(warnings, message) }

	cfg := ApplyDefaults(Config{
		Agent:    AgentConfig{Program: "  claude --resume  "},
		Worktree: WorktreeConfig{Base: "--orphan", LogFile: "../escape.log"},
		Host:     HostConfig{Multiplexer: "screen"},
		Audit:    AuditConfig{Level: "loud"},
	}, warn)

	if cfg.Agent.Program != "claude --resume" {
		t.Fatalf("agent.program = %q", cfg.Agent.Program)
	}
	if cfg.Worktree.Base != defaultWorktreeBase {
		t.Fatalf("worktree.base = %q", cfg.Worktree.Base)
	}
	if cfg.Worktree.LogFile != defaultWorktreeLogFile {
		t.Fatalf("worktree.log_file = %q", cfg.Worktree.LogFile)
	}
	if cfg.Host.Multiplexer != MultiplexerAuto {
		t.Fatalf("host.multiplexer = %q", cfg.Host.Multiplexer)
	}
	if cfg.Audit.Level != defaultAuditLevel {
		t.Fatalf("audit.level = %q", cfg.Audit.Level)
	}
	for _, key := range []string{"worktree.base", "worktree.log_file", "host.multiplexer", "audit.level"} {
		found := false
		for _, warning := range warnings {
			if strings.Contains(warning, key) {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing warning for %s in %v", key, warnings)
		}
	}
}

// TestApplyDefaultsNormalizesCase accepts mixed-case choices.
func TestApplyDefaultsNormalizesCase(t *testing.T) {
	cfg := Defaults()
	cfg.Host.Multiplexer = " TMUX "
	cfg.Audit.Level = "Debug"
	cfg = ApplyDefaults(cfg, nil)
	if cfg.Host.Multiplexer != MultiplexerTmux || cfg.Audit.Level != "debug" {
		t.Fatalf("cfg = %#v", cfg)
	}
}

// TestParseBoolWarns verifies non-boolean worktree.create values keep the default.
func TestParseBoolWarns(t *testing.T) {
	var warnings []string
	cfg := decodeConfig(map[string]any{
		"worktree": map[string]any{"create": "nope"},
	}, func(message string) { warnings = append(warnings, message) })
	if !cfg.Worktree.Create {
		t.Fatal("worktree.create should keep its default")
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "worktree.create") {
		t.Fatalf("warnings = %v", warnings)
	}
}
