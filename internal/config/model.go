// Package config defines the configuration model for agentfleet.
package config

// Config defines the full configuration surface for agentfleet.
type Config struct {
	Agent    AgentConfig    `yaml:"agent"`
	Worktree WorktreeConfig `yaml:"worktree"`
	Host     HostConfig     `yaml:"host"`
	Audit    AuditConfig    `yaml:"audit"`
}

// AgentConfig selects the program launched in the agent pane.
type AgentConfig struct {
	Program string `yaml:"program"`
}

// WorktreeConfig controls isolated working copy creation.
type WorktreeConfig struct {
	Create  bool   `yaml:"create"`
	Base    string `yaml:"base"`
	LogFile string `yaml:"log_file"`
}

// HostConfig selects the terminal multiplexer backend.
type HostConfig struct {
	Multiplexer string `yaml:"multiplexer"` // "auto", "zellij", or "tmux"
}

// AuditConfig controls the audit log.
type AuditConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// Supported multiplexer names.
const (
	MultiplexerAuto   = "auto"
	MultiplexerZellij = "zellij"
	MultiplexerTmux   = "tmux"
)

// IsValidMultiplexer reports whether name selects a known backend.
func IsValidMultiplexer(name string) bool {
	switch name {
	case MultiplexerAuto, MultiplexerZellij, MultiplexerTmux:
		return true
	default:
		return false
	}
}

// Supported audit levels.
var auditLevels = map[string]struct{}{
	"trace": {},
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// IsValidAuditLevel reports whether level is understood by the audit log.
func IsValidAuditLevel(level string) bool {
	_, ok := auditLevels[level]
	return ok
}
