// Package audit records workflow events to an append-only log file.
package audit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
)

const (
	// stateDirName is the per-user directory holding the audit log.
	stateDirName = "agentfleet"
	// auditLogFileName is the filename used for audit logging.
	auditLogFileName = "audit.log"
	// auditLogFileMode defines the permissions for the audit log file.
	auditLogFileMode = 0o644
	// auditLogDirMode defines the permissions for the audit log directory.
	auditLogDirMode = 0o755
)

const (
	// EventTransition records a workflow phase change.
	EventTransition = "workflow.transition"
	// EventDispatch records a stage-tagged command being issued.
	EventDispatch = "command.dispatch"
	// EventCompletion records a stage-tagged command finishing.
	EventCompletion = "command.complete"
	// EventIgnored records a completion that matched no pending stage.
	EventIgnored = "completion.ignored"
	// EventPaneOpen records a pane or file being opened.
	EventPaneOpen = "pane.open"
	// EventPaneError records a pane or file that failed to open.
	EventPaneError = "pane.error"
)

// Logger appends audit entries through logrus. A nil Logger discards everything.
type Logger struct {
	log  *logrus.Logger
	file *os.File
}

// DefaultPath returns $XDG_STATE_HOME/agentfleet/audit.log, falling back to
// ~/.local/state when XDG_STATE_HOME is unset.
func DefaultPath() (string, error) {
	if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
		return filepath.Join(stateHome, stateDirName, auditLogFileName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(homeDir, ".local", "state", stateDirName, auditLogFileName), nil
}

// Open creates (or appends to) the audit log at path.
func Open(path string, level string) (*Logger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("audit log path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), auditLogDirMode); err != nil {
		return nil, fmt.Errorf("create audit log directory %s: %w", filepath.Dir(path), err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, auditLogFileMode)
	if err != nil {
		return nil, fmt.Errorf("open audit log %s: %w", path, err)
	}
	logger, err := New(file, level)
	if err != nil {
		file.Close()
		return nil, err
	}
	logger.file = file
	return logger, nil
}

// New builds a Logger writing logfmt lines to out.
func New(out io.Writer, level string) (*Logger, error) {
	if out == nil {
		return nil, errors.New("audit output is required")
	}
	parsed := logrus.InfoLevel
	if strings.TrimSpace(level) != "" {
		var err error
		parsed, err = logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse audit level %q: %w", level, err)
		}
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(parsed)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return &Logger{log: log}, nil
}

// Close releases the log file when the Logger owns one.
func (logger *Logger) Close() error {
	if logger == nil || logger.file == nil {
		return nil
	}
	return logger.file.Close()
}

// LogTransition records a workflow phase change.
func (logger *Logger) LogTransition(from string, to string) {
	if logger == nil {
		return
	}
	logger.log.WithFields(logrus.Fields{
		"from": from,
		"to":   to,
	}).Info(EventTransition)
}

// LogDispatch records a stage-tagged command being issued.
func (logger *Logger) LogDispatch(stage string, argv []string, dir string) {
	if logger == nil {
		return
	}
	logger.log.WithFields(logrus.Fields{
		"stage": stage,
		"argv":  shellquote.Join(argv...),
		"dir":   dir,
	}).Info(EventDispatch)
}

// LogCompletion records a stage-tagged command finishing. A nil exit code
// means the process never reported a status.
func (logger *Logger) LogCompletion(stage string, exitCode *int) {
	if logger == nil {
		return
	}
	code := "none"
	if exitCode != nil {
		code = strconv.Itoa(*exitCode)
	}
	logger.log.WithFields(logrus.Fields{
		"stage":     stage,
		"exit_code": code,
	}).Info(EventCompletion)
}

// LogIgnored records a completion that did not correlate with a pending stage.
func (logger *Logger) LogIgnored(tags map[string]string) {
	if logger == nil {
		return
	}
	logger.log.WithField("tags", formatTags(tags)).Debug(EventIgnored)
}

// LogPaneOpen records a pane or file being opened.
func (logger *Logger) LogPaneOpen(kind string, dir string, program string) {
	if logger == nil {
		return
	}
	fields := logrus.Fields{"kind": kind, "dir": dir}
	if program != "" {
		fields["program"] = program
	}
	logger.log.WithFields(fields).Info(EventPaneOpen)
}

// LogPaneError records a pane or file that failed to open.
func (logger *Logger) LogPaneError(kind string, err error) {
	if logger == nil || err == nil {
		return
	}
	logger.log.WithField("kind", kind).WithError(err).Warn(EventPaneError)
}

// formatTags renders tags as sorted key=value pairs.
func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+tags[key])
	}
	return strings.Join(pairs, ",")
}
