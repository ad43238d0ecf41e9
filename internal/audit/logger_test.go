// Tests for the audit logger.
package audit

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLoggerWritesEntries ensures audit entries are written in order as logfmt.
func TestLoggerWritesEntries(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.LogTransition("idle", "detecting_root")
	logger.LogDispatch("detect_root", []string{"git", "rev-parse", "--show-toplevel"}, "/home/u/myrepo")
	exitCode := 0
	logger.LogCompletion("detect_root", &exitCode)
	logger.LogCompletion("create_copy", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 audit lines, got %d: %q", len(lines), buf.String())
	}
	expectations := []string{
		"level=info msg=workflow.transition from=idle to=detecting_root",
		`level=info msg=command.dispatch argv="git rev-parse --show-toplevel" dir=/home/u/myrepo stage=detect_root`,
		"level=info msg=command.complete exit_code=0 stage=detect_root",
		"level=info msg=command.complete exit_code=none stage=create_copy",
	}
	for i, want := range expectations {
		if !strings.Contains(lines[i], want) {
			t.Fatalf("line %d = %q, want it to contain %q", i, lines[i], want)
		}
		if !strings.HasPrefix(lines[i], "time=") {
			t.Fatalf("line %d = %q, want timestamp prefix", i, lines[i])
		}
	}
}

// TestLoggerLevelFiltersIgnoredCompletions verifies debug-only events respect the level.
func TestLoggerLevelFiltersIgnoredCompletions(t *testing.T) {
	var info bytes.Buffer
	logger, err := New(&info, "info")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.LogIgnored(map[string]string{"purpose": "launch_agent"})
	if info.Len() != 0 {
		t.Fatalf("expected no output at info level, got %q", info.String())
	}

	var debug bytes.Buffer
	logger, err = New(&debug, "debug")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.LogIgnored(map[string]string{"stage": "bogus", "purpose": "launch_agent"})
	if !strings.Contains(debug.String(), `msg=completion.ignored tags="purpose=launch_agent,stage=bogus"`) {
		t.Fatalf("unexpected debug output %q", debug.String())
	}
}

// TestLoggerPaneEvents covers pane open and failure records.
func TestLoggerPaneEvents(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.LogPaneOpen("command", "/tmp/copy", "claude --flag")
	logger.LogPaneError("terminal", errors.New("boom"))
	logger.LogPaneError("terminal", nil)

	output := buf.String()
	if !strings.Contains(output, `msg=pane.open dir=/tmp/copy kind=command program="claude --flag"`) {
		t.Fatalf("missing pane.open line in %q", output)
	}
	if !strings.Contains(output, "level=warning msg=pane.error error=boom kind=terminal") {
		t.Fatalf("missing pane.error line in %q", output)
	}
	if strings.Count(output, "pane.error") != 1 {
		t.Fatalf("nil errors should not be logged: %q", output)
	}
}

// TestLoggerRejectsBadLevel verifies level parsing errors surface.
func TestLoggerRejectsBadLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if _, err := New(nil, "info"); err == nil {
		t.Fatal("expected error for nil output")
	}
}

// TestNilLoggerIsNoop ensures callers can skip audit logging.
func TestNilLoggerIsNoop(t *testing.T) {
	var logger *Logger
	logger.LogTransition("idle", "failed")
	logger.LogDispatch("detect_root", nil, ".")
	logger.LogCompletion("detect_root", nil)
	logger.LogIgnored(nil)
	logger.LogPaneOpen("terminal", ".", "")
	logger.LogPaneError("terminal", errors.New("x"))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close on nil logger: %v", err)
	}
}

// TestOpenCreatesLogFile verifies Open creates parent directories and appends.
func TestOpenCreatesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "agentfleet", auditLogFileName)

	for i := 0; i < 2; i++ {
		logger, err := Open(path, "info")
		if err != nil {
			t.Fatalf("open logger: %v", err)
		}
		logger.LogTransition("idle", "launched")
		if err := logger.Close(); err != nil {
			t.Fatalf("close logger: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if count := strings.Count(string(data), EventTransition); count != 2 {
		t.Fatalf("expected 2 appended entries, got %d", count)
	}
}

// TestDefaultPathHonorsXDGStateHome verifies the state directory lookup.
func TestDefaultPathHonorsXDGStateHome(t *testing.T) {
	stateHome := t.TempDir()
	t.Setenv("XDG_STATE_HOME", stateHome)
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath error: %v", err)
	}
	if path != filepath.Join(stateHome, "agentfleet", "audit.log") {
		t.Fatalf("DefaultPath = %q", path)
	}

	home := t.TempDir()
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", home)
	path, err = DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath error: %v", err)
	}
	if path != filepath.Join(home, ".local", "state", "agentfleet", "audit.log") {
		t.Fatalf("DefaultPath = %q", path)
	}
}
