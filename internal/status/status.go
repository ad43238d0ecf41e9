// Package status holds the single human-readable status line shown to the operator.
package status

import (
	"fmt"
	"strings"
)

// Reporter keeps only the latest outcome. Every write replaces the previous
// message; the zero value reports an empty status.
type Reporter struct {
	message string
}

// Set replaces the status message.
func (reporter *Reporter) Set(message string) {
	if reporter == nil {
		return
	}
	reporter.message = message
}

// Succeed replaces the status with a formatted success message.
func (reporter *Reporter) Succeed(format string, args ...any) {
	reporter.Set(fmt.Sprintf(format, args...))
}

// Fail replaces the status with "<prefix>: <detail>", trimming the detail.
// A blank detail leaves just the prefix.
func (reporter *Reporter) Fail(prefix string, detail string) {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		reporter.Set(prefix)
		return
	}
	reporter.Set(fmt.Sprintf("%s: %s", prefix, detail))
}

// String returns the current status message.
func (reporter *Reporter) String() string {
	if reporter == nil {
		return ""
	}
	return reporter.message
}

// Empty reports whether no outcome has been recorded yet.
func (reporter *Reporter) Empty() bool {
	return reporter.String() == ""
}
