// Package stage defines the tags attached to dispatched commands and the
// registry that correlates asynchronous completions with workflow stages.
package stage

import "sort"

const (
	// KeyStage names the workflow stage that issued a command.
	KeyStage = "stage"
	// KeyPurpose labels informational commands that never drive the workflow.
	KeyPurpose = "purpose"
	// KeyToken carries the correlation token generated at dispatch time.
	KeyToken = "token"
)

// Stage identifies a load-bearing step of the launch workflow.
type Stage string

const (
	// DetectRoot discovers the repository root.
	DetectRoot Stage = "detect_root"
	// CreateCopy creates the isolated working copy.
	CreateCopy Stage = "create_copy"
)

// Purpose labels an informational command or pane.
type Purpose string

const (
	// PurposeCreateCopy tags panes rooted in a freshly created working copy.
	PurposeCreateCopy Purpose = "create_copy"
	// PurposeLaunchAgent tags the pane running the agent program.
	PurposeLaunchAgent Purpose = "launch_agent"
)

// ParseStage maps a tag value onto a known stage.
func ParseStage(value string) (Stage, bool) {
	switch Stage(value) {
	case DetectRoot, CreateCopy:
		return Stage(value), true
	default:
		return "", false
	}
}

// Context is the opaque key/value tag set attached to a dispatched command.
type Context map[string]string

// ForPurpose builds the tag set for an informational command.
func ForPurpose(purpose Purpose) Context {
	return Context{KeyPurpose: string(purpose)}
}

// Stage returns the stage tag when it names a known stage.
func (ctx Context) Stage() (Stage, bool) {
	if ctx == nil {
		return "", false
	}
	return ParseStage(ctx[KeyStage])
}

// Purpose returns the purpose tag when present.
func (ctx Context) Purpose() (Purpose, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx[KeyPurpose]
	if !ok || value == "" {
		return "", false
	}
	return Purpose(value), true
}

// Token returns the correlation token when present.
func (ctx Context) Token() (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx[KeyToken]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Clone copies the tag set so callers cannot alias dispatched tags.
func (ctx Context) Clone() Context {
	if ctx == nil {
		return nil
	}
	clone := make(Context, len(ctx))
	for key, value := range ctx {
		clone[key] = value
	}
	return clone
}

// Keys returns the tag keys in sorted order.
func (ctx Context) Keys() []string {
	keys := make([]string, 0, len(ctx))
	for key := range ctx {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
