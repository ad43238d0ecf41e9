package stage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Registry tracks stage-tagged commands that are still awaiting completion.
// A completion is accepted at most once: Take removes the token it matches.
type Registry struct {
	pending  map[string]Stage
	newToken func() string
}

// NewRegistry builds an empty registry issuing random UUID tokens.
func NewRegistry() *Registry {
	return &Registry{
		pending:  map[string]Stage{},
		newToken: func() string { return uuid.NewString() },
	}
}

// NewRegistryWithTokens builds a registry using the supplied token generator.
func NewRegistryWithTokens(newToken func() string) *Registry {
	registry := NewRegistry()
	if newToken != nil {
		registry.newToken = newToken
	}
	return registry
}

// Issue records a pending stage and returns the tags to dispatch with it.
func (registry *Registry) Issue(stage Stage) (Context, error) {
	if registry == nil {
		return nil, errors.New("stage registry is nil")
	}
	if _, ok := ParseStage(string(stage)); !ok {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
	token := registry.newToken()
	if token == "" {
		return nil, errors.New("stage token is required")
	}
	if _, exists := registry.pending[token]; exists {
		return nil, fmt.Errorf("stage token %q already pending", token)
	}
	registry.pending[token] = stage
	return Context{
		KeyStage: string(stage),
		KeyToken: token,
	}, nil
}

// Take resolves a completion's tags to the pending stage that issued it.
// Missing tokens, unknown tokens, and stage tags that disagree with the
// pending entry all report false and leave the registry untouched.
func (registry *Registry) Take(ctx Context) (Stage, bool) {
	if registry == nil {
		return "", false
	}
	token, ok := ctx.Token()
	if !ok {
		return "", false
	}
	pending, ok := registry.pending[token]
	if !ok {
		return "", false
	}
	tagged, ok := ctx.Stage()
	if !ok || tagged != pending {
		return "", false
	}
	delete(registry.pending, token)
	return pending, true
}

// Reset forgets every pending stage.
func (registry *Registry) Reset() {
	if registry == nil {
		return
	}
	registry.pending = map[string]Stage{}
}

// Len reports how many stage-tagged commands are outstanding.
func (registry *Registry) Len() int {
	if registry == nil {
		return 0
	}
	return len(registry.pending)
}

// Tokens returns the outstanding tokens in sorted order.
func (registry *Registry) Tokens() []string {
	if registry == nil || len(registry.pending) == 0 {
		return []string{}
	}
	tokens := make([]string, 0, len(registry.pending))
	for token := range registry.pending {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
