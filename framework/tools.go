package framework

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Tool defines a capability accessible to the agent. Input and output are
// plain text: the model names a tool and supplies free text, the tool answers
// with free text. The description doubles as prompt material the model reasons
// about when deciding which tool to call.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, input string) (string, error)
}

// ToolRegistry maintains the fixed set of tools for a session. Registration
// happens once at startup; lookups during the loop are read-only.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewToolRegistry builds a registry instance.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeToolName(tool.Name())
	if _, exists := r.tools[key]; exists {
		return fmt.Errorf("tool %s already registered", tool.Name())
	}
	r.tools[key] = tool
	return nil
}

// Get fetches a tool by name. Lookup trims whitespace and ignores case so the
// registry tolerates the variance of model-generated tool names.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[normalizeToolName(name)]
	return tool, ok
}

// Has reports whether a tool name resolves.
func (r *ToolRegistry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// All returns the registered tools sorted by name so prompt rendering stays
// deterministic across runs.
func (r *ToolRegistry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}

// Dispatch resolves and invokes a tool, converting every failure mode into an
// observation string. The loop must always receive text from a tool call: a
// failing tool degrades the conversation instead of crashing the session.
// ok is false only when the name resolves to nothing.
func (r *ToolRegistry) Dispatch(ctx context.Context, name, input string) (string, bool) {
	tool, ok := r.Get(name)
	if !ok {
		return "", false
	}
	out, err := tool.Invoke(ctx, input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	if strings.TrimSpace(out) == "" {
		return "(no output)", true
	}
	return out, true
}

func normalizeToolName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
