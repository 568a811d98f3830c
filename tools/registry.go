package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/panics"
)

var (
	ErrEmptyToolName = errors.New("tools: tool name is empty")
	ErrDuplicateTool = errors.New("tools: duplicate tool name")
)

// Registry holds the tools available to an agent. It is built once and never
// mutated afterwards, so it can be shared between concurrent episodes.
type Registry struct {
	order []Tool
	tools map[string]Tool
}

// NewRegistry creates a registry from the given tools, keeping their order
// for the prompt catalog.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		order: make([]Tool, 0, len(tools)),
		tools: make(map[string]Tool, len(tools)),
	}
	for _, tool := range tools {
		name := tool.Name()
		if strings.TrimSpace(name) == "" {
			return nil, ErrEmptyToolName
		}
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, name)
		}
		r.tools[name] = tool
		r.order = append(r.order, tool)
	}
	return r, nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// All returns all registered tools in registration order.
func (r *Registry) All() []Tool {
	result := make([]Tool, len(r.order))
	copy(result, r.order)
	return result
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, tool := range r.order {
		names = append(names, tool.Name())
	}
	return names
}

// Invoke runs the named tool. found is false when no such tool exists. A
// panicking tool is contained and reported as an observation.
func (r *Registry) Invoke(ctx context.Context, name, input string) (observation string, found bool) {
	tool, ok := r.tools[name]
	if !ok {
		return "", false
	}

	var pc panics.Catcher
	pc.Try(func() {
		observation = tool.Invoke(ctx, input)
	})
	if rec := pc.Recovered(); rec != nil {
		return fmt.Sprintf("Error: %s panicked: %v", name, rec.Value), true
	}
	return observation, true
}
