// Package tools provides the tool interface, the registry, and the adapters
// the agent can call.
package tools

import "context"

// Tool defines the interface that all tools must implement.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a usage hint shown to the model.
	Description() string

	// Invoke runs the tool with the raw text the model supplied as its
	// Action Input. Failures are reported in the returned text; Invoke never
	// returns an error.
	Invoke(ctx context.Context, input string) string
}
