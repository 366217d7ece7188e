// Package core defines the shared contracts between the tool catalog,
// the dispatcher, and the agent engine.
package core

import "context"

// Property describes a single declared argument of a tool.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// InputSchema is the JSON-Schema-like contract a tool declares for its
// arguments: property names with declared types and the required subset.
type InputSchema struct {
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// IsRequired reports whether name is listed in the required subset.
func (s InputSchema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Tool is a callable capability exposed to the model.
// Implementations must be safe for concurrent use.
type Tool interface {
	Name() string
	Description() string
	Schema() InputSchema
	Call(ctx context.Context, args map[string]any) (any, error)
}
