// Package tools provides the tool builder, the schema helpers, and the
// catalog of concrete tool implementations.
package tools

import (
	"context"

	"github.com/citadelhq/citadel-go/core"
)

// Handler executes a tool against validated arguments.
type Handler func(ctx context.Context, args Arguments) (any, error)

// Builder assembles a core.Tool.
type Builder struct {
	name        string
	description string
	schema      core.InputSchema
	handler     Handler
}

// New starts building a tool with the given dotted name.
func New(name string) *Builder {
	return &Builder{name: name}
}

// Description sets the tool description shown to the model.
func (b *Builder) Description(d string) *Builder {
	b.description = d
	return b
}

// Schema sets the declared input schema.
func (b *Builder) Schema(s core.InputSchema) *Builder {
	b.schema = s
	return b
}

// Handler sets the execution function.
func (b *Builder) Handler(h Handler) *Builder {
	b.handler = h
	return b
}

// Build returns the finished tool. A missing name or handler is a
// programming error and panics at startup.
func (b *Builder) Build() core.Tool {
	if b.name == "" {
		panic("tools: Build without a name")
	}
	if b.handler == nil {
		panic("tools: Build without a handler: " + b.name)
	}
	if b.schema.Properties == nil {
		b.schema.Properties = map[string]core.Property{}
	}
	return &builtTool{
		name:        b.name,
		description: b.description,
		schema:      b.schema,
		handler:     b.handler,
	}
}

type builtTool struct {
	name        string
	description string
	schema      core.InputSchema
	handler     Handler
}

func (t *builtTool) Name() string             { return t.name }
func (t *builtTool) Description() string      { return t.description }
func (t *builtTool) Schema() core.InputSchema { return t.schema }

func (t *builtTool) Call(ctx context.Context, args map[string]any) (any, error) {
	return t.handler(ctx, Arguments(args))
}
