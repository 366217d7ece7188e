// Package dispatch runs model-requested tool calls through a single
// trust boundary: name resolution, schema validation, then the handler.
package dispatch

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/citadelhq/citadel-go/core"
	"github.com/citadelhq/citadel-go/tools"
)

// Registry resolves tool names to tools.
type Registry interface {
	Get(name string) (core.Tool, bool)
}

// Dispatcher validates and executes tool calls.
type Dispatcher struct {
	registry Registry
	log      zerolog.Logger
}

// New creates a Dispatcher over registry.
func New(registry Registry, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		log:      log.With().Str("component", "dispatch").Logger(),
	}
}

// Dispatch executes the named tool against args. Arguments are checked
// against the tool's declared schema before the handler runs, whatever
// the caller already validated. Handler failures surface as
// *core.InternalError unless they are already taxonomy errors.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	tool, ok := d.registry.Get(name)
	if !ok {
		return nil, &core.NotFoundError{Kind: "tool", Name: name}
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := tools.ValidateArgs(name, tool.Schema(), args); err != nil {
		d.log.Debug().Str("tool", name).Err(err).Msg("rejected arguments")
		return nil, err
	}

	result, err := tool.Call(ctx, args)
	if err != nil {
		var validation *core.ValidationError
		var notFound *core.NotFoundError
		var internal *core.InternalError
		if errors.As(err, &validation) || errors.As(err, &notFound) || errors.As(err, &internal) {
			return nil, err
		}
		d.log.Warn().Str("tool", name).Err(err).Msg("tool failed")
		return nil, &core.InternalError{Tool: name, Err: err}
	}
	return result, nil
}
