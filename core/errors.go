package core

import (
	"fmt"
	"strings"
)

// ValidationError reports tool arguments that violate the declared schema.
// It is caller-fixable and surfaced verbatim.
type ValidationError struct {
	Tool   string
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("invalid arguments for %s: %s (%s)", e.Tool, strings.Join(e.Fields, ", "), e.Reason)
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, e.Reason)
}

// NotFoundError reports an unknown tool name or entity id.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Kind, e.Name)
}

// InternalError wraps an unexpected failure from a tool implementation or
// an upstream provider. It is logged and surfaced generically.
type InternalError struct {
	Tool string
	Err  error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }
