package tools

import (
	"fmt"
	"math"
	"strings"

	"github.com/citadelhq/citadel-go/core"
)

// ObjectSchema builds an input schema from properties and the required
// subset of their names.
func ObjectSchema(props map[string]core.Property, required ...string) core.InputSchema {
	if props == nil {
		props = map[string]core.Property{}
	}
	return core.InputSchema{Properties: props, Required: required}
}

// StringProperty declares a string argument.
func StringProperty(description string) core.Property {
	return core.Property{Type: "string", Description: description}
}

// IntegerProperty declares an integer argument.
func IntegerProperty(description string) core.Property {
	return core.Property{Type: "integer", Description: description}
}

// NumberProperty declares a numeric argument.
func NumberProperty(description string) core.Property {
	return core.Property{Type: "number", Description: description}
}

// BooleanProperty declares a boolean argument.
func BooleanProperty(description string) core.Property {
	return core.Property{Type: "boolean", Description: description}
}

// ArrayProperty declares an array argument.
func ArrayProperty(description string) core.Property {
	return core.Property{Type: "array", Description: description}
}

// ObjectProperty declares an object argument.
func ObjectProperty(description string) core.Property {
	return core.Property{Type: "object", Description: description}
}

// StringEnumProperty declares a string argument restricted to values.
func StringEnumProperty(description string, values ...string) core.Property {
	return core.Property{Type: "string", Description: description, Enum: values}
}

// ValidateArgs checks args against the declared schema: every required
// property must be present (and non-blank for strings), and every present
// declared property must carry its declared JSON type. Unknown argument
// keys are ignored; unknown declared types are treated as strings.
func ValidateArgs(tool string, schema core.InputSchema, args map[string]any) error {
	var missing, badType []string

	for name, prop := range schema.Properties {
		value, ok := args[name]
		required := schema.IsRequired(name)
		if !ok || value == nil {
			if required {
				missing = append(missing, name)
			}
			continue
		}
		if !typeMatches(prop.Type, value) {
			badType = append(badType, name)
			continue
		}
		if required && isBlankString(prop.Type, value) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return &core.ValidationError{Tool: tool, Fields: missing, Reason: "required"}
	}
	if len(badType) > 0 {
		return &core.ValidationError{Tool: tool, Fields: badType, Reason: "wrong type"}
	}
	return nil
}

func typeMatches(declared string, value any) bool {
	switch declared {
	case "integer":
		switch v := value.(type) {
		case int, int32, int64:
			return true
		case float64:
			return v == math.Trunc(v)
		}
		return false
	case "number":
		switch value.(type) {
		case int, int32, int64, float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		// string, and any unknown declared type.
		_, ok := value.(string)
		return ok
	}
}

func isBlankString(declared string, value any) bool {
	switch declared {
	case "integer", "number", "boolean", "array", "object":
		return false
	}
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

// Arguments is a validated argument map with typed accessors.
type Arguments map[string]any

// Has reports whether key is present and non-nil.
func (a Arguments) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns the trimmed string at key, or def when absent or blank.
func (a Arguments) String(key, def string) string {
	if s, ok := a[key].(string); ok {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed
		}
	}
	return def
}

// Int returns the integer at key, or def when absent.
func (a Arguments) Int(key string, def int) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Float returns the number at key, or def when absent.
func (a Arguments) Float(key string, def float64) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Bool returns the boolean at key, or def when absent.
func (a Arguments) Bool(key string, def bool) bool {
	if v, ok := a[key].(bool); ok {
		return v
	}
	return def
}

// StringSlice returns the array at key coerced to strings.
func (a Arguments) StringSlice(key string) []string {
	raw, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		default:
			out = append(out, fmt.Sprintf("%v", v))
		}
	}
	return out
}

// FloatSlice returns the array at key coerced to float64.
func (a Arguments) FloatSlice(key string) []float64 {
	raw, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case float64:
			out = append(out, v)
		case int:
			out = append(out, float64(v))
		case int64:
			out = append(out, float64(v))
		}
	}
	return out
}

// StringMap returns the object at key with string values.
func (a Arguments) StringMap(key string) map[string]string {
	raw, ok := a[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
