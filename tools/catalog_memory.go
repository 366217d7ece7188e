package tools

import (
	"context"

	"github.com/citadelhq/citadel-go/core"
)

// MemoryTools returns the store-backed memory tools.
func MemoryTools(d Deps) []core.Tool {
	return []core.Tool{
		New("memory.put").
			Description("Store memory item.").
			Schema(ObjectSchema(map[string]core.Property{
				"content":         StringProperty("Fact or note to remember"),
				"tags":            ArrayProperty("Optional tags"),
				"conversation_id": StringProperty("Optional conversation to scope the item to"),
			}, "content")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Store.MemoryPut(ctx,
					args.String("content", ""),
					args.StringSlice("tags"),
					args.String("conversation_id", ""))
			}).
			Build(),

		New("memory.search").
			Description("Search stored memory items.").
			Schema(ObjectSchema(map[string]core.Property{
				"query":           StringProperty("Search terms"),
				"limit":           IntegerProperty("Maximum items to return (default: 8)"),
				"conversation_id": StringProperty("Optional conversation filter"),
			}, "query")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				items, err := d.Store.MemorySearch(ctx,
					args.String("query", ""),
					args.Int("limit", 8),
					args.String("conversation_id", ""))
				if err != nil {
					return nil, err
				}
				return map[string]any{"items": items}, nil
			}).
			Build(),
	}
}
