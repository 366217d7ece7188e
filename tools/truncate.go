package tools

// Tool results that mirror whole exchange lists can dwarf the model
// context, so list-shaped outputs are wrapped and bounded before they
// leave the catalog.

const (
	listLimit      = 200
	sectorMapLimit = 50
)

// TruncateRows wraps rows in an envelope bounded to limit entries, with
// annotations telling the model whether rows were dropped.
func TruncateRows(rows []map[string]any, limit int) map[string]any {
	truncated := len(rows) > limit
	if truncated {
		rows = rows[:limit]
	}
	return map[string]any{
		"items":      rows,
		"_truncated": truncated,
		"_limit":     limit,
	}
}

// TruncateSectorMap bounds each list value of a sector-keyed map to
// limit entries.
func TruncateSectorMap(data map[string]any, limit int) map[string]any {
	out := make(map[string]any, len(data)+2)
	for key, value := range data {
		if list, ok := value.([]any); ok && len(list) > limit {
			out[key] = list[:limit]
		} else {
			out[key] = value
		}
	}
	out["_truncated"] = true
	out["_limit"] = limit
	return out
}
