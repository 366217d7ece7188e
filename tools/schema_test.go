package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citadelhq/citadel-go/core"
)

func TestValidateArgsMissingRequired(t *testing.T) {
	schema := ObjectSchema(map[string]core.Property{
		"symbol": StringProperty("ticker symbol"),
		"limit":  IntegerProperty("max rows"),
	}, "symbol")

	err := ValidateArgs("market.quote", schema, map[string]any{"limit": 5})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "market.quote", ve.Tool)
	assert.Equal(t, []string{"symbol"}, ve.Fields)
	assert.Equal(t, "required", ve.Reason)
}

func TestValidateArgsBlankRequiredString(t *testing.T) {
	schema := ObjectSchema(map[string]core.Property{
		"symbol": StringProperty("ticker symbol"),
	}, "symbol")

	err := ValidateArgs("market.quote", schema, map[string]any{"symbol": "   "})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "required", ve.Reason)
}

func TestValidateArgsWrongType(t *testing.T) {
	schema := ObjectSchema(map[string]core.Property{
		"symbol": StringProperty("ticker symbol"),
		"days":   IntegerProperty("lookback"),
	}, "symbol")

	err := ValidateArgs("market.history", schema, map[string]any{
		"symbol": "AAPL",
		"days":   "thirty",
	})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"days"}, ve.Fields)
	assert.Equal(t, "wrong type", ve.Reason)
}

func TestValidateArgsIntegerAcceptsWholeFloat(t *testing.T) {
	schema := ObjectSchema(map[string]core.Property{
		"limit": IntegerProperty("max rows"),
	})

	require.NoError(t, ValidateArgs("t", schema, map[string]any{"limit": float64(20)}))

	err := ValidateArgs("t", schema, map[string]any{"limit": 20.5})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestValidateArgsIgnoresUnknownKeys(t *testing.T) {
	schema := ObjectSchema(map[string]core.Property{
		"symbol": StringProperty("ticker symbol"),
	}, "symbol")

	err := ValidateArgs("t", schema, map[string]any{
		"symbol":  "NABIL",
		"verbose": true,
	})
	require.NoError(t, err)
}

func TestValidateArgsOptionalMayBeAbsent(t *testing.T) {
	schema := ObjectSchema(map[string]core.Property{
		"query": StringProperty("search text"),
		"limit": IntegerProperty("max results"),
	}, "query")

	require.NoError(t, ValidateArgs("web.search", schema, map[string]any{"query": "nepse index"}))
}

func TestArgumentsAccessors(t *testing.T) {
	args := Arguments{
		"name":    " NABIL ",
		"count":   float64(3),
		"ratio":   0.25,
		"flag":    true,
		"symbols": []any{"NABIL", "NICA"},
		"weights": []any{0.6, 0.4},
		"headers": map[string]any{"Accept": "text/csv"},
	}

	assert.Equal(t, "NABIL", args.String("name", ""))
	assert.Equal(t, "fallback", args.String("missing", "fallback"))
	assert.Equal(t, 3, args.Int("count", 0))
	assert.Equal(t, 0.25, args.Float("ratio", 0))
	assert.True(t, args.Bool("flag", false))
	assert.Equal(t, []string{"NABIL", "NICA"}, args.StringSlice("symbols"))
	assert.Equal(t, []float64{0.6, 0.4}, args.FloatSlice("weights"))
	assert.Equal(t, map[string]string{"Accept": "text/csv"}, args.StringMap("headers"))
	assert.True(t, args.Has("flag"))
	assert.False(t, args.Has("missing"))
}

func TestBuilderPanicsWithoutHandler(t *testing.T) {
	assert.Panics(t, func() { New("x").Build() })
	assert.Panics(t, func() {
		New("").Handler(func(ctx context.Context, a Arguments) (any, error) { return nil, nil }).Build()
	})
}
