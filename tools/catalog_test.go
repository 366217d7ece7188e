package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesReturns(t *testing.T) {
	returns := seriesReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)

	returns = seriesReturns([]float64{0, 50})
	assert.Equal(t, []float64{0}, returns)

	assert.Empty(t, seriesReturns(nil))
	assert.Empty(t, seriesReturns([]float64{42}))
}

func TestRiskStats(t *testing.T) {
	stats := riskStats([]float64{0.1, -0.2, 0.05})
	assert.InDelta(t, -0.05/3, stats["mean"].(float64), 1e-9)
	assert.Greater(t, stats["volatility"].(float64), 0.0)
	// peak 1.1 after the first gain, trough 0.88 after the drop
	assert.InDelta(t, 0.2, stats["max_drawdown"].(float64), 1e-9)

	empty := riskStats(nil)
	assert.Equal(t, 0.0, empty["volatility"])
	assert.Equal(t, 0.0, empty["mean"])

	single := riskStats([]float64{0.3})
	assert.Equal(t, 0.0, single["volatility"])
	assert.InDelta(t, 0.3, single["mean"].(float64), 1e-9)
}

func TestNormalizeWeights(t *testing.T) {
	out := normalizeWeights([]float64{2, 6})
	assert.Equal(t, []float64{0.25, 0.75}, out["weights"])
	assert.InDelta(t, 1.0, out["sum"].(float64), 1e-9)

	zero := normalizeWeights([]float64{0, 0})
	assert.Equal(t, []float64{0, 0}, zero["weights"])
	assert.Equal(t, 0.0, zero["sum"])
}

func TestScoreSentiment(t *testing.T) {
	out := scoreSentiment("Record profit, strong growth expected.")
	assert.Equal(t, "positive", out["label"])
	assert.Equal(t, 3, out["positive_hits"])

	out = scoreSentiment("Earnings miss triggers a weak outlook and bearish calls.")
	assert.Equal(t, "negative", out["label"])

	out = scoreSentiment("The board met on Tuesday.")
	assert.Equal(t, "neutral", out["label"])
	assert.Equal(t, 0, out["score"])
}

func TestExtractText(t *testing.T) {
	html := `<html><head><style>p{color:red}</style></head>
		<body><script>var x=1;</script><p>NABIL   posts  record
		profit</p><noscript>enable js</noscript></body></html>`

	out, err := ExtractText(html)
	require.NoError(t, err)
	assert.Equal(t, "NABIL posts record profit", out["text"])
}

func TestNormalizeStooqSymbol(t *testing.T) {
	assert.Equal(t, "aapl.us", normalizeStooqSymbol(" AAPL "))
	assert.Equal(t, "cdr.pl", normalizeStooqSymbol("CDR.PL"))
}

func TestSafeFloat(t *testing.T) {
	assert.Equal(t, 12.5, safeFloat("12.5"))
	assert.Equal(t, 0.0, safeFloat("N/A"))
	assert.Equal(t, 0.0, safeFloat("-"))
	assert.Equal(t, 0.0, safeFloat("not a number"))
}

func TestTruncateRows(t *testing.T) {
	rows := make([]map[string]any, 5)
	for i := range rows {
		rows[i] = map[string]any{"i": i}
	}

	out := TruncateRows(rows, 3)
	assert.Equal(t, true, out["_truncated"])
	assert.Equal(t, 3, out["_limit"])
	assert.Len(t, out["items"], 3)

	out = TruncateRows(rows, 10)
	assert.Equal(t, false, out["_truncated"])
	assert.Len(t, out["items"], 5)
}

func TestTruncateSectorMap(t *testing.T) {
	data := map[string]any{
		"Commercial Banks": []any{"NABIL", "NICA", "SCB"},
		"meta":             "unchanged",
	}
	out := TruncateSectorMap(data, 2)
	assert.Len(t, out["Commercial Banks"], 2)
	assert.Equal(t, "unchanged", out["meta"])
	assert.Equal(t, true, out["_truncated"])
	assert.Equal(t, 2, out["_limit"])
}

func TestCatalogNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, tool := range Catalog(Deps{}) {
		require.False(t, seen[tool.Name()], "duplicate tool name %s", tool.Name())
		seen[tool.Name()] = true
		assert.NotEmpty(t, tool.Description(), tool.Name())
	}
	assert.True(t, seen["nepse.symbol_snapshot"])
	assert.True(t, seen["paper.trade_propose"])
	assert.True(t, seen["market.quote"])
}
