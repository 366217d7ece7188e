package tools

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/citadelhq/citadel-go/core"
)

// CalcTools returns the pure numeric analysis tools.
func CalcTools() []core.Tool {
	return []core.Tool{
		New("calc.returns").
			Description("Calculate returns for a price series.").
			Schema(ObjectSchema(map[string]core.Property{
				"prices": ArrayProperty("Price series, oldest first"),
			}, "prices")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return map[string]any{"returns": seriesReturns(args.FloatSlice("prices"))}, nil
			}).
			Build(),

		New("calc.risk").
			Description("Calculate volatility, mean return, and max drawdown.").
			Schema(ObjectSchema(map[string]core.Property{
				"returns": ArrayProperty("Return series, oldest first"),
			}, "returns")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return riskStats(args.FloatSlice("returns")), nil
			}).
			Build(),

		New("calc.portfolio").
			Description("Normalize portfolio weights.").
			Schema(ObjectSchema(map[string]core.Property{
				"weights": ArrayProperty("Raw portfolio weights"),
			}, "weights")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return normalizeWeights(args.FloatSlice("weights")), nil
			}).
			Build(),
	}
}

func seriesReturns(prices []float64) []float64 {
	returns := make([]float64, 0, max(len(prices)-1, 0))
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (prices[i]-prev)/prev)
	}
	return returns
}

func riskStats(returns []float64) map[string]any {
	if len(returns) == 0 {
		return map[string]any{"volatility": 0.0, "mean": 0.0, "max_drawdown": 0.0}
	}
	mean := stat.Mean(returns, nil)
	volatility := 0.0
	if len(returns) > 1 {
		volatility = stat.StdDev(returns, nil)
	}

	cumulative, peak, maxDD := 1.0, 1.0, 0.0
	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
		}
		if dd := (peak - cumulative) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return map[string]any{"volatility": volatility, "mean": mean, "max_drawdown": maxDD}
}

func normalizeWeights(weights []float64) map[string]any {
	if len(weights) == 0 {
		return map[string]any{"weights": []float64{}, "sum": 0.0}
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	normalized := make([]float64, len(weights))
	sum := 0.0
	if total != 0 {
		for i, w := range weights {
			normalized[i] = w / total
			sum += normalized[i]
		}
	}
	return map[string]any{"weights": normalized, "sum": sum}
}
