package tools

import (
	"context"

	"github.com/citadelhq/citadel-go/core"
)

// NepseTools returns the Nepal Stock Exchange data tools. List-shaped
// endpoints are truncated before they reach the model.
func NepseTools(d Deps) []core.Tool {
	symbolSchema := ObjectSchema(map[string]core.Property{
		"symbol": StringProperty("NEPSE scrip symbol, e.g. NABIL"),
	}, "symbol")
	emptySchema := ObjectSchema(nil)

	listTool := func(name, description string, fetch func(ctx context.Context) ([]map[string]any, error)) core.Tool {
		return New(name).
			Description(description).
			Schema(emptySchema).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				rows, err := fetch(ctx)
				if err != nil {
					return nil, err
				}
				return TruncateRows(rows, listLimit), nil
			}).
			Build()
	}
	rawTool := func(name, description string, fetch func(ctx context.Context) (any, error)) core.Tool {
		return New(name).
			Description(description).
			Schema(emptySchema).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return fetch(ctx)
			}).
			Build()
	}

	return []core.Tool{
		New("nepse.company_details").
			Description("Fetch NEPSE company details by symbol.").
			Schema(symbolSchema).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Nepse.CompanyDetails(ctx, args.String("symbol", ""))
			}).
			Build(),

		New("nepse.symbol_snapshot").
			Description("Fetch compact NEPSE snapshot for a symbol.").
			Schema(symbolSchema).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Nepse.SymbolSnapshot(ctx, args.String("symbol", ""))
			}).
			Build(),

		New("nepse.price_volume_history").
			Description("Fetch NEPSE price volume history by symbol.").
			Schema(symbolSchema).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				rows, err := d.Nepse.PriceVolumeHistory(ctx, args.String("symbol", ""))
				if err != nil {
					return nil, err
				}
				return TruncateRows(rows, listLimit), nil
			}).
			Build(),

		listTool("nepse.price_volume", "Fetch NEPSE price/volume list.", d.Nepse.PriceVolume),
		listTool("nepse.live_market", "Fetch NEPSE live market data.", d.Nepse.LiveMarket),
		listTool("nepse.top_gainers", "Fetch NEPSE top gainers.", d.Nepse.TopGainers),
		listTool("nepse.top_losers", "Fetch NEPSE top losers.", d.Nepse.TopLosers),
		listTool("nepse.top_trade_scrips", "Fetch NEPSE top trade scrips.", d.Nepse.TopTradeScrips),
		listTool("nepse.top_transaction_scrips", "Fetch NEPSE top transaction scrips.", d.Nepse.TopTransactionScrips),
		listTool("nepse.top_turnover_scrips", "Fetch NEPSE top turnover scrips.", d.Nepse.TopTurnoverScrips),
		listTool("nepse.company_list", "Fetch NEPSE company list.", d.Nepse.CompanyList),
		listTool("nepse.security_list", "Fetch NEPSE security list.", d.Nepse.SecurityList),

		rawTool("nepse.summary", "Fetch NEPSE market summary.", d.Nepse.Summary),
		rawTool("nepse.index", "Fetch NEPSE main index data.", d.Nepse.Index),
		rawTool("nepse.subindices", "Fetch NEPSE sub-index data.", d.Nepse.SubIndices),
		rawTool("nepse.is_open", "Fetch NEPSE market open status.", d.Nepse.IsOpen),

		New("nepse.sector_scrips").
			Description("Fetch NEPSE sector scrips list.").
			Schema(emptySchema).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				data, err := d.Nepse.SectorScrips(ctx)
				if err != nil {
					return nil, err
				}
				return TruncateSectorMap(data, sectorMapLimit), nil
			}).
			Build(),
	}
}
