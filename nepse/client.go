// Package nepse fetches Nepal Stock Exchange data from the configured
// NEPSE API service. Payloads are provider-shaped JSON and are passed
// through untyped.
package nepse

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/citadelhq/citadel-go/httpclient"
)

// Client wraps the NEPSE API endpoints.
type Client struct {
	http *httpclient.Client
	base string
	log  zerolog.Logger
}

// NewClient creates a client for the API rooted at base.
func NewClient(http *httpclient.Client, base string, log zerolog.Logger) *Client {
	return &Client{
		http: http,
		base: strings.TrimRight(base, "/"),
		log:  log.With().Str("component", "nepse").Logger(),
	}
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base + path
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, ttl time.Duration, v any) error {
	resp, err := c.http.Get(ctx, c.url(path), &httpclient.Options{Params: params, CacheTTL: &ttl})
	if err != nil {
		return err
	}
	if !resp.Success() {
		return fmt.Errorf("nepse %s: status %d", path, resp.StatusCode)
	}
	return resp.JSON(v)
}

// CompanyDetails fetches company metadata for a symbol.
func (c *Client) CompanyDetails(ctx context.Context, symbol string) (map[string]any, error) {
	var out map[string]any
	err := c.get(ctx, "/CompanyDetails", map[string]string{"symbol": symbol}, time.Minute, &out)
	return out, err
}

// PriceVolume fetches the market-wide price/volume list.
func (c *Client) PriceVolume(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "/PriceVolume", nil, 30*time.Second, &out)
	return out, err
}

// LiveMarket fetches the live market list.
func (c *Client) LiveMarket(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "/LiveMarket", nil, 15*time.Second, &out)
	return out, err
}

// Summary fetches the market summary.
func (c *Client) Summary(ctx context.Context) (any, error) {
	var out any
	err := c.get(ctx, "/Summary", nil, 30*time.Second, &out)
	return out, err
}

// Index fetches the main NEPSE index.
func (c *Client) Index(ctx context.Context) (any, error) {
	var out any
	err := c.get(ctx, "/NepseIndex", nil, 30*time.Second, &out)
	return out, err
}

// SubIndices fetches the sector sub-indices.
func (c *Client) SubIndices(ctx context.Context) (any, error) {
	var out any
	err := c.get(ctx, "/NepseSubIndices", nil, 30*time.Second, &out)
	return out, err
}

// IsOpen fetches the market open status.
func (c *Client) IsOpen(ctx context.Context) (any, error) {
	var out any
	err := c.get(ctx, "/IsNepseOpen", nil, 15*time.Second, &out)
	return out, err
}

// TopGainers fetches the top gainer list.
func (c *Client) TopGainers(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "/TopGainers", nil, 30*time.Second, &out)
	return out, err
}

// TopLosers fetches the top loser list.
func (c *Client) TopLosers(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "/TopLosers", nil, 30*time.Second, &out)
	return out, err
}

// TopTradeScrips fetches the top scrips by trade count.
func (c *Client) TopTradeScrips(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "/TopTenTradeScrips", nil, 30*time.Second, &out)
	return out, err
}

// TopTransactionScrips fetches the top scrips by transactions.
func (c *Client) TopTransactionScrips(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "/TopTenTransactionScrips", nil, 30*time.Second, &out)
	return out, err
}

// TopTurnoverScrips fetches the top scrips by turnover.
func (c *Client) TopTurnoverScrips(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "/TopTenTurnoverScrips", nil, 30*time.Second, &out)
	return out, err
}

// CompanyList fetches the listed company list.
func (c *Client) CompanyList(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "/CompanyList", nil, time.Hour, &out)
	return out, err
}

// SecurityList fetches the security list.
func (c *Client) SecurityList(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "/SecurityList", nil, time.Hour, &out)
	return out, err
}

// SectorScrips fetches scrip symbols grouped by sector.
func (c *Client) SectorScrips(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.get(ctx, "/SectorScrips", nil, time.Hour, &out)
	return out, err
}

// PriceVolumeHistory fetches the per-symbol price/volume history.
func (c *Client) PriceVolumeHistory(ctx context.Context, symbol string) ([]map[string]any, error) {
	var out []map[string]any
	err := c.get(ctx, "/PriceVolumeHistory", map[string]string{"symbol": symbol}, 5*time.Minute, &out)
	return out, err
}

// SymbolSnapshot composes a compact per-symbol view from the live market,
// price/volume, and company detail endpoints.
func (c *Client) SymbolSnapshot(ctx context.Context, symbol string) (map[string]any, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	live, err := c.LiveMarket(ctx)
	if err != nil {
		return nil, err
	}
	liveRow := findSymbol(live, sym)

	prices, err := c.PriceVolume(ctx)
	if err != nil {
		return nil, err
	}
	priceRow := findSymbol(prices, sym)

	details, err := c.CompanyDetails(ctx, sym)
	if err != nil {
		return nil, err
	}
	daily, _ := details["securityDailyTradeDto"].(map[string]any)

	return map[string]any{
		"symbol":             sym,
		"companyName":        details["companyName"],
		"sectorName":         details["sectorName"],
		"instrumentType":     details["instrumentType"],
		"lastTradedPrice":    coalesce(liveRow["lastTradedPrice"], priceRow["lastTradedPrice"]),
		"previousClose":      priceRow["previousClose"],
		"percentageChange":   coalesce(liveRow["percentageChange"], priceRow["percentageChange"]),
		"openPrice":          daily["openPrice"],
		"highPrice":          daily["highPrice"],
		"lowPrice":           daily["lowPrice"],
		"totalTrades":        daily["totalTrades"],
		"totalTradeQuantity": coalesce(priceRow["totalTradeQuantity"], daily["totalTradeQuantity"]),
	}, nil
}

// QuotePrice returns the last traded price for a symbol, preferring the
// live market and falling back to the price/volume list. The boolean is
// false when neither source has a price.
func (c *Client) QuotePrice(ctx context.Context, symbol string) (float64, bool) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	if live, err := c.LiveMarket(ctx); err == nil {
		if price, ok := rowPrice(findSymbol(live, sym)); ok {
			return price, true
		}
	} else {
		c.log.Debug().Err(err).Str("symbol", sym).Msg("live market unavailable")
	}

	if prices, err := c.PriceVolume(ctx); err == nil {
		if price, ok := rowPrice(findSymbol(prices, sym)); ok {
			return price, true
		}
	} else {
		c.log.Debug().Err(err).Str("symbol", sym).Msg("price volume unavailable")
	}

	return 0, false
}

func findSymbol(rows []map[string]any, symbol string) map[string]any {
	for _, row := range rows {
		if s, ok := row["symbol"].(string); ok && s == symbol {
			return row
		}
	}
	return map[string]any{}
}

func rowPrice(row map[string]any) (float64, bool) {
	return asFloat(row["lastTradedPrice"])
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func coalesce(values ...any) any {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}
