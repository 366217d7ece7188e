package tools

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/citadelhq/citadel-go/core"
	"github.com/citadelhq/citadel-go/httpclient"
)

var (
	quoteTTL   = time.Minute
	historyTTL = 5 * time.Minute
	fxTTL      = 5 * time.Minute
	cryptoTTL  = 2 * time.Minute
)

var coingeckoIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"ADA":  "cardano",
	"XRP":  "ripple",
	"DOGE": "dogecoin",
	"USDT": "tether",
	"BNB":  "binancecoin",
}

// MarketTools returns the global market data tools backed by free
// sources, with Alpha Vantage as the quote fallback when configured.
func MarketTools(d Deps) []core.Tool {
	return []core.Tool{
		New("market.quote").
			Description("Fetch near-real-time quotes from free sources.").
			Schema(ObjectSchema(map[string]core.Property{
				"symbol": StringProperty("Ticker symbol, e.g. AAPL or aapl.us"),
			}, "symbol")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return marketQuote(ctx, d, args.String("symbol", ""))
			}).
			Build(),

		New("market.history").
			Description("Fetch historical OHLCV from free sources.").
			Schema(ObjectSchema(map[string]core.Property{
				"symbol": StringProperty("Ticker symbol"),
				"start":  StringProperty("Start date YYYY-MM-DD"),
				"end":    StringProperty("End date YYYY-MM-DD"),
				"limit":  IntegerProperty("Maximum rows, newest kept (default: 500)"),
			}, "symbol")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return marketHistory(ctx, d, args.String("symbol", ""),
					args.String("start", ""), args.String("end", ""), args.Int("limit", 500))
			}).
			Build(),

		New("market.fx").
			Description("Fetch FX rates from free sources.").
			Schema(ObjectSchema(map[string]core.Property{
				"pair": StringProperty("Currency pair, e.g. USD/NPR or EURUSD"),
			}, "pair")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return marketFX(ctx, d, args.String("pair", ""))
			}).
			Build(),

		New("market.crypto").
			Description("Fetch crypto prices from free sources.").
			Schema(ObjectSchema(map[string]core.Property{
				"symbol":      StringProperty("Crypto symbol, e.g. BTC"),
				"vs_currency": StringProperty("Quote currency (default: usd)"),
			}, "symbol")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return marketCrypto(ctx, d, args.String("symbol", ""), args.String("vs_currency", "usd"))
			}).
			Build(),
	}
}

// normalizeStooqSymbol appends the .us suffix Stooq expects for bare US
// tickers.
func normalizeStooqSymbol(symbol string) string {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".us"
}

func marketQuote(ctx context.Context, d Deps, symbol string) (any, error) {
	symbol = normalizeStooqSymbol(symbol)
	url := fmt.Sprintf("https://stooq.com/q/l/?s=%s&f=sd2t2ohlcv&h&e=csv", symbol)
	resp, err := d.HTTP.Get(ctx, url, &httpclient.Options{CacheTTL: &quoteTTL})
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, fmt.Errorf("stooq quote: status %d", resp.StatusCode)
	}

	lines := strings.Split(strings.TrimSpace(resp.Text()), "\n")
	if len(lines) < 2 {
		return map[string]any{"symbol": symbol, "error": "no_data"}, nil
	}
	header := strings.Split(strings.TrimSpace(lines[0]), ",")
	values := strings.Split(strings.TrimSpace(lines[1]), ",")
	for _, v := range values {
		if v == "N/A" || v == "N/D" {
			return map[string]any{"symbol": symbol, "error": "no_data"}, nil
		}
	}
	row := zipCSV(header, values)

	close_ := safeFloat(row["Close"])
	out := map[string]any{
		"symbol": textOr(row["Symbol"], symbol),
		"date":   row["Date"],
		"time":   row["Time"],
		"open":   safeFloat(row["Open"]),
		"high":   safeFloat(row["High"]),
		"low":    safeFloat(row["Low"]),
		"close":  close_,
		"volume": int64(safeFloat(row["Volume"])),
		"source": "stooq",
	}
	if close_ == 0 && d.AlphaVantageKey != "" {
		return alphaQuote(ctx, d, strings.TrimSuffix(symbol, ".us"))
	}
	return out, nil
}

func marketHistory(ctx context.Context, d Deps, symbol, start, end string, limit int) (any, error) {
	symbol = normalizeStooqSymbol(symbol)
	url := fmt.Sprintf("https://stooq.com/q/d/l/?s=%s&i=d", symbol)
	resp, err := d.HTTP.Get(ctx, url, &httpclient.Options{CacheTTL: &historyTTL})
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, fmt.Errorf("stooq history: status %d", resp.StatusCode)
	}

	lines := strings.Split(strings.TrimSpace(resp.Text()), "\n")
	var rows []map[string]any
	if len(lines) >= 2 {
		header := strings.Split(strings.TrimSpace(lines[0]), ",")
		for _, line := range lines[1:] {
			parts := strings.Split(strings.TrimSpace(line), ",")
			if len(parts) != len(header) {
				continue
			}
			row := zipCSV(header, parts)
			date := row["Date"]
			if date == "" || (start != "" && date < start) || (end != "" && date > end) {
				continue
			}
			rows = append(rows, map[string]any{
				"date":   date,
				"open":   safeFloat(row["Open"]),
				"high":   safeFloat(row["High"]),
				"low":    safeFloat(row["Low"]),
				"close":  safeFloat(row["Close"]),
				"volume": int64(safeFloat(row["Volume"])),
			})
		}
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	if len(rows) == 0 && d.AlphaVantageKey != "" {
		return alphaHistory(ctx, d, strings.TrimSuffix(symbol, ".us"), start, end, limit)
	}
	return map[string]any{"symbol": symbol, "data": rows, "source": "stooq"}, nil
}

func marketFX(ctx context.Context, d Deps, pair string) (any, error) {
	cleaned := strings.ToUpper(strings.ReplaceAll(pair, "/", ""))
	if len(cleaned) != 6 {
		return map[string]any{"pair": pair, "error": "invalid_pair"}, nil
	}
	base, quote := cleaned[:3], cleaned[3:]

	resp, err := d.HTTP.Get(ctx, "https://open.er-api.com/v6/latest/"+base,
		&httpclient.Options{CacheTTL: &fxTTL})
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, fmt.Errorf("fx rates: status %d", resp.StatusCode)
	}

	var payload struct {
		Rates             map[string]float64 `json:"rates"`
		TimeLastUpdateUTC string             `json:"time_last_update_utc"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}
	rate, ok := payload.Rates[quote]
	if !ok {
		return map[string]any{"pair": pair, "error": "rate_not_found"}, nil
	}
	return map[string]any{
		"pair":                 base + "/" + quote,
		"rate":                 rate,
		"time_last_update_utc": payload.TimeLastUpdateUTC,
		"source":               "open.er-api.com",
	}, nil
}

func marketCrypto(ctx context.Context, d Deps, symbol, vsCurrency string) (any, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	coinID, ok := coingeckoIDs[sym]
	if !ok {
		return map[string]any{"symbol": sym, "error": "unsupported_symbol"}, nil
	}
	vsCurrency = strings.ToLower(strings.TrimSpace(vsCurrency))
	if vsCurrency == "" {
		vsCurrency = "usd"
	}

	resp, err := d.HTTP.Get(ctx, "https://api.coingecko.com/api/v3/simple/price", &httpclient.Options{
		Params:   map[string]string{"ids": coinID, "vs_currencies": vsCurrency},
		CacheTTL: &cryptoTTL,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, fmt.Errorf("coingecko: status %d", resp.StatusCode)
	}

	var payload map[string]map[string]float64
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}
	price, ok := payload[coinID][vsCurrency]
	if !ok {
		return map[string]any{"symbol": sym, "error": "price_not_found"}, nil
	}
	return map[string]any{
		"symbol":      sym,
		"price":       price,
		"vs_currency": vsCurrency,
		"source":      "coingecko",
	}, nil
}

func alphaQuote(ctx context.Context, d Deps, symbol string) (any, error) {
	resp, err := d.HTTP.Get(ctx, "https://www.alphavantage.co/query", &httpclient.Options{
		Params: map[string]string{
			"function": "GLOBAL_QUOTE",
			"symbol":   symbol,
			"apikey":   d.AlphaVantageKey,
		},
		CacheTTL: &quoteTTL,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, fmt.Errorf("alpha vantage quote: status %d", resp.StatusCode)
	}

	var payload struct {
		Quote map[string]string `json:"Global Quote"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}
	q := payload.Quote
	return map[string]any{
		"symbol": textOr(q["01. symbol"], symbol),
		"date":   q["07. latest trading day"],
		"time":   nil,
		"open":   safeFloat(q["02. open"]),
		"high":   safeFloat(q["03. high"]),
		"low":    safeFloat(q["04. low"]),
		"close":  safeFloat(q["05. price"]),
		"volume": int64(safeFloat(q["06. volume"])),
		"source": "alpha_vantage",
	}, nil
}

func alphaHistory(ctx context.Context, d Deps, symbol, start, end string, limit int) (any, error) {
	resp, err := d.HTTP.Get(ctx, "https://www.alphavantage.co/query", &httpclient.Options{
		Params: map[string]string{
			"function":   "TIME_SERIES_DAILY_ADJUSTED",
			"symbol":     symbol,
			"outputsize": "compact",
			"apikey":     d.AlphaVantageKey,
		},
		CacheTTL: &historyTTL,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, fmt.Errorf("alpha vantage history: status %d", resp.StatusCode)
	}

	var payload struct {
		Series map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(payload.Series))
	for date := range payload.Series {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var rows []map[string]any
	for _, date := range dates {
		if (start != "" && date < start) || (end != "" && date > end) {
			continue
		}
		values := payload.Series[date]
		rows = append(rows, map[string]any{
			"date":   date,
			"open":   safeFloat(values["1. open"]),
			"high":   safeFloat(values["2. high"]),
			"low":    safeFloat(values["3. low"]),
			"close":  safeFloat(values["4. close"]),
			"volume": int64(safeFloat(values["6. volume"])),
		})
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return map[string]any{"symbol": symbol, "data": rows, "source": "alpha_vantage"}, nil
}

func zipCSV(header, values []string) map[string]string {
	row := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(values) {
			row[strings.TrimSpace(h)] = strings.TrimSpace(values[i])
		}
	}
	return row
}

// safeFloat parses provider numerics, treating placeholder markers as
// zero.
func safeFloat(s string) float64 {
	cleaned := strings.ToUpper(strings.TrimSpace(s))
	switch cleaned {
	case "", "N/A", "N/D", "NA", "ND", "-":
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func textOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
