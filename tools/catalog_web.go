package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/citadelhq/citadel-go/core"
	"github.com/citadelhq/citadel-go/httpclient"
)

const extractedTextCap = 20000

var webFetchTTL = time.Minute

// browserHeaders mimic a desktop Chrome session for sites that reject
// plain library user agents.
func browserHeaders() map[string]string {
	return map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Cache-Control":   "no-cache",
		"Pragma":          "no-cache",
	}
}

// WebTools returns the web search, fetch, and extraction tools.
func WebTools(d Deps) []core.Tool {
	return []core.Tool{
		New("web.search").
			Description("General web search (DuckDuckGo).").
			Schema(ObjectSchema(map[string]core.Property{
				"query":       StringProperty("Search query"),
				"max_results": IntegerProperty("Maximum results to return (default: 8)"),
			}, "query")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return webSearch(ctx, d, args.String("query", ""), args.Int("max_results", 8))
			}).
			Build(),

		New("web.fetch").
			Description("Fetch HTML from a URL.").
			Schema(ObjectSchema(map[string]core.Property{
				"url":     StringProperty("URL to fetch"),
				"headers": ObjectProperty("Optional extra request headers"),
			}, "url")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				headers := map[string]string{"User-Agent": d.UserAgent}
				for k, v := range args.StringMap("headers") {
					headers[k] = v
				}
				return webFetch(ctx, d, args.String("url", ""), headers)
			}).
			Build(),

		New("web.fetch_browser").
			Description("Fetch HTML using browser-like headers.").
			Schema(ObjectSchema(map[string]core.Property{
				"url":     StringProperty("URL to fetch"),
				"headers": ObjectProperty("Optional extra request headers"),
			}, "url")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				headers := browserHeaders()
				for k, v := range args.StringMap("headers") {
					headers[k] = v
				}
				return webFetch(ctx, d, args.String("url", ""), headers)
			}).
			Build(),

		New("web.extract").
			Description("Extract main text from HTML.").
			Schema(ObjectSchema(map[string]core.Property{
				"html": StringProperty("HTML document to extract text from"),
			}, "html")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return ExtractText(args.String("html", ""))
			}).
			Build(),
	}
}

func webSearch(ctx context.Context, d Deps, query string, maxResults int) (any, error) {
	if maxResults <= 0 {
		maxResults = 8
	}
	resp, err := d.HTTP.Post(ctx, "https://duckduckgo.com/html/", &httpclient.Options{
		FormData: map[string]string{"q": query},
		Headers:  map[string]string{"User-Agent": d.UserAgent},
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, fmt.Errorf("web search: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Text()))
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	var results []map[string]any
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find("a.result__a").First()
		if link.Length() == 0 {
			return true
		}
		snippet := s.Find("a.result__snippet").First()
		if snippet.Length() == 0 {
			snippet = s.Find("div.result__snippet").First()
		}
		href, _ := link.Attr("href")
		results = append(results, map[string]any{
			"title": strings.TrimSpace(link.Text()),
			"href":  href,
			"body":  strings.TrimSpace(snippet.Text()),
		})
		return len(results) < maxResults
	})
	return results, nil
}

func webFetch(ctx context.Context, d Deps, url string, headers map[string]string) (any, error) {
	resp, err := d.HTTP.Get(ctx, url, &httpclient.Options{
		Headers:  headers,
		CacheTTL: &webFetchTTL,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return map[string]any{
		"url":         resp.URL,
		"status_code": resp.StatusCode,
		"text":        resp.Text(),
	}, nil
}

// ExtractText strips scripts and markup from html and returns the
// collapsed visible text, capped to keep tool results model-sized.
func ExtractText(html string) (map[string]any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if len(text) > extractedTextCap {
		text = text[:extractedTextCap]
	}
	return map[string]any{"text": text}, nil
}
