package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citadelhq/citadel-go/dispatch"
	"github.com/citadelhq/citadel-go/engine"
	"github.com/citadelhq/citadel-go/paper"
	"github.com/citadelhq/citadel-go/store"
	"github.com/citadelhq/citadel-go/tools"
)

type fakeEngine struct {
	lastInput *engine.Input
	reply     string
}

func (f *fakeEngine) Run(ctx context.Context, in *engine.Input) (*engine.Output, error) {
	f.lastInput = in
	return &engine.Output{Text: f.reply, TokensUsed: engine.TokenUsage{InputTokens: 10, OutputTokens: 5}}, nil
}

type fixedQuoter struct {
	prices map[string]float64
}

func (q fixedQuoter) QuotePrice(ctx context.Context, symbol string) (float64, bool) {
	price, ok := q.prices[symbol]
	return price, ok
}

type testServer struct {
	*Server
	engine *fakeEngine
	http   *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	st, err := store.New(db, zerolog.Nop())
	require.NoError(t, err)
	ledger, err := paper.NewLedger(db, fixedQuoter{prices: map[string]float64{"NABIL": 500}}, zerolog.Nop())
	require.NoError(t, err)

	registry := engine.NewToolRegistry()
	registry.Register(tools.New("nepse.is_open").
		Description("Fetch NEPSE market open status.").
		Handler(func(ctx context.Context, args tools.Arguments) (any, error) {
			return map[string]any{"isOpen": "CLOSE"}, nil
		}).
		Build())
	dispatcher := dispatch.New(registry, zerolog.Nop())

	eng := &fakeEngine{reply: "hello"}
	srv := New(Config{}, eng, registry, dispatcher, ledger, st, zerolog.Nop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &testServer{Server: srv, engine: eng, http: ts}
}

func (ts *testServer) request(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.http.URL+path, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.request(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestChatEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.reply = "NEPSE is closed."

	resp, body := ts.request(t, http.MethodPost, "/api/chat", map[string]any{
		"message":    "is the market open?",
		"use_memory": true,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "NEPSE is closed.", body["reply"])
	require.NotNil(t, ts.engine.lastInput)
	assert.True(t, ts.engine.lastInput.UseMemory)
}

func TestInvokeToolEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.request(t, http.MethodPost, "/api/invoke", map[string]any{
		"name": "nepse.is_open",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	result := body["result"].(map[string]any)
	assert.Equal(t, "CLOSE", result["isOpen"])

	resp, _ = ts.request(t, http.MethodPost, "/api/invoke", map[string]any{
		"name": "nope.missing",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListToolsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.request(t, http.MethodGet, "/api/tools", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"nepse.is_open"}, body["tools"])
}

func TestConversationEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, created := ts.request(t, http.MethodPost, "/api/conversations/", map[string]any{"title": "banking chat"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["id"].(string)

	resp, body := ts.request(t, http.MethodGet, "/api/conversations/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	conv := body["conversation"].(map[string]any)
	assert.Equal(t, "banking chat", conv["title"])

	resp, _ = ts.request(t, http.MethodDelete, "/api/conversations/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.request(t, http.MethodGet, "/api/conversations/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPaperTradeFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	resp, portfolio := ts.request(t, http.MethodPost, "/api/paper/portfolios", map[string]any{
		"name":          "Test",
		"starting_cash": 100000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	portfolioID := portfolio["id"].(string)

	resp, proposal := ts.request(t, http.MethodPost, "/api/paper/proposals", map[string]any{
		"portfolio_id": portfolioID,
		"symbol":       "nabil",
		"side":         "buy",
		"quantity":     10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", proposal["status"])
	proposalID := proposal["id"].(string)

	resp, approved := ts.request(t, http.MethodPost, "/api/paper/proposals/"+proposalID+"/approve", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", approved["status"])

	resp, summary := ts.request(t, http.MethodGet, "/api/paper/portfolios/"+portfolioID+"/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 95000, summary["cash"].(float64), 1e-6)

	resp, positions := ts.request(t, http.MethodGet, "/api/paper/portfolios/"+portfolioID+"/positions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, positions["positions"], 1)
}

func TestPaperValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.request(t, http.MethodPost, "/api/paper/portfolios", map[string]any{
		"starting_cash": -5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.request(t, http.MethodGet, "/api/paper/portfolios/missing/summary", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResearchEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	_, err := ts.store.StoreResearchBundle(ctx, "NABIL", 1, map[string]any{"lastTradedPrice": 500.0})
	require.NoError(t, err)

	resp, body := ts.request(t, http.MethodGet, "/api/research/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["bundles"], 1)

	resp, bundle := ts.request(t, http.MethodGet, "/api/research/NABIL", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "NABIL", bundle["ticker"])

	resp, _ = ts.request(t, http.MethodGet, "/api/research/UNKNOWN", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWatchlistEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, item := ts.request(t, http.MethodPost, "/api/watchlist/", map[string]any{
		"symbol": "nabil",
		"note":   "bank bellwether",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "NABIL", item["symbol"])

	resp, body := ts.request(t, http.MethodGet, "/api/watchlist/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"], 1)

	resp, _ = ts.request(t, http.MethodDelete, "/api/watchlist/NABIL", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.request(t, http.MethodDelete, "/api/watchlist/NABIL", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
