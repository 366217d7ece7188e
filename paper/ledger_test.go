package paper

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuoter struct {
	prices map[string]float64
}

func (f *fakeQuoter) QuotePrice(_ context.Context, symbol string) (float64, bool) {
	price, ok := f.prices[symbol]
	return price, ok
}

func newTestLedger(t *testing.T) (*Ledger, *fakeQuoter) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// A second connection would see a separate in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	quotes := &fakeQuoter{prices: map[string]float64{}}
	ledger, err := NewLedger(db, quotes, zerolog.Nop())
	require.NoError(t, err)
	return ledger, quotes
}

func approveBuy(t *testing.T, ledger *Ledger, portfolioID, symbol string, qty float64) *Trade {
	t.Helper()
	ctx := context.Background()
	proposal, err := ledger.Propose(ctx, ProposeRequest{
		PortfolioID: portfolioID, Symbol: symbol, Side: SideBuy, Quantity: qty,
	})
	require.NoError(t, err)
	result, err := ledger.Approve(ctx, proposal.ID)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, result.Status)
	return result.Trade
}

func approveSell(t *testing.T, ledger *Ledger, portfolioID, symbol string, qty float64) *Trade {
	t.Helper()
	ctx := context.Background()
	proposal, err := ledger.Propose(ctx, ProposeRequest{
		PortfolioID: portfolioID, Symbol: symbol, Side: SideSell, Quantity: qty,
	})
	require.NoError(t, err)
	result, err := ledger.Approve(ctx, proposal.ID)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, result.Status)
	return result.Trade
}

func TestSuccessfulTradeScenario(t *testing.T) {
	ledger, quotes := newTestLedger(t)
	ctx := context.Background()

	portfolio, err := ledger.CreatePortfolio(ctx, "Global Portfolio", 100000, "NPR")
	require.NoError(t, err)

	quotes.prices["ABC"] = 100
	trade := approveBuy(t, ledger, portfolio.ID, "ABC", 10)

	assert.Equal(t, 1000.0, trade.Amount)

	balance, err := ledger.CashBalance(ctx, portfolio.ID)
	require.NoError(t, err)
	assert.Equal(t, 99000.0, balance)

	positions, err := ledger.Positions(ctx, portfolio.ID)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "ABC", positions[0].Symbol)
	assert.Equal(t, 10.0, positions[0].Quantity)
	assert.Equal(t, 100.0, positions[0].AvgCost)
}

func TestInsufficientCashLeavesProposalPending(t *testing.T) {
	ledger, quotes := newTestLedger(t)
	ctx := context.Background()

	portfolio, err := ledger.CreatePortfolio(ctx, "small", 1000, "NPR")
	require.NoError(t, err)

	quotes.prices["XYZ"] = 50
	proposal, err := ledger.Propose(ctx, ProposeRequest{
		PortfolioID: portfolio.ID, Symbol: "XYZ", Side: SideBuy, Quantity: 100,
	})
	require.NoError(t, err)

	result, err := ledger.Approve(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInsufficientCash, result.Status)

	reloaded, err := ledger.GetProposal(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, ProposalPending, reloaded.Status)

	trades, err := ledger.Trades(ctx, portfolio.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestPositionAveraging(t *testing.T) {
	ledger, quotes := newTestLedger(t)
	ctx := context.Background()

	portfolio, err := ledger.CreatePortfolio(ctx, "avg", 100000, "NPR")
	require.NoError(t, err)

	quotes.prices["NABIL"] = 100
	approveBuy(t, ledger, portfolio.ID, "NABIL", 10)
	quotes.prices["NABIL"] = 200
	approveBuy(t, ledger, portfolio.ID, "NABIL", 10)

	positions, err := ledger.Positions(ctx, portfolio.ID)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, 20.0, positions[0].Quantity)
	assert.Equal(t, 150.0, positions[0].AvgCost)

	// A sell reduces quantity but never touches avg_cost.
	quotes.prices["NABIL"] = 180
	approveSell(t, ledger, portfolio.ID, "NABIL", 5)

	positions, err = ledger.Positions(ctx, portfolio.ID)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, 15.0, positions[0].Quantity)
	assert.Equal(t, 150.0, positions[0].AvgCost)
}

func TestOversellClampsToZeroAndRemovesRow(t *testing.T) {
	ledger, quotes := newTestLedger(t)
	ctx := context.Background()

	portfolio, err := ledger.CreatePortfolio(ctx, "clamp", 100000, "NPR")
	require.NoError(t, err)

	quotes.prices["ADBL"] = 40
	approveBuy(t, ledger, portfolio.ID, "ADBL", 10)
	approveSell(t, ledger, portfolio.ID, "ADBL", 25)

	positions, err := ledger.Positions(ctx, portfolio.ID)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestApproveIsIdempotentTerminal(t *testing.T) {
	ledger, quotes := newTestLedger(t)
	ctx := context.Background()

	portfolio, err := ledger.CreatePortfolio(ctx, "once", 100000, "NPR")
	require.NoError(t, err)

	quotes.prices["HDL"] = 10
	proposal, err := ledger.Propose(ctx, ProposeRequest{
		PortfolioID: portfolio.ID, Symbol: "HDL", Side: SideBuy, Quantity: 5,
	})
	require.NoError(t, err)

	first, err := ledger.Approve(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, first.Status)

	second, err := ledger.Approve(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, second.Status)

	trades, err := ledger.Trades(ctx, portfolio.ID, 10)
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

func TestRejectThenApproveIsNoOp(t *testing.T) {
	ledger, quotes := newTestLedger(t)
	ctx := context.Background()

	portfolio, err := ledger.CreatePortfolio(ctx, "reject", 100000, "NPR")
	require.NoError(t, err)

	quotes.prices["NLIC"] = 900
	proposal, err := ledger.Propose(ctx, ProposeRequest{
		PortfolioID: portfolio.ID, Symbol: "NLIC", Side: SideBuy, Quantity: 1,
	})
	require.NoError(t, err)

	rejected, err := ledger.Reject(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)

	again, err := ledger.Reject(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, again.Status)

	approved, err := ledger.Approve(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, approved.Status)
}

func TestPriceUnavailableLeavesProposalRetryable(t *testing.T) {
	ledger, quotes := newTestLedger(t)
	ctx := context.Background()

	portfolio, err := ledger.CreatePortfolio(ctx, "retry", 100000, "NPR")
	require.NoError(t, err)

	// No quote at propose time: the proposal is created unpriced.
	proposal, err := ledger.Propose(ctx, ProposeRequest{
		PortfolioID: portfolio.ID, Symbol: "SCB", Side: SideBuy, Quantity: 2,
	})
	require.NoError(t, err)
	assert.Nil(t, proposal.ProposedPrice)

	result, err := ledger.Approve(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPriceUnavailable, result.Status)

	reloaded, err := ledger.GetProposal(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, ProposalPending, reloaded.Status)

	// A quote shows up later; the same proposal approves cleanly.
	quotes.prices["SCB"] = 450
	result, err = ledger.Approve(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, result.Status)
	assert.Equal(t, 450.0, result.Trade.Price)
}

func TestCashConservation(t *testing.T) {
	ledger, quotes := newTestLedger(t)
	ctx := context.Background()

	portfolio, err := ledger.CreatePortfolio(ctx, "oracle", 50000, "NPR")
	require.NoError(t, err)

	// The oracle replays every cash movement independently.
	oracle := 50000.0

	_, err = ledger.AddCash(ctx, portfolio.ID, 10000, "deposit")
	require.NoError(t, err)
	oracle += 10000

	_, err = ledger.AddCash(ctx, portfolio.ID, -2500, "withdrawal")
	require.NoError(t, err)
	oracle -= 2500

	quotes.prices["UPPER"] = 250
	trade := approveBuy(t, ledger, portfolio.ID, "UPPER", 40)
	oracle -= trade.Amount

	quotes.prices["UPPER"] = 300
	trade = approveSell(t, ledger, portfolio.ID, "UPPER", 15)
	oracle += trade.Amount

	balance, err := ledger.CashBalance(ctx, portfolio.ID)
	require.NoError(t, err)
	assert.InDelta(t, oracle, balance, 1e-9)
}

func TestPortfolioSummary(t *testing.T) {
	ledger, quotes := newTestLedger(t)
	ctx := context.Background()

	portfolio, err := ledger.CreatePortfolio(ctx, "summary", 100000, "NPR")
	require.NoError(t, err)

	quotes.prices["NABIL"] = 100
	approveBuy(t, ledger, portfolio.ID, "NABIL", 10)

	quotes.prices["NABIL"] = 120
	summary, err := ledger.PortfolioSummary(ctx, portfolio.ID)
	require.NoError(t, err)

	assert.Equal(t, 99000.0, summary.Cash)
	require.Len(t, summary.Positions, 1)
	pos := summary.Positions[0]
	require.NotNil(t, pos.LastPrice)
	assert.Equal(t, 120.0, *pos.LastPrice)
	require.NotNil(t, pos.UnrealizedPnL)
	assert.InDelta(t, 200.0, *pos.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 1200.0, summary.MarketValue, 1e-9)
	assert.InDelta(t, 100200.0, summary.TotalValue, 1e-9)

	// With no live quote the position is valued at cost.
	delete(quotes.prices, "NABIL")
	summary, err = ledger.PortfolioSummary(ctx, portfolio.ID)
	require.NoError(t, err)
	pos = summary.Positions[0]
	assert.Nil(t, pos.LastPrice)
	assert.Nil(t, pos.UnrealizedPnL)
	assert.InDelta(t, 1000.0, pos.MarketValue, 1e-9)
}

func TestProposeValidation(t *testing.T) {
	ledger, quotes := newTestLedger(t)
	ctx := context.Background()

	portfolio, err := ledger.CreatePortfolio(ctx, "validate", 1000, "NPR")
	require.NoError(t, err)
	quotes.prices["ABC"] = 10

	_, err = ledger.Propose(ctx, ProposeRequest{PortfolioID: portfolio.ID, Symbol: "ABC", Side: "hold", Quantity: 1})
	assert.Error(t, err)

	_, err = ledger.Propose(ctx, ProposeRequest{PortfolioID: portfolio.ID, Symbol: "ABC", Side: SideBuy, Quantity: 0})
	assert.Error(t, err)

	_, err = ledger.Propose(ctx, ProposeRequest{PortfolioID: "missing", Symbol: "ABC", Side: SideBuy, Quantity: 1})
	assert.Error(t, err)
}
