// Package paper implements the simulated trading ledger: portfolios,
// cash ledger entries, positions, trades, and the propose→approve/reject
// state machine.
package paper

import (
	"context"
	"time"
)

// Trade sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Proposal statuses.
const (
	ProposalPending  = "pending"
	ProposalApproved = "approved"
	ProposalRejected = "rejected"
)

// Outcome statuses returned by Approve and Reject. These are expected
// business conditions, reported via the Status field rather than errors.
const (
	StatusApproved         = "approved"
	StatusRejected         = "rejected"
	StatusNotFound         = "not_found"
	StatusPriceUnavailable = "price_unavailable"
	StatusInsufficientCash = "insufficient_cash"
)

// Portfolio is a simulated trading account.
type Portfolio struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BaseCurrency string    `json:"base_currency"`
	StartingCash float64   `json:"starting_cash"`
	CreatedAt    time.Time `json:"created_at"`
}

// CashLedgerEntry is an append-only deposit or withdrawal, independent of
// trading activity.
type CashLedgerEntry struct {
	ID          string    `json:"id"`
	PortfolioID string    `json:"portfolio_id"`
	Amount      float64   `json:"amount"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Position is the current holding of one symbol in a portfolio. Quantity
// never goes negative; a position at exactly zero is deleted, not kept.
type Position struct {
	PortfolioID string    `json:"portfolio_id"`
	Symbol      string    `json:"symbol"`
	Quantity    float64   `json:"quantity"`
	AvgCost     float64   `json:"avg_cost"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Trade is an immutable record of an executed fill.
type Trade struct {
	ID          string    `json:"id"`
	PortfolioID string    `json:"portfolio_id"`
	Symbol      string    `json:"symbol"`
	Side        string    `json:"side"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	Amount      float64   `json:"amount"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TradeProposal is a requested trade awaiting approval. It transitions
// exactly once from pending to approved or rejected.
type TradeProposal struct {
	ID              string    `json:"id"`
	PortfolioID     string    `json:"portfolio_id"`
	Symbol          string    `json:"symbol"`
	Side            string    `json:"side"`
	Quantity        float64   `json:"quantity"`
	ProposedPrice   *float64  `json:"proposed_price"`
	Status          string    `json:"status"`
	Reason          string    `json:"reason,omitempty"`
	Model           string    `json:"model,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	ExecutedTradeID *string   `json:"executed_trade_id,omitempty"`
	ExecutedPrice   *float64  `json:"executed_price,omitempty"`
}

// ApproveResult reports the outcome of an approval attempt.
type ApproveResult struct {
	Status string `json:"status"`
	Trade  *Trade `json:"trade,omitempty"`
}

// RejectResult reports the outcome of a rejection attempt.
type RejectResult struct {
	Status string `json:"status"`
}

// EnrichedPosition is a position annotated with the last seen market
// price. UnrealizedPnL is nil when no live quote was available.
type EnrichedPosition struct {
	Position
	LastPrice     *float64 `json:"last_price"`
	MarketValue   float64  `json:"market_value"`
	UnrealizedPnL *float64 `json:"unrealized_pnl"`
}

// Summary is the full portfolio view: cash, enriched positions, and the
// total-value rollup.
type Summary struct {
	Portfolio   *Portfolio         `json:"portfolio"`
	Cash        float64            `json:"cash"`
	Positions   []EnrichedPosition `json:"positions"`
	MarketValue float64            `json:"market_value"`
	TotalValue  float64            `json:"total_value"`
}

// Quoter supplies a current reference price for a symbol. The boolean is
// false when no price is available from any source.
type Quoter interface {
	QuotePrice(ctx context.Context, symbol string) (float64, bool)
}
