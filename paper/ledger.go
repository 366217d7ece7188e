package paper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/citadelhq/citadel-go/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS paper_portfolios (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	base_currency TEXT NOT NULL DEFAULT 'NPR',
	starting_cash REAL NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS paper_cash_ledger (
	id TEXT PRIMARY KEY,
	portfolio_id TEXT NOT NULL REFERENCES paper_portfolios(id),
	amount REAL NOT NULL,
	reason TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS paper_positions (
	portfolio_id TEXT NOT NULL REFERENCES paper_portfolios(id),
	symbol TEXT NOT NULL,
	quantity REAL NOT NULL,
	avg_cost REAL NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (portfolio_id, symbol)
);

CREATE TABLE IF NOT EXISTS paper_trades (
	id TEXT PRIMARY KEY,
	portfolio_id TEXT NOT NULL REFERENCES paper_portfolios(id),
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	amount REAL NOT NULL,
	source TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS paper_trade_proposals (
	id TEXT PRIMARY KEY,
	portfolio_id TEXT NOT NULL REFERENCES paper_portfolios(id),
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	proposed_price REAL,
	status TEXT NOT NULL DEFAULT 'pending',
	reason TEXT,
	model TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	executed_trade_id TEXT,
	executed_price REAL
);

CREATE INDEX IF NOT EXISTS idx_paper_cash_portfolio ON paper_cash_ledger(portfolio_id);
CREATE INDEX IF NOT EXISTS idx_paper_trades_portfolio ON paper_trades(portfolio_id);
CREATE INDEX IF NOT EXISTS idx_paper_proposals_portfolio ON paper_trade_proposals(portfolio_id, status);
`

// Ledger owns the paper trading tables and the proposal state machine.
// All mutations run inside database transactions; correctness does not
// depend on in-process locking.
type Ledger struct {
	db     *sql.DB
	quotes Quoter
	log    zerolog.Logger
}

// NewLedger initializes the paper trading schema on db.
func NewLedger(db *sql.DB, quotes Quoter, log zerolog.Logger) (*Ledger, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init paper schema: %w", err)
	}
	return &Ledger{
		db:     db,
		quotes: quotes,
		log:    log.With().Str("component", "paper").Logger(),
	}, nil
}

// CreatePortfolio creates a new portfolio with the given starting cash.
func (l *Ledger) CreatePortfolio(ctx context.Context, name string, startingCash float64, currency string) (*Portfolio, error) {
	if name == "" {
		name = "Paper Portfolio"
	}
	if currency == "" {
		currency = "NPR"
	}
	if startingCash < 0 {
		return nil, &core.ValidationError{Tool: "paper.portfolio_create", Fields: []string{"starting_cash"}, Reason: "must be >= 0"}
	}

	p := &Portfolio{
		ID:           uuid.New().String(),
		Name:         name,
		BaseCurrency: strings.ToUpper(currency),
		StartingCash: startingCash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO paper_portfolios (id, name, base_currency, starting_cash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.BaseCurrency, p.StartingCash, p.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("create portfolio: %w", err)
	}

	l.log.Info().Str("portfolio", p.ID).Float64("starting_cash", startingCash).Msg("portfolio created")
	return p, nil
}

// GetPortfolio returns a portfolio by id.
func (l *Ledger) GetPortfolio(ctx context.Context, id string) (*Portfolio, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, name, base_currency, starting_cash, created_at
		FROM paper_portfolios WHERE id = ?`, id)
	return scanPortfolio(row)
}

// ListPortfolios returns all portfolios, newest first.
func (l *Ledger) ListPortfolios(ctx context.Context) ([]Portfolio, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, name, base_currency, starting_cash, created_at
		FROM paper_portfolios ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	defer rows.Close()

	var out []Portfolio
	for rows.Next() {
		var p Portfolio
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.BaseCurrency, &p.StartingCash, &createdAt); err != nil {
			return nil, fmt.Errorf("scan portfolio: %w", err)
		}
		p.CreatedAt = parseTime(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// AddCash appends a signed cash ledger entry (deposit or withdrawal).
func (l *Ledger) AddCash(ctx context.Context, portfolioID string, amount float64, reason string) (*CashLedgerEntry, error) {
	if _, err := l.GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}
	entry := &CashLedgerEntry{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Amount:      amount,
		Reason:      reason,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO paper_cash_ledger (id, portfolio_id, amount, reason, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.PortfolioID, entry.Amount, nullString(entry.Reason), entry.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("add cash: %w", err)
	}
	return entry, nil
}

// CashBalance computes the derived cash balance:
// starting_cash + Σ ledger − Σ buys + Σ sells. It is never stored.
func (l *Ledger) CashBalance(ctx context.Context, portfolioID string) (float64, error) {
	return cashBalance(ctx, l.db, portfolioID)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func cashBalance(ctx context.Context, q querier, portfolioID string) (float64, error) {
	var balance float64
	err := q.QueryRowContext(ctx, `
		SELECT p.starting_cash
			+ COALESCE((SELECT SUM(amount) FROM paper_cash_ledger WHERE portfolio_id = p.id), 0)
			- COALESCE((SELECT SUM(amount) FROM paper_trades WHERE portfolio_id = p.id AND side = 'buy'), 0)
			+ COALESCE((SELECT SUM(amount) FROM paper_trades WHERE portfolio_id = p.id AND side = 'sell'), 0)
		FROM paper_portfolios p WHERE p.id = ?`, portfolioID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &core.NotFoundError{Kind: "portfolio", Name: portfolioID}
	}
	if err != nil {
		return 0, fmt.Errorf("cash balance: %w", err)
	}
	return balance, nil
}

// Positions lists current positions for a portfolio.
func (l *Ledger) Positions(ctx context.Context, portfolioID string) ([]Position, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT portfolio_id, symbol, quantity, avg_cost, updated_at
		FROM paper_positions WHERE portfolio_id = ? ORDER BY symbol`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var p Position
		var updatedAt string
		if err := rows.Scan(&p.PortfolioID, &p.Symbol, &p.Quantity, &p.AvgCost, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		p.UpdatedAt = parseTime(updatedAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Trades lists executed trades for a portfolio, newest first.
func (l *Ledger) Trades(ctx context.Context, portfolioID string, limit int) ([]Trade, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, portfolio_id, symbol, side, quantity, price, amount, COALESCE(source, ''), created_at
		FROM paper_trades WHERE portfolio_id = ?
		ORDER BY created_at DESC LIMIT ?`, portfolioID, limit)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		var t Trade
		var createdAt string
		if err := rows.Scan(&t.ID, &t.PortfolioID, &t.Symbol, &t.Side, &t.Quantity, &t.Price, &t.Amount, &t.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.CreatedAt = parseTime(createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Proposals lists trade proposals for a portfolio, optionally filtered by
// status, newest first.
func (l *Ledger) Proposals(ctx context.Context, portfolioID, status string) ([]TradeProposal, error) {
	query := `
		SELECT id, portfolio_id, symbol, side, quantity, proposed_price, status,
		       COALESCE(reason, ''), COALESCE(model, ''), created_at, updated_at,
		       executed_trade_id, executed_price
		FROM paper_trade_proposals WHERE portfolio_id = ?`
	args := []any{portfolioID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var out []TradeProposal
	for rows.Next() {
		p, err := scanProposalRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetProposal returns a proposal by id.
func (l *Ledger) GetProposal(ctx context.Context, id string) (*TradeProposal, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, portfolio_id, symbol, side, quantity, proposed_price, status,
		       COALESCE(reason, ''), COALESCE(model, ''), created_at, updated_at,
		       executed_trade_id, executed_price
		FROM paper_trade_proposals WHERE id = ?`, id)
	return scanProposal(row)
}

// ProposeRequest describes a trade proposal.
type ProposeRequest struct {
	PortfolioID string
	Symbol      string
	Side        string
	Quantity    float64
	Reason      string
	Model       string
}

// Propose records a pending trade proposal, priced from the current quote
// when one is available. A proposal with no quote is still created and
// priced at approval time.
func (l *Ledger) Propose(ctx context.Context, req ProposeRequest) (*TradeProposal, error) {
	side := strings.ToLower(strings.TrimSpace(req.Side))
	if side != SideBuy && side != SideSell {
		return nil, &core.ValidationError{Tool: "paper.trade_propose", Fields: []string{"side"}, Reason: "must be buy or sell"}
	}
	if req.Quantity <= 0 {
		return nil, &core.ValidationError{Tool: "paper.trade_propose", Fields: []string{"quantity"}, Reason: "must be > 0"}
	}
	if _, err := l.GetPortfolio(ctx, req.PortfolioID); err != nil {
		return nil, err
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	var proposedPrice *float64
	if price, ok := l.quotes.QuotePrice(ctx, symbol); ok {
		proposedPrice = &price
	}

	now := time.Now().UTC()
	p := &TradeProposal{
		ID:            uuid.New().String(),
		PortfolioID:   req.PortfolioID,
		Symbol:        symbol,
		Side:          side,
		Quantity:      req.Quantity,
		ProposedPrice: proposedPrice,
		Status:        ProposalPending,
		Reason:        req.Reason,
		Model:         req.Model,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO paper_trade_proposals
		(id, portfolio_id, symbol, side, quantity, proposed_price, status, reason, model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.PortfolioID, p.Symbol, p.Side, p.Quantity, nullFloat(p.ProposedPrice), p.Status,
		nullString(p.Reason), nullString(p.Model),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	l.log.Info().Str("proposal", p.ID).Str("symbol", symbol).Str("side", side).
		Float64("quantity", req.Quantity).Msg("trade proposed")
	return p, nil
}

// Approve executes a pending proposal: it re-quotes the symbol, checks
// cash for buys, records the trade, updates the position, and marks the
// proposal approved — all within one transaction. Expected business
// conditions come back as statuses, never errors:
//
//	not_found          — unknown id, or proposal no longer pending
//	price_unavailable  — no quote from any source; proposal stays pending
//	insufficient_cash  — buy cost exceeds balance; proposal stays pending
func (l *Ledger) Approve(ctx context.Context, proposalID string) (*ApproveResult, error) {
	proposal, err := l.GetProposal(ctx, proposalID)
	if err != nil {
		var notFound *core.NotFoundError
		if errors.As(err, &notFound) {
			return &ApproveResult{Status: StatusNotFound}, nil
		}
		return nil, err
	}
	if proposal.Status != ProposalPending {
		return &ApproveResult{Status: StatusNotFound}, nil
	}

	// Quote outside the transaction: no network calls under a write lock.
	price, ok := l.quotes.QuotePrice(ctx, proposal.Symbol)
	if !ok {
		l.log.Warn().Str("proposal", proposalID).Str("symbol", proposal.Symbol).Msg("no execution price")
		return &ApproveResult{Status: StatusPriceUnavailable}, nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin approve: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	// Claim the proposal. A concurrent approval or rejection already
	// consumed it; the guarded update then touches zero rows.
	claimed, err := tx.ExecContext(ctx, `
		UPDATE paper_trade_proposals SET updated_at = ? WHERE id = ? AND status = 'pending'`,
		now.Format(time.RFC3339Nano), proposalID)
	if err != nil {
		return nil, fmt.Errorf("claim proposal: %w", err)
	}
	if n, _ := claimed.RowsAffected(); n == 0 {
		return &ApproveResult{Status: StatusNotFound}, nil
	}

	amount := proposal.Quantity * price
	if proposal.Side == SideBuy {
		balance, err := cashBalance(ctx, tx, proposal.PortfolioID)
		if err != nil {
			return nil, err
		}
		if balance < amount {
			l.log.Info().Str("proposal", proposalID).Float64("required", amount).
				Float64("balance", balance).Msg("insufficient cash")
			return &ApproveResult{Status: StatusInsufficientCash}, nil
		}
	}

	trade := &Trade{
		ID:          uuid.New().String(),
		PortfolioID: proposal.PortfolioID,
		Symbol:      proposal.Symbol,
		Side:        proposal.Side,
		Quantity:    proposal.Quantity,
		Price:       price,
		Amount:      amount,
		Source:      "paper_proposal",
		CreatedAt:   now,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO paper_trades (id, portfolio_id, symbol, side, quantity, price, amount, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.PortfolioID, trade.Symbol, trade.Side, trade.Quantity,
		trade.Price, trade.Amount, trade.Source, now.Format(time.RFC3339Nano)); err != nil {
		return nil, fmt.Errorf("record trade: %w", err)
	}

	if proposal.Side == SideBuy {
		err = applyBuy(ctx, tx, proposal.PortfolioID, proposal.Symbol, proposal.Quantity, price, now)
	} else {
		err = applySell(ctx, tx, proposal.PortfolioID, proposal.Symbol, proposal.Quantity, now)
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE paper_trade_proposals
		SET status = 'approved', executed_trade_id = ?, executed_price = ?, updated_at = ?
		WHERE id = ?`,
		trade.ID, price, now.Format(time.RFC3339Nano), proposalID); err != nil {
		return nil, fmt.Errorf("mark approved: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approve: %w", err)
	}

	l.log.Info().Str("proposal", proposalID).Str("trade", trade.ID).
		Float64("price", price).Msg("trade approved")
	return &ApproveResult{Status: StatusApproved, Trade: trade}, nil
}

// Reject transitions a pending proposal to rejected. Anything else is a
// no-op reported as not_found.
func (l *Ledger) Reject(ctx context.Context, proposalID string) (*RejectResult, error) {
	res, err := l.db.ExecContext(ctx, `
		UPDATE paper_trade_proposals SET status = 'rejected', updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		time.Now().UTC().Format(time.RFC3339Nano), proposalID)
	if err != nil {
		return nil, fmt.Errorf("reject proposal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &RejectResult{Status: StatusNotFound}, nil
	}
	return &RejectResult{Status: StatusRejected}, nil
}

// applyBuy folds a buy fill into the position using volume-weighted
// average cost.
func applyBuy(ctx context.Context, tx *sql.Tx, portfolioID, symbol string, qty, price float64, now time.Time) error {
	prevQty, prevAvg, exists, err := currentPosition(ctx, tx, portfolioID, symbol)
	if err != nil {
		return err
	}

	newQty := prevQty + qty
	newAvg := price
	if newQty > 0 {
		newAvg = (prevQty*prevAvg + qty*price) / newQty
	}

	if exists {
		_, err = tx.ExecContext(ctx, `
			UPDATE paper_positions SET quantity = ?, avg_cost = ?, updated_at = ?
			WHERE portfolio_id = ? AND symbol = ?`,
			newQty, newAvg, now.Format(time.RFC3339Nano), portfolioID, symbol)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO paper_positions (portfolio_id, symbol, quantity, avg_cost, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			portfolioID, symbol, newQty, newAvg, now.Format(time.RFC3339Nano))
	}
	if err != nil {
		return fmt.Errorf("apply buy: %w", err)
	}
	return nil
}

// applySell reduces the position, leaving avg_cost untouched. Quantity
// floors at zero — an oversell is clamped, not rejected — and a position
// reaching exactly zero is deleted.
func applySell(ctx context.Context, tx *sql.Tx, portfolioID, symbol string, qty float64, now time.Time) error {
	prevQty, _, exists, err := currentPosition(ctx, tx, portfolioID, symbol)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	newQty := prevQty - qty
	if newQty <= 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM paper_positions WHERE portfolio_id = ? AND symbol = ?`,
			portfolioID, symbol); err != nil {
			return fmt.Errorf("close position: %w", err)
		}
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE paper_positions SET quantity = ?, updated_at = ?
		WHERE portfolio_id = ? AND symbol = ?`,
		newQty, now.Format(time.RFC3339Nano), portfolioID, symbol); err != nil {
		return fmt.Errorf("apply sell: %w", err)
	}
	return nil
}

func currentPosition(ctx context.Context, tx *sql.Tx, portfolioID, symbol string) (qty, avg float64, exists bool, err error) {
	err = tx.QueryRowContext(ctx, `
		SELECT quantity, avg_cost FROM paper_positions
		WHERE portfolio_id = ? AND symbol = ?`, portfolioID, symbol).Scan(&qty, &avg)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("read position: %w", err)
	}
	return qty, avg, true, nil
}

// PortfolioSummary joins the derived cash balance with enriched positions
// and a total-value rollup. avg_cost stands in for the market price when
// no live quote is available.
func (l *Ledger) PortfolioSummary(ctx context.Context, portfolioID string) (*Summary, error) {
	portfolio, err := l.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	cash, err := l.CashBalance(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	positions, err := l.Positions(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Portfolio: portfolio,
		Cash:      cash,
		Positions: make([]EnrichedPosition, 0, len(positions)),
	}
	for _, pos := range positions {
		enriched := EnrichedPosition{Position: pos}
		if price, ok := l.quotes.QuotePrice(ctx, pos.Symbol); ok {
			pnl := (price - pos.AvgCost) * pos.Quantity
			enriched.LastPrice = &price
			enriched.UnrealizedPnL = &pnl
			enriched.MarketValue = price * pos.Quantity
		} else {
			enriched.MarketValue = pos.AvgCost * pos.Quantity
		}
		summary.MarketValue += enriched.MarketValue
		summary.Positions = append(summary.Positions, enriched)
	}
	summary.TotalValue = summary.Cash + summary.MarketValue
	return summary, nil
}

func scanPortfolio(row *sql.Row) (*Portfolio, error) {
	var p Portfolio
	var createdAt string
	err := row.Scan(&p.ID, &p.Name, &p.BaseCurrency, &p.StartingCash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &core.NotFoundError{Kind: "portfolio", Name: "portfolio"}
	}
	if err != nil {
		return nil, fmt.Errorf("scan portfolio: %w", err)
	}
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProposal(row *sql.Row) (*TradeProposal, error) {
	p, err := scanProposalFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &core.NotFoundError{Kind: "proposal", Name: "proposal"}
	}
	return p, err
}

func scanProposalRows(rows *sql.Rows) (*TradeProposal, error) {
	return scanProposalFrom(rows)
}

func scanProposalFrom(s rowScanner) (*TradeProposal, error) {
	var p TradeProposal
	var proposedPrice, executedPrice sql.NullFloat64
	var executedTradeID sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&p.ID, &p.PortfolioID, &p.Symbol, &p.Side, &p.Quantity, &proposedPrice,
		&p.Status, &p.Reason, &p.Model, &createdAt, &updatedAt, &executedTradeID, &executedPrice)
	if err != nil {
		return nil, err
	}

	if proposedPrice.Valid {
		p.ProposedPrice = &proposedPrice.Float64
	}
	if executedPrice.Valid {
		p.ExecutedPrice = &executedPrice.Float64
	}
	if executedTradeID.Valid {
		p.ExecutedTradeID = &executedTradeID.String
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
