package tools

import (
	"context"

	"github.com/citadelhq/citadel-go/core"
	"github.com/citadelhq/citadel-go/paper"
)

// PaperTools returns the paper trading tools. Trades are never executed
// directly: the model can only propose, and a separate approval step
// moves money.
func PaperTools(d Deps) []core.Tool {
	portfolioSchema := ObjectSchema(map[string]core.Property{
		"portfolio_id": StringProperty("Paper portfolio id"),
	}, "portfolio_id")

	return []core.Tool{
		New("paper.portfolios").
			Description("List paper trading portfolios.").
			Schema(ObjectSchema(nil)).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Ledger.ListPortfolios(ctx)
			}).
			Build(),

		New("paper.portfolio_create").
			Description("Create a paper trading portfolio.").
			Schema(ObjectSchema(map[string]core.Property{
				"name":          StringProperty("Portfolio name"),
				"starting_cash": NumberProperty("Initial cash (default: 100000)"),
				"currency":      StringProperty("Portfolio currency (default: NPR)"),
			})).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Ledger.CreatePortfolio(ctx,
					args.String("name", ""),
					args.Float("starting_cash", 100000),
					args.String("currency", "NPR"))
			}).
			Build(),

		New("paper.portfolio_summary").
			Description("Get paper portfolio summary including cash and positions.").
			Schema(portfolioSchema).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Ledger.PortfolioSummary(ctx, args.String("portfolio_id", ""))
			}).
			Build(),

		New("paper.positions").
			Description("List paper portfolio positions.").
			Schema(portfolioSchema).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Ledger.Positions(ctx, args.String("portfolio_id", ""))
			}).
			Build(),

		New("paper.trades").
			Description("List paper portfolio trades.").
			Schema(ObjectSchema(map[string]core.Property{
				"portfolio_id": StringProperty("Paper portfolio id"),
				"limit":        IntegerProperty("Maximum trades to return (default: 200)"),
			}, "portfolio_id")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Ledger.Trades(ctx, args.String("portfolio_id", ""), args.Int("limit", 200))
			}).
			Build(),

		New("paper.trade_proposals").
			Description("List paper trade proposals.").
			Schema(ObjectSchema(map[string]core.Property{
				"portfolio_id": StringProperty("Paper portfolio id"),
				"status":       StringEnumProperty("Filter by status", "pending", "approved", "rejected"),
			}, "portfolio_id")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Ledger.Proposals(ctx, args.String("portfolio_id", ""), args.String("status", ""))
			}).
			Build(),

		New("paper.trade_propose").
			Description("Propose a paper trade (requires approval).").
			Schema(ObjectSchema(map[string]core.Property{
				"portfolio_id": StringProperty("Paper portfolio id"),
				"symbol":       StringProperty("NEPSE scrip symbol"),
				"side":         StringEnumProperty("Trade side", "buy", "sell"),
				"quantity":     NumberProperty("Number of shares"),
				"reason":       StringProperty("Why this trade is proposed"),
			}, "portfolio_id", "symbol", "side", "quantity")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Ledger.Propose(ctx, paper.ProposeRequest{
					PortfolioID: args.String("portfolio_id", ""),
					Symbol:      args.String("symbol", ""),
					Side:        args.String("side", ""),
					Quantity:    args.Float("quantity", 0),
					Reason:      args.String("reason", ""),
					Model:       args.String("model", ""),
				})
			}).
			Build(),

		New("paper.trade_approve").
			Description("Approve and execute a pending paper trade proposal.").
			Schema(ObjectSchema(map[string]core.Property{
				"proposal_id": StringProperty("Trade proposal id"),
			}, "proposal_id")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Ledger.Approve(ctx, args.String("proposal_id", ""))
			}).
			Build(),

		New("paper.trade_reject").
			Description("Reject a pending paper trade proposal.").
			Schema(ObjectSchema(map[string]core.Property{
				"proposal_id": StringProperty("Trade proposal id"),
			}, "proposal_id")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Ledger.Reject(ctx, args.String("proposal_id", ""))
			}).
			Build(),

		New("paper.cash_add").
			Description("Add or withdraw paper portfolio cash.").
			Schema(ObjectSchema(map[string]core.Property{
				"portfolio_id": StringProperty("Paper portfolio id"),
				"amount":       NumberProperty("Amount to add; negative withdraws"),
				"reason":       StringProperty("Ledger note"),
			}, "portfolio_id", "amount")).
			Handler(func(ctx context.Context, args Arguments) (any, error) {
				return d.Ledger.AddCash(ctx,
					args.String("portfolio_id", ""),
					args.Float("amount", 0),
					args.String("reason", ""))
			}).
			Build(),
	}
}
