package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/asset"
	"github.com/lumenfx/tradecore/exchanges/order"
	"github.com/lumenfx/tradecore/exchanges/orderbook"
	"github.com/lumenfx/tradecore/internal/log"
	"github.com/lumenfx/tradecore/trader"
)

// fillPollInterval is how often rebalance waits poll the Account for a
// placed order to reach a terminal status; see Account.AwaitTerminal.
const fillPollInterval = 200 * time.Millisecond

var rebalanceCommand = &cli.Command{
	Name:  "rebalance",
	Usage: "connect once, compute the rebalance plan, execute it, and exit",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "market", Usage: "execute legs as immediate market orders (default)", Value: true},
		&cli.BoolFlag{Name: "dry-run", Usage: "print the plan without placing any orders"},
	},
	Action: func(c *cli.Context) error {
		logger := log.New("tradectl")
		ctx, cancel := signalContext()
		defer cancel()

		sess, err := connectSession(ctx, c.String("config"))
		if err != nil {
			return err
		}
		defer sess.adapter.Close(context.Background())

		if c.Bool("dry-run") {
			legs, err := trader.PlanTrades(buildPlan(sess))
			if err != nil {
				return fmt.Errorf("planning trades: %w", err)
			}
			for _, leg := range legs {
				logger.Info().Str("pair", leg.Pair.String()).Str("side", leg.Side.String()).Msg("planned leg")
			}
			return nil
		}

		var executeLegs func(context.Context, []trader.TradeLeg) ([]*order.Detail, error)
		executor := trader.Executor{Adapter: sess.adapter, Creds: sess.creds, Asset: asset.Spot, Log: logger}
		if c.Bool("market") {
			executeLegs = executor.ExecuteMarket
		} else {
			repriceCfg := trader.RepriceConfig{
				Interval:    sess.cfg.Rebalancer.RepriceEvery,
				Timeout:     sess.cfg.Rebalancer.Timeout,
				MaxSlippage: decimal.NewFromFloat(sess.cfg.Rebalancer.MaxSlippage),
			}
			executeLegs = limitExecutor(executor, sess, repriceCfg, logger)
		}

		return rebalance(ctx, sess, executeLegs, logger)
	},
}

// rebalanceOnce is the periodic-loop variant of the `rebalance` command's
// action: market-execute the full sell-then-buy flow, logging but not
// failing the loop on a placement error.
func rebalanceOnce(ctx context.Context, sess *session) error {
	logger := log.New("trader")
	executor := trader.Executor{Adapter: sess.adapter, Creds: sess.creds, Asset: asset.Spot, Log: logger}
	return rebalance(ctx, sess, executor.ExecuteMarket, logger)
}

// rebalance implements §4.6 steps 3-5: sells are planned and executed
// first; the account is polled until each placed sell reaches a terminal
// status (AwaitTerminal standing in for the fill_event wait §9 calls out);
// the portfolio total is then recomputed from the account's refreshed
// balances, and buy notionals — sized from the deltas computed up front,
// scaled against that recomputed total — are clamped to the quote balance
// actually on hand before being executed.
func rebalance(ctx context.Context, sess *session, executeLegs func(context.Context, []trader.TradeLeg) ([]*order.Detail, error), logger log.Logger) error {
	plan := buildPlan(sess)
	deltas, total, err := trader.ComputeDeltas(plan)
	if err != nil {
		return fmt.Errorf("computing deltas: %w", err)
	}

	sellLegs := trader.SellLegs(plan, deltas, total)
	for _, leg := range sellLegs {
		logger.Info().Str("pair", leg.Pair.String()).Str("side", leg.Side.String()).Msg("planned leg")
	}
	if len(sellLegs) > 0 {
		sold, sellErr := executeLegs(ctx, sellLegs)
		for _, d := range sold {
			if d == nil {
				continue
			}
			logger.Info().Str("id", d.ID).Str("pair", d.Pair.String()).Msg("leg placed")
			if _, err := sess.account.AwaitTerminal(ctx, d.ID, fillPollInterval); err != nil {
				logger.Warn().Err(err).Str("id", d.ID).Msg("waiting for sell to fill")
			}
		}
		if sellErr != nil {
			return fmt.Errorf("executing sells: %w", sellErr)
		}
	}

	plan.Balances = sess.account.Balances()
	postSellTotal := trader.PortfolioValue(plan)

	buyLegs := trader.BuyLegs(plan, deltas, postSellTotal)
	for _, leg := range buyLegs {
		logger.Info().Str("pair", leg.Pair.String()).Str("side", leg.Side.String()).Msg("planned leg")
	}
	if len(buyLegs) == 0 {
		return nil
	}
	bought, err := executeLegs(ctx, buyLegs)
	for _, d := range bought {
		if d == nil {
			continue
		}
		logger.Info().Str("id", d.ID).Str("pair", d.Pair.String()).Msg("leg placed")
	}
	return err
}

// limitExecutor adapts Executor.ExecuteLimit, which takes one leg plus the
// book to price it against, to executeLegs' ExecuteMarket-shaped signature.
func limitExecutor(executor trader.Executor, sess *session, cfg trader.RepriceConfig, logger log.Logger) func(context.Context, []trader.TradeLeg) ([]*order.Detail, error) {
	return func(ctx context.Context, legs []trader.TradeLeg) ([]*order.Detail, error) {
		results := make([]*order.Detail, 0, len(legs))
		var firstErr error
		for _, leg := range legs {
			book, ok := sess.books[leg.Pair]
			if !ok {
				continue
			}
			d, err := executor.ExecuteLimit(ctx, leg, book, cfg)
			if err != nil {
				logger.Error().Err(err).Str("pair", leg.Pair.String()).Msg("rebalance leg placement failed")
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			results = append(results, d)
		}
		return results, firstErr
	}
}

// buildPlan resolves every target and held asset's quote-denominated price
// per §4.6's three-step ladder (direct, inverse, two-hop through held
// assets) plus the default/backup base fallback, then packages it with the
// account's current balances and target weights for ComputeDeltas/PlanTrades.
func buildPlan(sess *session) trader.Plan {
	balances := sess.account.Balances()
	weights := make(map[currency.Code]decimal.Decimal, len(sess.cfg.Rebalancer.TargetWeights))
	assets := make([]currency.Code, 0, len(sess.cfg.Rebalancer.TargetWeights))
	held := make([]currency.Code, 0, len(balances))

	for symbol, w := range sess.cfg.Rebalancer.TargetWeights {
		code := currency.NewCode(symbol)
		weights[code] = decimal.NewFromFloat(w)
		assets = append(assets, code)
	}
	for code := range balances {
		held = append(held, code)
		assets = append(assets, code)
	}

	prices := trader.ResolvePrices(bookSource(sess), sess.quote, assets, held, trader.Routes{
		DefaultBase: currency.NewCode(sess.cfg.Rebalancer.DefaultBaseAsset),
		BackupBase:  currency.NewCode(sess.cfg.Rebalancer.BackupBaseAsset),
	})

	return trader.Plan{
		Balances:      balances,
		TargetWeights: weights,
		Quote:         sess.quote,
		Prices:        prices,
	}
}

func bookSource(sess *session) trader.BookSource {
	return func(pair currency.Pair) (*orderbook.Book, bool) {
		b, ok := sess.books[pair]
		return b, ok
	}
}
