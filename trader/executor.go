package trader

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/exchanges/asset"
	"github.com/lumenfx/tradecore/exchanges/order"
	"github.com/lumenfx/tradecore/exchanges/orderbook"
	"github.com/lumenfx/tradecore/exchanges/venue"
	"github.com/lumenfx/tradecore/internal/log"
)

// RepriceConfig controls the limit-order execution variant: place at the
// near touch, wait, and reprice to the new touch if the leg hasn't filled
// before the deadline. MaxSlippage bounds how far a reprice may chase the
// touch away from the mid price observed when the leg was first placed
// (§4.6 step 6); the zero value leaves repricing unbounded.
type RepriceConfig struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxSlippage decimal.Decimal
}

// DefaultRepriceConfig matches the cadence used in §4.6's worked examples.
var DefaultRepriceConfig = RepriceConfig{
	Interval: time.Second,
	Timeout:  30 * time.Second,
}

// Executor places the legs a Plan produces against one venue, either as
// market orders (immediate, crosses the spread) or as repriced limit
// orders (passive, bounded by RepriceConfig.Timeout).
type Executor struct {
	Adapter venue.Adapter
	Creds   venue.Credentials
	Asset   asset.Item
	Log     log.Logger
}

// ExecuteMarket places every leg as an immediate market order and returns
// the resulting order details in leg order; a leg that fails to place does
// not block the remaining legs, its error is returned alongside others.
func (e Executor) ExecuteMarket(ctx context.Context, legs []TradeLeg) ([]*order.Detail, error) {
	results := make([]*order.Detail, 0, len(legs))
	var firstErr error
	for _, leg := range legs {
		req := venue.OrderRequest{
			Pair:  leg.Pair,
			Asset: e.Asset,
			Side:  leg.Side,
			Type:  order.Market,
		}
		if leg.Side == order.Sell {
			req.Volume = leg.Volume
		} else {
			req.QuoteVolume = leg.Notional
		}
		if err := req.Validate(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		detail, err := e.Adapter.PlaceOrder(ctx, e.Creds, req)
		if err != nil {
			e.Log.Error().Err(err).Str("pair", leg.Pair.String()).Msg("rebalance leg placement failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, detail)
	}
	return results, firstErr
}

// ExecuteLimit places leg as a passive limit order at the near touch of
// book, waiting up to cfg.Timeout and repricing every cfg.Interval to the
// current touch if the order hasn't terminated. It cancels and returns
// ErrRepriceTimeout if the deadline passes with the order still open.
func (e Executor) ExecuteLimit(ctx context.Context, leg TradeLeg, book *orderbook.Book, cfg RepriceConfig) (*order.Detail, error) {
	deadline := time.Now().Add(cfg.Timeout)
	initialMid, midErr := book.MidPrice()

	volume := leg.Volume
	if volume.IsZero() && !leg.Notional.IsZero() {
		bid, ask, err := book.BestBidAsk()
		if err != nil {
			return nil, err
		}
		ref := ask.Price
		if leg.Side == order.Sell {
			ref = bid.Price
		}
		if ref.Sign() > 0 {
			volume = leg.Notional.Div(ref)
		}
	}

	var current *order.Detail
	for {
		price, err := touchPrice(book, leg.Side)
		if err != nil {
			return nil, err
		}
		if midErr == nil && cfg.MaxSlippage.Sign() > 0 {
			price = clampSlippage(price, initialMid, leg.Side, cfg.MaxSlippage)
		}

		if current == nil {
			req := venue.OrderRequest{
				Pair:   leg.Pair,
				Asset:  e.Asset,
				Side:   leg.Side,
				Type:   order.Limit,
				Price:  price,
				Volume: volume,
			}
			current, err = e.Adapter.PlaceOrder(ctx, e.Creds, req)
			if err != nil {
				return nil, err
			}
		} else if !current.Price.Equal(price) {
			if err := e.Adapter.CancelOrder(ctx, e.Creds, current.ID); err != nil {
				return nil, err
			}
			req := venue.OrderRequest{
				Pair:   leg.Pair,
				Asset:  e.Asset,
				Side:   leg.Side,
				Type:   order.Limit,
				Price:  price,
				Volume: volume.Sub(current.RecordedFills),
			}
			current, err = e.Adapter.PlaceOrder(ctx, e.Creds, req)
			if err != nil {
				return nil, err
			}
		}

		if current.Status.IsTerminal() {
			return current, nil
		}

		if time.Now().After(deadline) {
			_ = e.Adapter.CancelOrder(ctx, e.Creds, current.ID)
			return current, ErrRepriceTimeout
		}

		select {
		case <-ctx.Done():
			return current, ctx.Err()
		case <-time.After(cfg.Interval):
		}
	}
}

// clampSlippage bounds a reprice candidate to within maxSlippage of
// initialMid, mirroring limit_trade's reprice guard (trader.py:304-309): a
// buy may not chase the touch above initialMid/(1-maxSlippage), a sell may
// not chase it below initialMid*(1-maxSlippage).
func clampSlippage(price, initialMid decimal.Decimal, side order.Side, maxSlippage decimal.Decimal) decimal.Decimal {
	if initialMid.Sign() <= 0 || maxSlippage.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return price
	}
	headroom := decimal.NewFromInt(1).Sub(maxSlippage)
	if side == order.Buy {
		ceiling := initialMid.Div(headroom)
		if price.GreaterThan(ceiling) {
			return ceiling
		}
		return price
	}
	floor := initialMid.Mul(headroom)
	if price.LessThan(floor) {
		return floor
	}
	return price
}

func touchPrice(book *orderbook.Book, side order.Side) (decimal.Decimal, error) {
	bid, ask, err := book.BestBidAsk()
	if err != nil {
		return decimal.Zero, err
	}
	if side == order.Buy {
		return bid.Price, nil
	}
	return ask.Price, nil
}
