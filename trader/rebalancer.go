// Package trader implements the portfolio Rebalancer of §4.6: given target
// weights and a live pricing view, derive the minimal sequence of market
// trades that drives an account toward the target.
package trader

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/order"
)

// TradeLeg is one planned trade: sell or buy base against quote, expressed
// as a base Volume (sells) or quote Notional (buys), matching the venue
// adapter's OrderRequest exclusive union.
type TradeLeg struct {
	Pair     currency.Pair
	Side     order.Side
	Volume   decimal.Decimal // set for sells
	Notional decimal.Decimal // set for buys, in quote units
}

// MinOrder reports the minimum tradeable base volume and quote notional for
// a pair, whichever floor binds per §4.6 step 3.
type MinOrder struct {
	MinVolume   decimal.Decimal
	MinNotional decimal.Decimal
}

// Plan is everything PlanTrades needs about one asset to route and size a
// trade against quote.
type Plan struct {
	Balances      map[currency.Code]decimal.Decimal
	TargetWeights map[currency.Code]decimal.Decimal
	Quote         currency.Code
	Prices        map[currency.Code]decimal.Decimal // quote-denominated price per asset; Prices[Quote] is implicitly 1
	MinOrders     map[currency.Code]MinOrder
}

// normalizedWeights returns target weights scaled to sum to 1; assets
// absent from p.TargetWeights are treated as target weight zero.
func normalizedWeights(weights map[currency.Code]decimal.Decimal) map[currency.Code]decimal.Decimal {
	total := decimal.Zero
	for _, w := range weights {
		total = total.Add(w)
	}
	if total.IsZero() {
		return weights
	}
	out := make(map[currency.Code]decimal.Decimal, len(weights))
	for code, w := range weights {
		out[code] = w.Div(total)
	}
	return out
}

func priceOf(prices map[currency.Code]decimal.Decimal, quote, code currency.Code) decimal.Decimal {
	if code.Equal(quote) {
		return decimal.NewFromInt(1)
	}
	return prices[code]
}

// Delta is one asset's normalized-target-weight gap against its current
// share of a Plan's portfolio value: negative means sell, positive means
// buy.
type Delta struct {
	Code   currency.Code
	Weight decimal.Decimal
}

// ComputeDeltas normalizes p.TargetWeights and returns every asset's
// non-zero weight delta against its current share of p.Balances (sorted
// sells before buys, then by code), plus the portfolio's total value in
// quote units.
func ComputeDeltas(p Plan) ([]Delta, decimal.Decimal, error) {
	targets := normalizedWeights(p.TargetWeights)

	total := decimal.Zero
	value := make(map[currency.Code]decimal.Decimal, len(p.Balances))
	for code, bal := range p.Balances {
		v := bal.Mul(priceOf(p.Prices, p.Quote, code))
		value[code] = v
		total = total.Add(v)
	}
	if total.IsZero() {
		return nil, decimal.Zero, ErrEmptyPortfolio
	}

	seen := make(map[*currency.Item]bool)
	for code := range p.Balances {
		seen[code.Item] = true
	}
	for code := range targets {
		seen[code.Item] = true
	}

	var deltas []Delta
	for item := range seen {
		code := currency.Code{Item: item}
		if code.Equal(p.Quote) {
			continue // never trade the quote asset against itself
		}
		current := value[code].Div(total)
		target := targets[code]
		d := target.Sub(current)
		if !d.IsZero() {
			deltas = append(deltas, Delta{Code: code, Weight: d})
		}
	}

	sort.Slice(deltas, func(i, j int) bool {
		if deltas[i].Weight.Sign() != deltas[j].Weight.Sign() {
			return deltas[i].Weight.Sign() < deltas[j].Weight.Sign() // sells (negative) first
		}
		return deltas[i].Code.String() < deltas[j].Code.String()
	})

	return deltas, total, nil
}

// PortfolioValue totals p.Balances in quote units via p.Prices, without
// recomputing target deltas. Used to refresh the total after sell legs
// fill, per §4.6 step 4, while reusing the weight deltas computed against
// the pre-sell portfolio.
func PortfolioValue(p Plan) decimal.Decimal {
	total := decimal.Zero
	for code, bal := range p.Balances {
		total = total.Add(bal.Mul(priceOf(p.Prices, p.Quote, code)))
	}
	return total
}

// SellLegs converts deltas' negative entries into sell TradeLegs sized
// against total, dropping any whose volume falls below its pair's minimum
// (§4.6 step 3).
func SellLegs(p Plan, deltas []Delta, total decimal.Decimal) []TradeLeg {
	var legs []TradeLeg
	for _, dl := range deltas {
		if dl.Weight.Sign() >= 0 {
			continue
		}
		price := priceOf(p.Prices, p.Quote, dl.Code)
		if price.Sign() <= 0 {
			continue // no route to price this asset, skip per §4.6 "log no route"
		}
		volume := dl.Weight.Neg().Mul(total).Div(price)
		if belowMin(volume, volume.Mul(price), p.MinOrders[dl.Code]) {
			continue
		}
		legs = append(legs, TradeLeg{Pair: currency.NewPair(dl.Code, p.Quote), Side: order.Sell, Volume: volume})
	}
	return legs
}

// buyLegsUnclamped sizes each positive delta's buy notional against total,
// dropping legs below their minimum, without regard to what quote balance
// is actually on hand — the sizing trade_to_portfolio's one-shot preview
// uses, and the starting point BuyLegs clamps down from.
func buyLegsUnclamped(p Plan, deltas []Delta, total decimal.Decimal) []TradeLeg {
	var legs []TradeLeg
	for _, dl := range deltas {
		if dl.Weight.Sign() <= 0 {
			continue
		}
		price := priceOf(p.Prices, p.Quote, dl.Code)
		if price.Sign() <= 0 {
			continue
		}
		notional := dl.Weight.Mul(total)
		volume := notional.Div(price)
		if belowMin(volume, notional, p.MinOrders[dl.Code]) {
			continue
		}
		legs = append(legs, TradeLeg{Pair: currency.NewPair(dl.Code, p.Quote), Side: order.Buy, Notional: notional})
	}
	return legs
}

// BuyLegs sizes buy legs via buyLegsUnclamped against total — intended to
// be the portfolio value recomputed *after* the sell legs have filled —
// then clamps cumulative notional to the quote balance actually in
// p.Balances[p.Quote] (§4.6 step 4): a leg that fits within what's left
// passes through unchanged, a leg that doesn't is shrunk to the remaining
// budget if that remainder still clears its minimum, and otherwise
// dropped. Mirrors trader.py:239-253.
func BuyLegs(p Plan, deltas []Delta, total decimal.Decimal) []TradeLeg {
	return clampToAvailableQuote(buyLegsUnclamped(p, deltas, total), p.Balances[p.Quote], p.MinOrders)
}

func clampToAvailableQuote(legs []TradeLeg, available decimal.Decimal, minOrders map[currency.Code]MinOrder) []TradeLeg {
	var out []TradeLeg
	spent := decimal.Zero
	for _, leg := range legs {
		switch remaining := available.Sub(spent); {
		case leg.Notional.Add(spent).LessThan(available):
			out = append(out, leg)
			spent = spent.Add(leg.Notional)
		case remaining.Sign() > 0 && remaining.GreaterThan(minOrders[leg.Pair.Base].MinNotional):
			leg.Notional = remaining
			out = append(out, leg)
			spent = available
		default:
			// not enough quote balance left to clear this leg's minimum, drop it.
		}
	}
	return out
}

// PlanTrades implements trade_to_portfolio in its all-at-once form: sell
// and buy legs are both sized from the same portfolio snapshot, without the
// sell-then-recompute staging §4.6 steps 3-5 call for. It remains useful
// for a dry-run preview or for sizing checks; production execution should
// call ComputeDeltas once, then SellLegs before the sells are placed and
// BuyLegs after their fills are observed and the portfolio recomputed, via
// PortfolioValue.
func PlanTrades(p Plan) ([]TradeLeg, error) {
	deltas, total, err := ComputeDeltas(p)
	if err != nil {
		return nil, err
	}
	legs := SellLegs(p, deltas, total)
	legs = append(legs, buyLegsUnclamped(p, deltas, total)...)
	return legs, nil
}

func belowMin(volume, notional decimal.Decimal, min MinOrder) bool {
	if min.MinVolume.Sign() > 0 && volume.LessThan(min.MinVolume) {
		return true
	}
	if min.MinNotional.Sign() > 0 && notional.LessThan(min.MinNotional) {
		return true
	}
	return false
}
