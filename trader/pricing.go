package trader

import (
	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/orderbook"
)

// BookSource resolves the live order book tracked for a pair, if any; it is
// satisfied by a plain map lookup over whatever books a session has
// subscribed.
type BookSource func(pair currency.Pair) (*orderbook.Book, bool)

// Routes carries the fallback bases §4.6's tie-break routes an unpriced
// asset through when it has no direct, inverse, or two-hop path to quote:
// a default base (BNB in the original) and a backup base (BTC), tried in
// that order.
type Routes struct {
	DefaultBase currency.Code
	BackupBase  currency.Code
}

// ResolvePrices implements §4.6's `prices(assets, quote)`: every asset in
// assets is resolved to a quote-denominated price by, in order,
//  1. a direct asset/quote market's mid price;
//  2. a quote/asset market's inverted mid price;
//  3. the arithmetic mean of every asset->middle->quote two-hop path through
//     an asset in held, combining whichever of the direct/inverse leg
//     exists on each hop (trader.py:107-120);
//
// and, if none of those resolve it, by retrying the same three steps with
// routes.DefaultBase or routes.BackupBase standing in for quote, then
// scaling the result by that base's own already-resolved quote price. An
// asset priced by none of the above is simply omitted, matching the
// original's "log no route" rather than erroring the whole batch.
func ResolvePrices(books BookSource, quote currency.Code, assets []currency.Code, held []currency.Code, routes Routes) map[currency.Code]decimal.Decimal {
	prices := make(map[currency.Code]decimal.Decimal, len(assets)+1)
	prices[quote] = decimal.NewFromInt(1)

	var unresolved []currency.Code
	for _, a := range assets {
		if a.Equal(quote) {
			continue
		}
		if p, ok := priceAgainst(books, a, quote, held); ok {
			prices[a] = p
			continue
		}
		unresolved = append(unresolved, a)
	}

	for _, a := range unresolved {
		for _, base := range []currency.Code{routes.DefaultBase, routes.BackupBase} {
			if base.IsEmpty() || base.Equal(quote) || base.Equal(a) {
				continue
			}
			basePrice, ok := prices[base]
			if !ok {
				continue // fallback base itself has no route to quote, can't chain through it
			}
			if p, ok := priceAgainst(books, a, base, held); ok {
				prices[a] = p.Mul(basePrice)
				break
			}
		}
	}

	return prices
}

// priceAgainst resolves a single asset's price in terms of base via the
// direct/inverse/two-hop ladder, independent of what base represents
// (quote itself, or a fallback routing base).
func priceAgainst(books BookSource, asset, base currency.Code, held []currency.Code) (decimal.Decimal, bool) {
	if p, ok := directPrice(books, asset, base); ok {
		return p, true
	}
	if p, ok := inversePrice(books, asset, base); ok {
		return p, true
	}
	return twoHopAverage(books, asset, base, held)
}

func directPrice(books BookSource, base, quote currency.Code) (decimal.Decimal, bool) {
	book, ok := books(currency.NewPair(base, quote))
	if !ok {
		return decimal.Zero, false
	}
	mid, err := book.MidPrice()
	if err != nil || mid.Sign() <= 0 {
		return decimal.Zero, false
	}
	return mid, true
}

func inversePrice(books BookSource, base, quote currency.Code) (decimal.Decimal, bool) {
	mid, ok := directPrice(books, quote, base)
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(1).Div(mid), true
}

// twoHopAverage averages asset/middle * middle/quote over every middle
// asset in held for which both legs resolve directly or inversely,
// mirroring the four direct/inverse combinations trader.py:107-120 checks
// per candidate middle asset.
func twoHopAverage(books BookSource, asset, quote currency.Code, held []currency.Code) (decimal.Decimal, bool) {
	sum := decimal.Zero
	n := 0
	for _, middle := range held {
		if middle.Equal(asset) || middle.Equal(quote) {
			continue
		}
		first, ok := directPrice(books, asset, middle)
		if !ok {
			first, ok = inversePrice(books, asset, middle)
		}
		if !ok {
			continue
		}
		second, ok := directPrice(books, middle, quote)
		if !ok {
			second, ok = inversePrice(books, middle, quote)
		}
		if !ok {
			continue
		}
		sum = sum.Add(first.Mul(second))
		n++
	}
	if n == 0 {
		return decimal.Zero, false
	}
	return sum.Div(decimal.NewFromInt(int64(n))), true
}
