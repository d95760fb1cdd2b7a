// Package market holds the Market and BookTicker value types (§3, §4.7):
// immutable per-venue market metadata and tick/precision-aware rendering of
// prices and volumes for order submission.
package market

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/asset"
	"github.com/lumenfx/tradecore/exchanges/order"
)

// Market is immutable venue metadata for one tradable symbol, created at
// connect() and destroyed only on venue close.
type Market struct {
	Kind asset.Item
	Pair currency.Pair

	// VenueSymbolName is the venue's own wire-format symbol, e.g. "BTCUSDT".
	VenueSymbolName string

	PriceIncrement    decimal.Decimal
	SizeIncrement     decimal.Decimal
	MinProvideSize    decimal.Decimal
	MinQuoteVolume    decimal.Decimal
	BasePrecision     int32
	QuotePrecision    int32
}

// BookTicker is the best-bid/best-ask summary updated from a venue's
// dedicated ticker stream, read-only to every component but the one
// updating it.
type BookTicker struct {
	Pair      currency.Pair
	BidPrice  decimal.Decimal
	BidVolume decimal.Decimal
	AskPrice  decimal.Decimal
	AskVolume decimal.Decimal
	Time      time.Time
}

// epsilon nudges a value a hair past its tick-aligned floor/ceil boundary
// before truncating, defeating binary-float rounding noise (e.g. 0.1+0.2
// landing a few ULPs short of the intended tick multiple).
var epsilon = decimal.New(1, -12)

// RenderVolume floor-aligns volume to the market's size increment: §4.7's
// floor(value/tick)*tick, used for both order volumes and lot-size checks.
func (m *Market) RenderVolume(volume decimal.Decimal) decimal.Decimal {
	return floorToTick(volume, m.SizeIncrement)
}

// RenderPrice aligns price to the market's price increment, flooring for
// buy-side limit prices and ceiling for sell-side ones so a resting limit
// order never crosses the intended price by rounding the wrong direction.
func (m *Market) RenderPrice(price decimal.Decimal, side order.Side) decimal.Decimal {
	if side == order.Sell {
		return ceilToTick(price, m.PriceIncrement)
	}
	return floorToTick(price, m.PriceIncrement)
}

func floorToTick(value, tick decimal.Decimal) decimal.Decimal {
	if tick.Sign() <= 0 {
		return value
	}
	units := value.Add(epsilon).Div(tick).Floor()
	return units.Mul(tick)
}

func ceilToTick(value, tick decimal.Decimal) decimal.Decimal {
	if tick.Sign() <= 0 {
		return value
	}
	units := value.Sub(epsilon).Div(tick).Ceil()
	return units.Mul(tick)
}

// MeetsMinimums reports whether an order of volume at price clears both the
// market's minimum provide size (lot-size floor) and minimum quote volume
// (notional floor); §4.6 drops any trade leg failing either.
func (m *Market) MeetsMinimums(price, volume decimal.Decimal) bool {
	if m.MinProvideSize.Sign() > 0 && volume.LessThan(m.MinProvideSize) {
		return false
	}
	notional := price.Mul(volume)
	if m.MinQuoteVolume.Sign() > 0 && notional.LessThan(m.MinQuoteVolume) {
		return false
	}
	return true
}
