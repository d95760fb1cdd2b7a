// Package position implements the futures Position value type and the
// fill-application rules of §4.5: opening, averaging, partial/flipping
// through zero, and the PnL/margin bookkeeping that goes with each.
package position

import (
	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/order"
)

// Position is a single futures market's net exposure.
type Position struct {
	Pair   currency.Pair
	Side   order.Side // Buy = long, Sell = short
	Volume decimal.Decimal
	EntryPrice      decimal.Decimal
	MarginRequirement decimal.Decimal
	PnL               decimal.Decimal
}

// IsOpen reports whether the position still carries any volume.
func (p *Position) IsOpen() bool {
	return p != nil && p.Volume.Sign() > 0
}

// signed returns the position's volume signed by side: positive for long,
// negative for short, used to combine with an incoming fill's signed
// volume when deciding same-side vs opposite-side vs flip.
func signed(side order.Side, volume decimal.Decimal) decimal.Decimal {
	if side == order.Sell {
		return volume.Neg()
	}
	return volume
}

// ApplyFill folds a fill of fillSide/fillVolume at fillPrice into the
// position, given leverage, returning the realized PnL delta to credit to
// collateral (zero unless the fill was wholly or partly opposite-side).
// p may be nil, representing "no existing position"; callers must replace
// their stored pointer with the returned Position, which is nil once the
// position has been fully closed.
func ApplyFill(p *Position, pair currency.Pair, fillSide order.Side, fillVolume, fillPrice, leverage decimal.Decimal) (next *Position, realizedPnL decimal.Decimal) {
	notional := fillVolume.Mul(fillPrice)
	margin := decimal.Zero
	if leverage.Sign() > 0 {
		margin = notional.Div(leverage)
	}

	if p == nil || p.Volume.IsZero() {
		return &Position{
			Pair:              pair,
			Side:              fillSide,
			Volume:            fillVolume,
			EntryPrice:        fillPrice,
			MarginRequirement: margin,
		}, decimal.Zero
	}

	if fillSide == p.Side {
		// same side: volume-weighted average entry, margin grows linearly.
		totalNotional := p.Volume.Mul(p.EntryPrice).Add(notional)
		newVolume := p.Volume.Add(fillVolume)
		return &Position{
			Pair:              pair,
			Side:              p.Side,
			Volume:            newVolume,
			EntryPrice:        totalNotional.Div(newVolume),
			MarginRequirement: p.MarginRequirement.Add(margin),
		}, decimal.Zero
	}

	// opposite side: realize PnL on min(existing, incoming) volume.
	closeVolume := fillVolume
	if p.Volume.LessThan(closeVolume) {
		closeVolume = p.Volume
	}

	direction := decimal.NewFromInt(1)
	if p.Side == order.Sell {
		direction = decimal.NewFromInt(-1)
	}
	realizedPnL = direction.Mul(fillPrice.Sub(p.EntryPrice)).Mul(closeVolume)

	netSigned := signed(p.Side, p.Volume).Add(signed(fillSide, fillVolume))

	switch {
	case netSigned.IsZero():
		return nil, realizedPnL
	case (p.Side == order.Buy) == (netSigned.Sign() > 0):
		// same side as before, just reduced: margin shrinks proportionally.
		remaining := p.Volume.Sub(closeVolume)
		ratio := decimal.NewFromInt(1)
		if p.Volume.Sign() > 0 {
			ratio = remaining.Div(p.Volume)
		}
		return &Position{
			Pair:              pair,
			Side:              p.Side,
			Volume:            remaining,
			EntryPrice:        p.EntryPrice,
			MarginRequirement: p.MarginRequirement.Mul(ratio),
		}, realizedPnL
	default:
		// flipped through zero: re-anchor entry to the crossing fill price,
		// margin requirement is rebuilt from the new net notional.
		newSide := order.Buy
		newVolume := netSigned
		if netSigned.Sign() < 0 {
			newSide = order.Sell
			newVolume = netSigned.Neg()
		}
		newMargin := decimal.Zero
		if leverage.Sign() > 0 {
			newMargin = newVolume.Mul(fillPrice).Div(leverage)
		}
		return &Position{
			Pair:              pair,
			Side:              newSide,
			Volume:            newVolume,
			EntryPrice:        fillPrice,
			MarginRequirement: newMargin,
		}, realizedPnL
	}
}
