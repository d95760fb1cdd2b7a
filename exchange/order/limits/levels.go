package limits

import (
	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/common/key"
	"github.com/lumenfx/tradecore/exchanges/order"
)

// MinMaxLevel is a single venue's execution constraints for one market:
// price/amount bounds and step increments, plus the analogous bounds that
// apply only to market orders. All methods are nil-receiver safe since a
// market with no loaded limits should impose none.
type MinMaxLevel struct {
	Key key.ExchangeAssetPair

	MinPrice float64
	MaxPrice float64

	MinNotional float64

	PriceStepIncrementSize  float64
	AmountStepIncrementSize float64

	MinimumBaseAmount float64
	MaximumBaseAmount float64

	MinimumQuoteAmount float64
	MaximumQuoteAmount float64

	MarketMinQty            float64
	MarketMaxQty            float64
	MarketStepIncrementSize float64
}

// Validate checks price and amount against every bound configured on the
// level, picking market-order-specific bounds when orderType is a market
// order. A nil level imposes no constraints.
func (m *MinMaxLevel) Validate(price, amount float64, orderType order.Type) error {
	if m == nil {
		return nil
	}

	if m.MinNotional > 0 && price*amount < m.MinNotional {
		return ErrNotionalValue
	}

	if m.PriceStepIncrementSize > 0 && !conformsToStep(price, m.PriceStepIncrementSize) {
		return ErrPriceExceedsStep
	}

	if orderType == order.Market {
		if m.MarketMinQty > 0 && amount < m.MarketMinQty {
			return ErrMarketAmountBelowMin
		}
		if m.MarketMaxQty > 0 && amount > m.MarketMaxQty {
			return ErrMarketAmountExceedsMax
		}
		if m.MarketStepIncrementSize > 0 && !conformsToStep(amount, m.MarketStepIncrementSize) {
			return ErrMarketAmountExceedsStep
		}
	} else if m.AmountStepIncrementSize > 0 && !conformsToStep(amount, m.AmountStepIncrementSize) {
		return ErrAmountExceedsStep
	}

	if m.MinimumBaseAmount > 0 && amount < m.MinimumBaseAmount {
		return ErrAmountBelowMin
	}
	if m.MaximumBaseAmount > 0 && amount > m.MaximumBaseAmount {
		return ErrAmountExceedsMax
	}

	return nil
}

func conformsToStep(value, step float64) bool {
	v := decimal.NewFromFloat(value)
	s := decimal.NewFromFloat(step)
	return v.Mod(s).IsZero()
}

// FloorAmountToStepIncrementDecimal truncates amount down to the nearest
// multiple of the configured amount step, without rounding up. A nil
// receiver or unset step returns amount unchanged.
func (m *MinMaxLevel) FloorAmountToStepIncrementDecimal(amount decimal.Decimal) decimal.Decimal {
	if m == nil || m.AmountStepIncrementSize <= 0 {
		return amount
	}
	return floorToStep(amount, decimal.NewFromFloat(m.AmountStepIncrementSize))
}

// FloorAmountToStepIncrement is the float64 convenience wrapper around
// FloorAmountToStepIncrementDecimal.
func (m *MinMaxLevel) FloorAmountToStepIncrement(amount float64) float64 {
	f, _ := m.FloorAmountToStepIncrementDecimal(decimal.NewFromFloat(amount)).Float64()
	return f
}

// FloorPriceToStepIncrement is the price-side counterpart of
// FloorAmountToStepIncrement.
func (m *MinMaxLevel) FloorPriceToStepIncrement(price float64) float64 {
	if m == nil || m.PriceStepIncrementSize <= 0 {
		return price
	}
	f, _ := floorToStep(decimal.NewFromFloat(price), decimal.NewFromFloat(m.PriceStepIncrementSize)).Float64()
	return f
}

func floorToStep(value, step decimal.Decimal) decimal.Decimal {
	if step.Sign() <= 0 {
		return value
	}
	units := value.Div(step).Floor()
	return units.Mul(step)
}
