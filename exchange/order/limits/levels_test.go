package limits

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfx/tradecore/exchanges/order"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	tt := &MinMaxLevel{}
	err := tt.Validate(0, 0, order.Limit)
	require.NoError(t, err)

	tt = &MinMaxLevel{MinNotional: 100}
	err = tt.Validate(1, 1, order.Limit)
	assert.ErrorIs(t, err, ErrNotionalValue)

	err = tt.Validate(200, .5, order.Limit)
	assert.NoError(t, err)

	tt.PriceStepIncrementSize = 0.001
	err = tt.Validate(200.0001, .5, order.Limit)
	assert.ErrorIs(t, err, ErrPriceExceedsStep)

	err = tt.Validate(200.004, .5, order.Limit)
	assert.NoError(t, err)

	tt.AmountStepIncrementSize = 0.001
	err = tt.Validate(1000000, .0002, order.Limit)
	assert.ErrorIs(t, err, ErrAmountExceedsStep)

	err = tt.Validate(200000, .003, order.Limit)
	assert.NoError(t, err)

	tt.MinimumBaseAmount = 1
	tt.MaximumBaseAmount = 10
	tt.MarketMinQty = 1.1
	tt.MarketMaxQty = 9.9

	err = tt.Validate(200000, 1, order.Market)
	assert.ErrorIs(t, err, ErrMarketAmountBelowMin)

	err = tt.Validate(200000, 10, order.Market)
	assert.ErrorIs(t, err, ErrMarketAmountExceedsMax)

	tt.MarketStepIncrementSize = 5
	err = tt.Validate(200000, 9.5, order.Market)
	assert.ErrorIs(t, err, ErrMarketAmountExceedsStep)

	err = tt.Validate(200000, 5, order.Market)
	assert.NoError(t, err)

	tt = &MinMaxLevel{MinimumBaseAmount: 0.1}
	err = tt.Validate(0, 0, order.Market)
	assert.ErrorIs(t, err, ErrAmountBelowMin)

	tt.MaximumBaseAmount = 0.5
	err = tt.Validate(0, 0.6, order.Market)
	assert.ErrorIs(t, err, ErrAmountExceedsMax)

	tt.AmountStepIncrementSize = 0.1
	err = tt.Validate(0, 0.1337, order.Limit)
	assert.ErrorIs(t, err, ErrAmountExceedsStep)

	tt = nil
	err = tt.Validate(0, 0, order.Limit)
	assert.NoError(t, err)
}

func TestFloorAmountToStepIncrementDecimal(t *testing.T) {
	t.Parallel()
	tt := &MinMaxLevel{}
	val := tt.FloorAmountToStepIncrementDecimal(decimal.NewFromFloat(1.001))
	assert.Equal(t, "1.001", val.String())

	tt.AmountStepIncrementSize = 0.001
	val = tt.FloorAmountToStepIncrementDecimal(decimal.NewFromFloat(1.001))
	assert.Equal(t, "1.001", val.String())

	val = tt.FloorAmountToStepIncrementDecimal(decimal.NewFromFloat(0.0001))
	assert.Equal(t, "0", val.String())

	val = tt.FloorAmountToStepIncrementDecimal(decimal.NewFromFloat(0.7777))
	assert.Equal(t, "0.777", val.String())

	tt.AmountStepIncrementSize = 100
	val = tt.FloorAmountToStepIncrementDecimal(decimal.NewFromInt(100))
	assert.Equal(t, "100", val.String())

	val = tt.FloorAmountToStepIncrementDecimal(decimal.NewFromInt(200))
	assert.Equal(t, "200", val.String())

	val = tt.FloorAmountToStepIncrementDecimal(decimal.NewFromInt(150))
	assert.Equal(t, "100", val.String())

	tt = nil
	val = tt.FloorAmountToStepIncrementDecimal(decimal.NewFromInt(150))
	assert.Equal(t, "150", val.String())
}

func TestFloorAmountToStepIncrement(t *testing.T) {
	t.Parallel()
	tt := &MinMaxLevel{}
	assert.Equal(t, 1.0, tt.FloorAmountToStepIncrement(1.0))

	tt.AmountStepIncrementSize = 0.001
	assert.Equal(t, 1.001, tt.FloorAmountToStepIncrement(1.001))
	assert.Zero(t, tt.FloorAmountToStepIncrement(0.0001))
	assert.Equal(t, 0.777, tt.FloorAmountToStepIncrement(0.7777))

	tt.AmountStepIncrementSize = 100
	assert.Equal(t, 100.0, tt.FloorAmountToStepIncrement(100))
	assert.Equal(t, 200.0, tt.FloorAmountToStepIncrement(200))
	assert.Equal(t, 100.0, tt.FloorAmountToStepIncrement(150))

	tt = nil
	assert.Equal(t, 150.0, tt.FloorAmountToStepIncrement(150))
}

func TestFloorPriceToStepIncrement(t *testing.T) {
	t.Parallel()
	tt := &MinMaxLevel{}
	assert.Equal(t, 1.0, tt.FloorPriceToStepIncrement(1.0))

	tt.PriceStepIncrementSize = 1
	assert.Equal(t, 1.0, tt.FloorPriceToStepIncrement(1.5))
	assert.Equal(t, 0.0, tt.FloorPriceToStepIncrement(0.5))

	tt = nil
	assert.Equal(t, 1.0, tt.FloorPriceToStepIncrement(1.0))
}
