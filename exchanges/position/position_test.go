package position

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/order"
)

func perp() currency.Pair {
	return currency.NewPair(currency.BTC, currency.PERP)
}

func TestApplyFillOpensPosition(t *testing.T) {
	t.Parallel()
	p, pnl := ApplyFill(nil, perp(), order.Buy, decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.NewFromInt(10))
	require.NotNil(t, p)
	assert.True(t, pnl.IsZero())
	assert.Equal(t, order.Buy, p.Side)
	assert.True(t, decimal.NewFromInt(1).Equal(p.Volume))
	assert.True(t, decimal.NewFromInt(100).Equal(p.EntryPrice))
	assert.True(t, decimal.NewFromInt(10).Equal(p.MarginRequirement))
}

func TestApplyFillSameSideAverages(t *testing.T) {
	t.Parallel()
	p, _ := ApplyFill(nil, perp(), order.Buy, decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.NewFromInt(10))
	p, pnl := ApplyFill(p, perp(), order.Buy, decimal.NewFromInt(1), decimal.NewFromInt(120), decimal.NewFromInt(10))
	assert.True(t, pnl.IsZero())
	assert.True(t, decimal.NewFromInt(2).Equal(p.Volume))
	assert.True(t, decimal.NewFromInt(110).Equal(p.EntryPrice), "entry price must be volume-weighted average")
}

func TestApplyFillOppositeSidePartialReduce(t *testing.T) {
	t.Parallel()
	p, _ := ApplyFill(nil, perp(), order.Buy, decimal.NewFromInt(2), decimal.NewFromInt(100), decimal.NewFromInt(10))
	p, pnl := ApplyFill(p, perp(), order.Sell, decimal.NewFromInt(1), decimal.NewFromInt(150), decimal.NewFromInt(10))
	require.NotNil(t, p)
	assert.Equal(t, order.Buy, p.Side)
	assert.True(t, decimal.NewFromInt(1).Equal(p.Volume))
	assert.True(t, decimal.NewFromInt(50).Equal(pnl), "long closed at a higher price realizes positive pnl")
	assert.True(t, decimal.NewFromInt(10).Equal(p.MarginRequirement), "margin halves with volume")
}

func TestApplyFillClosesExactly(t *testing.T) {
	t.Parallel()
	p, _ := ApplyFill(nil, perp(), order.Buy, decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.NewFromInt(10))
	p, pnl := ApplyFill(p, perp(), order.Sell, decimal.NewFromInt(1), decimal.NewFromInt(90), decimal.NewFromInt(10))
	assert.Nil(t, p, "fully closed position must be deleted")
	assert.True(t, decimal.NewFromInt(-10).Equal(pnl), "long closed at a lower price realizes negative pnl")
}

func TestApplyFillFlipsThroughZero(t *testing.T) {
	t.Parallel()
	p, _ := ApplyFill(nil, perp(), order.Buy, decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.NewFromInt(10))
	p, pnl := ApplyFill(p, perp(), order.Sell, decimal.NewFromInt(3), decimal.NewFromInt(100), decimal.NewFromInt(10))
	require.NotNil(t, p)
	assert.Equal(t, order.Sell, p.Side, "net signed volume crossed zero into short")
	assert.True(t, decimal.NewFromInt(2).Equal(p.Volume))
	assert.True(t, decimal.NewFromInt(100).Equal(p.EntryPrice), "entry price re-anchors to the crossing fill")
	assert.True(t, pnl.IsZero(), "closing the long at its own entry price realizes no pnl")
}
