package trader

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/order"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPlanTradesAlreadyBalancedProducesNoLegs(t *testing.T) {
	t.Parallel()

	legs, err := PlanTrades(Plan{
		Balances: map[currency.Code]decimal.Decimal{
			currency.BTC:  dec("0.5"),
			currency.USDT: dec("20000"),
		},
		TargetWeights: map[currency.Code]decimal.Decimal{
			currency.BTC:  dec("0.5"),
			currency.USDT: dec("0.5"),
		},
		Quote: currency.USDT,
		Prices: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("40000"),
		},
	})
	require.NoError(t, err)
	assert.Empty(t, legs, "portfolio already at target, no trades expected")
}

func TestPlanTradesSellsThenBuys(t *testing.T) {
	t.Parallel()

	legs, err := PlanTrades(Plan{
		Balances: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("1.0"),
		},
		TargetWeights: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("0.5"),
			currency.ETH: dec("0.5"),
		},
		Quote: currency.USDT,
		Prices: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("40000"),
			currency.ETH: dec("2000"),
		},
	})
	require.NoError(t, err)
	require.Len(t, legs, 2)

	sell := legs[0]
	assert.Equal(t, order.Sell, sell.Side)
	assert.Equal(t, currency.BTC, sell.Pair.Base)
	assert.True(t, sell.Volume.Equal(dec("0.5")), "expected sell of 0.5 BTC, got %s", sell.Volume)

	buy := legs[1]
	assert.Equal(t, order.Buy, buy.Side)
	assert.Equal(t, currency.ETH, buy.Pair.Base)
	assert.True(t, buy.Notional.Equal(dec("20000")), "expected buy notional of 20000 USDT, got %s", buy.Notional)
}

func TestPlanTradesDropsLegBelowMinimum(t *testing.T) {
	t.Parallel()

	legs, err := PlanTrades(Plan{
		Balances: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("1.0"),
		},
		TargetWeights: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("0.999"),
			currency.ETH: dec("0.001"),
		},
		Quote: currency.USDT,
		Prices: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("40000"),
			currency.ETH: dec("2000"),
		},
		MinOrders: map[currency.Code]MinOrder{
			currency.ETH: {MinNotional: dec("100")},
		},
	})
	require.NoError(t, err)
	require.Len(t, legs, 1, "ETH leg notional is 40 USDT, below the 100 minimum; only the BTC sell remains")
	assert.Equal(t, order.Sell, legs[0].Side)
	assert.Equal(t, currency.BTC, legs[0].Pair.Base)
}

func TestPlanTradesSkipsAssetWithNoRoute(t *testing.T) {
	t.Parallel()

	legs, err := PlanTrades(Plan{
		Balances: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("1.0"),
		},
		TargetWeights: map[currency.Code]decimal.Decimal{
			currency.BTC:                 dec("0.5"),
			currency.NewCode("OBSCURE"): dec("0.5"),
		},
		Quote: currency.USDT,
		Prices: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("40000"),
		},
	})
	require.NoError(t, err)
	require.Len(t, legs, 1, "only the priced BTC leg should be planned")
	assert.Equal(t, currency.BTC, legs[0].Pair.Base)
}

// TestStagedRebalanceRecomputesBuyFromPostSellProceeds exercises §8
// scenario 5: selling 0.5 BTC for USDT, then sizing the ETH buy from the
// proceeds actually received rather than the pre-sell total.
func TestStagedRebalanceRecomputesBuyFromPostSellProceeds(t *testing.T) {
	t.Parallel()

	plan := Plan{
		Balances: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("1.0"),
		},
		TargetWeights: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("0.5"),
			currency.ETH: dec("0.5"),
		},
		Quote: currency.USDT,
		Prices: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("40000"),
			currency.ETH: dec("2000"),
		},
	}

	deltas, total, err := ComputeDeltas(plan)
	require.NoError(t, err)

	sells := SellLegs(plan, deltas, total)
	require.Len(t, sells, 1)
	assert.Equal(t, order.Sell, sells[0].Side)
	assert.True(t, sells[0].Volume.Equal(dec("0.5")))

	// The sell filled, after a fee, for slightly less than the mid-price
	// notional: the account now actually holds 19990 USDT, not the 20000 a
	// pre-sell, fee-blind total would imply.
	plan.Balances[currency.BTC] = dec("0.5")
	plan.Balances[currency.USDT] = dec("19990")
	postSellTotal := PortfolioValue(plan)

	buys := BuyLegs(plan, deltas, postSellTotal)
	require.Len(t, buys, 1)
	assert.Equal(t, order.Buy, buys[0].Side)
	assert.Equal(t, currency.ETH, buys[0].Pair.Base)
	assert.True(t, buys[0].Notional.Equal(dec("19990")), "buy notional must be clamped to the quote actually received, got %s", buys[0].Notional)
}

func TestBuyLegsShrinksTrailingLegToRemainingQuoteBudget(t *testing.T) {
	t.Parallel()

	plan := Plan{
		Balances: map[currency.Code]decimal.Decimal{
			currency.USDT: dec("15000"),
		},
		Quote: currency.USDT,
		Prices: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("40000"),
			currency.ETH: dec("2000"),
		},
	}
	deltas := []Delta{
		{Code: currency.BTC, Weight: dec("0.3")},
		{Code: currency.ETH, Weight: dec("0.7")},
	}
	total := dec("40000")

	buys := BuyLegs(plan, deltas, total)
	require.Len(t, buys, 2)
	assert.True(t, buys[0].Notional.Equal(dec("12000")), "first buy fits inside budget unshrunk")
	assert.True(t, buys[1].Notional.Equal(dec("3000")), "second buy shrinks to whatever budget remains")
}

func TestBuyLegsDropsLegWhenNoQuoteBudgetRemains(t *testing.T) {
	t.Parallel()

	plan := Plan{
		Balances: map[currency.Code]decimal.Decimal{},
		Quote:    currency.USDT,
		Prices: map[currency.Code]decimal.Decimal{
			currency.BTC: dec("40000"),
		},
	}
	deltas := []Delta{{Code: currency.BTC, Weight: dec("0.5")}}

	buys := BuyLegs(plan, deltas, dec("40000"))
	assert.Empty(t, buys, "zero quote balance on hand leaves nothing to clamp a buy into")
}

func TestPlanTradesRejectsZeroValuePortfolio(t *testing.T) {
	t.Parallel()

	_, err := PlanTrades(Plan{
		Balances:      map[currency.Code]decimal.Decimal{currency.BTC: decimal.Zero},
		TargetWeights: map[currency.Code]decimal.Decimal{currency.BTC: dec("1")},
		Quote:         currency.USDT,
		Prices:        map[currency.Code]decimal.Decimal{currency.BTC: dec("40000")},
	})
	assert.ErrorIs(t, err, ErrEmptyPortfolio)
}
