package market

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/asset"
	"github.com/lumenfx/tradecore/exchanges/order"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRenderVolumeFloors(t *testing.T) {
	t.Parallel()
	m := &Market{Kind: asset.Spot, Pair: currency.NewBTCUSDT(), SizeIncrement: dec("0.001")}
	assert.True(t, dec("1.234").Equal(m.RenderVolume(dec("1.2345"))))
	assert.True(t, dec("0").Equal(m.RenderVolume(dec("0.0009"))))
}

func TestRenderPriceBuyFloorsSellCeils(t *testing.T) {
	t.Parallel()
	m := &Market{PriceIncrement: dec("0.5")}
	assert.True(t, dec("100").Equal(m.RenderPrice(dec("100.3"), order.Buy)))
	assert.True(t, dec("100.5").Equal(m.RenderPrice(dec("100.3"), order.Sell)))
}

func TestRenderPriceTickAlignedRoundTrips(t *testing.T) {
	t.Parallel()
	m := &Market{PriceIncrement: dec("0.01")}
	assert.True(t, dec("123.45").Equal(m.RenderPrice(dec("123.45"), order.Buy)))
	assert.True(t, dec("123.45").Equal(m.RenderPrice(dec("123.45"), order.Sell)))
}

func TestMeetsMinimums(t *testing.T) {
	t.Parallel()
	m := &Market{MinProvideSize: dec("0.01"), MinQuoteVolume: dec("10")}
	assert.False(t, m.MeetsMinimums(dec("100"), dec("0.001")), "below min provide size")
	assert.False(t, m.MeetsMinimums(dec("5"), dec("1")), "below min notional")
	assert.True(t, m.MeetsMinimums(dec("100"), dec("1")))
}
