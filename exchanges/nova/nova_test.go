package nova

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/asset"
	"github.com/lumenfx/tradecore/exchanges/market"
	"github.com/lumenfx/tradecore/exchanges/order"
	"github.com/lumenfx/tradecore/exchanges/orderbook"
	"github.com/lumenfx/tradecore/exchanges/venue"
	"github.com/lumenfx/tradecore/internal/log"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMarketWireToMarket(t *testing.T) {
	t.Parallel()

	w := marketWire{
		Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT", Kind: "spot",
		PriceIncrement: "0.01", SizeIncrement: "0.0001",
		MinProvideSize: "0.0001", MinQuoteVolume: "10",
		BasePrecision: 6, QuotePrecision: 2,
	}

	m, err := w.toMarket()
	require.NoError(t, err)
	assert.Equal(t, asset.Spot, m.Kind)
	assert.Equal(t, "BTC", m.Pair.Base.String())
	assert.True(t, m.PriceIncrement.Equal(dec("0.01")))
	assert.Equal(t, "BTCUSDT", m.VenueSymbolName)
}

func TestMarketWireToMarketRejectsUnknownKind(t *testing.T) {
	t.Parallel()
	_, err := marketWire{Kind: "exotic_thing"}.toMarket()
	assert.Error(t, err)
}

func TestOrderWireToDetail(t *testing.T) {
	t.Parallel()

	w := orderWire{
		OrderID: "o1", Market: "BTCUSDT", Side: "BUY", Type: "LIMIT",
		Price: "40000", Size: "1", FilledSize: "0.4", Status: "PARTIALLY_FILLED",
	}
	pair := currency.NewPair(currency.BTC, currency.USDT)

	d, err := w.toDetail(pair, asset.Spot)
	require.NoError(t, err)
	assert.Equal(t, order.Buy, d.Side)
	assert.Equal(t, order.Limit, d.Type)
	assert.True(t, d.RemainingVolume.Equal(dec("0.6")))
	assert.Equal(t, order.PartiallyFilled, d.Status)
}

func TestFillWireToFill(t *testing.T) {
	t.Parallel()

	w := fillWire{FillID: "f1", OrderID: "o1", Market: "ETHUSDT", Side: "SELL", Price: "2000", Size: "0.5", Fee: "1", FeeCurrency: "USDT"}
	pair := currency.NewPair(currency.ETH, currency.USDT)

	f, err := w.toFill(pair, asset.Spot)
	require.NoError(t, err)
	assert.Equal(t, order.Sell, f.Side)
	assert.True(t, f.Volume.Equal(dec("0.5")))
	assert.Equal(t, "USDT", f.FeeCurrency.String())
}

func newTestAdapter() *Adapter {
	a := New(Config{})
	a.log = log.New("test")
	return a
}

func TestResolveSymbolFallsBackWhenUnknown(t *testing.T) {
	t.Parallel()
	a := newTestAdapter()
	pair, kind := a.resolveSymbol("XRPUSDT")
	assert.Equal(t, asset.Spot, kind)
	assert.Equal(t, "XRP", pair.Base.String())
}

func TestPlaceOrderRejectsInvalidRequestWithoutNetworkCall(t *testing.T) {
	t.Parallel()
	a := newTestAdapter()
	_, err := a.PlaceOrder(t.Context(), venue.Credentials{Key: "k", Secret: "s"}, venue.OrderRequest{})
	assert.ErrorIs(t, err, venue.ErrVolumeSpecificationInvalid)
}

func TestPlaceOrderRejectsUnknownMarket(t *testing.T) {
	t.Parallel()
	a := newTestAdapter()
	req := venue.OrderRequest{
		Pair:        currency.NewPair(currency.BTC, currency.USDT),
		Type:        order.Market,
		QuoteVolume: dec("100"),
	}
	_, err := a.PlaceOrder(t.Context(), venue.Credentials{Key: "k", Secret: "s"}, req)
	assert.ErrorIs(t, err, venue.ErrUnknownMarket)
}

func TestOnMessageProcessesDepthSnapshotIntoRegisteredBook(t *testing.T) {
	t.Parallel()
	a := newTestAdapter()
	pair := currency.NewPair(currency.BTC, currency.USDT)
	a.markets[pair] = &market.Market{Kind: asset.Spot, Pair: pair, VenueSymbolName: "BTCUSDT"}
	book := orderbook.New("nova", pair, asset.Spot)
	a.books[pair] = book

	frame := []byte(`{"channel":"depth","market":"BTCUSDT","type":"snapshot","update_id":1,"bids":[["100","1"]],"asks":[["101","1"]]}`)
	a.onMessage(frame)

	assert.True(t, book.IsInitialized())
}

func TestOnMessageIgnoresHeartbeat(t *testing.T) {
	t.Parallel()
	a := newTestAdapter()
	a.onMessage([]byte(`{"channel":"heartbeat"}`))
}

func TestOnMessageDeliversOrderUpdateToRegisteredHandler(t *testing.T) {
	t.Parallel()
	a := newTestAdapter()
	pair := currency.NewPair(currency.BTC, currency.USDT)
	a.markets[pair] = &market.Market{Kind: asset.Spot, Pair: pair, VenueSymbolName: "BTCUSDT"}

	var got *order.Detail
	a.OnOrderUpdate(func(d *order.Detail) { got = d })

	frame := []byte(`{"channel":"orders","order_id":"o1","market":"BTCUSDT","side":"BUY","type":"LIMIT","price":"100","size":"1","filled_size":"0","status":"NEW"}`)
	a.onMessage(frame)

	require.NotNil(t, got)
	assert.Equal(t, "o1", got.ID)
}
