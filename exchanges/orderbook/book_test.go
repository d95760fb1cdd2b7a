package orderbook

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/asset"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func level(price, amount string) Level {
	return Level{Price: dec(price), Amount: dec(amount)}
}

func TestBookOutOfOrderDeltaBeforeSnapshot(t *testing.T) {
	t.Parallel()

	pair := currency.NewBTCUSDT()
	b := New("nova", pair, asset.Spot)

	base := time.Unix(0, 0)

	// delta at "time 7" arrives first, then one at "time 5", both before
	// any snapshot has landed: both must buffer.
	require.NoError(t, b.Process(&Update{
		Pair: pair, Asset: asset.Spot,
		Bids:       []Level{level("100", "0.5")},
		UpdateID:   7,
		UpdateTime: base.Add(7 * time.Second),
		AllowEmpty: true,
	}))
	require.NoError(t, b.Process(&Update{
		Pair: pair, Asset: asset.Spot,
		Bids:       []Level{level("99", "3")},
		UpdateID:   5,
		UpdateTime: base.Add(5 * time.Second),
		AllowEmpty: true,
	}))
	require.False(t, b.IsInitialized())

	// snapshot at "time 6" seeds the book; the buffered delta at time 5
	// predates it and must be discarded, the delta at time 7 must replay.
	require.NoError(t, b.Process(&Update{
		Pair: pair, Asset: asset.Spot,
		Bids:       []Level{level("100", "1")},
		Asks:       []Level{level("101", "2")},
		Initial:    true,
		UpdateID:   6,
		UpdateTime: base.Add(6 * time.Second),
	}))
	require.True(t, b.IsInitialized())

	bids, asks, lastID := b.Snapshot()
	require.Len(t, bids, 1)
	require.Len(t, asks, 1)
	assert.Equal(t, int64(7), lastID)
	assert.True(t, dec("100").Equal(bids[0].Price))
	assert.True(t, dec("0.5").Equal(bids[0].Amount), "delta 7 must have overwritten the snapshot's bid amount")
	assert.True(t, dec("101").Equal(asks[0].Price))
	assert.True(t, dec("2").Equal(asks[0].Amount), "the snapshot's ask must be untouched by the replay")
}

func TestBookDropsStaleDelta(t *testing.T) {
	t.Parallel()

	pair := currency.NewBTCUSDT()
	b := New("nova", pair, asset.Spot)
	now := time.Now()

	require.NoError(t, b.Process(&Update{
		Pair: pair, Asset: asset.Spot,
		Bids: []Level{level("100", "1")}, Asks: []Level{level("101", "2")},
		Initial: true, UpdateID: 10, UpdateTime: now,
	}))
	require.NoError(t, b.Process(&Update{
		Pair: pair, Asset: asset.Spot,
		Bids:       []Level{level("100", "9")},
		UpdateID:   5, // stale, below LastUpdateID
		UpdateTime: now.Add(time.Second),
		AllowEmpty: true,
	}))

	bids, _, lastID := b.Snapshot()
	assert.Equal(t, int64(10), lastID)
	assert.True(t, dec("1").Equal(bids[0].Amount), "stale delta must not have mutated the book")
}

func TestBookRemovesZeroAmountLevel(t *testing.T) {
	t.Parallel()

	pair := currency.NewBTCUSDT()
	b := New("nova", pair, asset.Spot)
	now := time.Now()

	require.NoError(t, b.Process(&Update{
		Pair: pair, Asset: asset.Spot,
		Bids: []Level{level("100", "1")}, Asks: []Level{level("101", "2")},
		Initial: true, UpdateID: 1, UpdateTime: now,
	}))
	require.NoError(t, b.Process(&Update{
		Pair: pair, Asset: asset.Spot,
		Bids:       []Level{level("100", "0")},
		UpdateID:   2,
		UpdateTime: now.Add(time.Second),
		AllowEmpty: true,
	}))

	bids, _, _ := b.Snapshot()
	assert.Empty(t, bids, "a zero-amount delta must remove the level, never leave a zero-volume level")
}

func TestBookRejectsCrossedBook(t *testing.T) {
	t.Parallel()

	pair := currency.NewBTCUSDT()
	b := New("nova", pair, asset.Spot)
	now := time.Now()

	require.NoError(t, b.Process(&Update{
		Pair: pair, Asset: asset.Spot,
		Bids: []Level{level("100", "1")}, Asks: []Level{level("101", "2")},
		Initial: true, UpdateID: 1, UpdateTime: now,
	}))
	err := b.Process(&Update{
		Pair: pair, Asset: asset.Spot,
		Bids:       []Level{level("102", "1")}, // now above best ask
		UpdateID:   2,
		UpdateTime: now.Add(time.Second),
		AllowEmpty: true,
	})
	assert.ErrorIs(t, err, ErrOrderbookInvalid)
}

func TestBookMarketBuyPriceWalksAsks(t *testing.T) {
	t.Parallel()

	pair := currency.NewBTCUSDT()
	b := New("nova", pair, asset.Spot)
	now := time.Now()

	require.NoError(t, b.Process(&Update{
		Pair: pair, Asset: asset.Spot,
		Bids: []Level{level("99", "5")},
		Asks: []Level{
			level("100", "1"),
			level("101", "1"),
		},
		Initial: true, UpdateID: 1, UpdateTime: now,
	}))

	avg, filled, err := b.MarketBuyPrice(decimal.Zero)
	require.NoError(t, err)
	assert.True(t, filled)
	assert.True(t, dec("100").Equal(avg), "zero volume must price at the best ask")

	avg, filled, err = b.MarketBuyPrice(dec("1.5"))
	require.NoError(t, err)
	assert.True(t, filled)
	// 1 @ 100 + 0.5 @ 101 = 150.5 notional / 1.5 volume = 100.333...
	assert.True(t, dec("100.333333").Equal(avg.Round(6)))

	_, filled, err = b.MarketBuyPrice(dec("10"))
	require.NoError(t, err)
	assert.False(t, filled, "book only has 2 units of ask depth")
}

func TestBookMarketBuyPriceQuoteVolume(t *testing.T) {
	t.Parallel()

	pair := currency.NewBTCUSDT()
	b := New("nova", pair, asset.Spot)
	now := time.Now()

	require.NoError(t, b.Process(&Update{
		Pair: pair, Asset: asset.Spot,
		Bids: []Level{level("99", "5")},
		Asks: []Level{level("100", "2")},
		Initial: true, UpdateID: 1, UpdateTime: now,
	}))

	avg, base, filled, err := b.MarketBuyPriceQuoteVolume(dec("50"))
	require.NoError(t, err)
	assert.True(t, filled)
	assert.True(t, dec("100").Equal(avg))
	assert.True(t, dec("0.5").Equal(base))
}

func TestBookWaitInitializedAndUpdate(t *testing.T) {
	t.Parallel()

	pair := currency.NewBTCUSDT()
	b := New("nova", pair, asset.Spot)

	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(t, b.WaitInitialized(t.Context()))
	}()

	require.NoError(t, b.Process(&Update{
		Pair: pair, Asset: asset.Spot,
		Bids: []Level{level("100", "1")}, Asks: []Level{level("101", "1")},
		Initial: true, UpdateID: 1, UpdateTime: time.Now(),
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitInitialized did not unblock after snapshot landed")
	}
}

func TestBookBestBidAskNotInitialized(t *testing.T) {
	t.Parallel()

	pair := currency.NewBTCUSDT()
	b := New("nova", pair, asset.Spot)
	_, _, err := b.BestBidAsk()
	assert.ErrorIs(t, err, ErrNotInitialized)
}
