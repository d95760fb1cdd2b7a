package orderbook

import (
	"context"
	"fmt"
	"hash/crc32"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/asset"
)

// Book is a single market's live bid/ask ladder. It is exclusively owned by
// the venue adapter that created it: Process is called only from that
// adapter's parse task, so internal mutation never races with itself, but
// readers (pricing, rebalancer) may run concurrently and must go through
// the exported snapshot/view methods, all of which take the read lock.
type Book struct {
	Exchange string
	Pair     currency.Pair
	Asset    asset.Item

	mu   sync.RWMutex
	bids sortedSide
	asks sortedSide

	LastUpdateID int64
	LastUpdated  time.Time
	LastPushed   time.Time

	initialized bool
	buffered    []*Update

	initCh    chan struct{}
	initOnce  sync.Once
	updatedCh chan struct{}
}

// New allocates a Book for pair/assetType on exchange, ready to accept
// buffered deltas ahead of its first snapshot.
func New(exchange string, pair currency.Pair, assetType asset.Item) *Book {
	return &Book{
		Exchange:  exchange,
		Pair:      pair,
		Asset:     assetType,
		bids:      newSortedSide(true),
		asks:      newSortedSide(false),
		initCh:    make(chan struct{}),
		updatedCh: make(chan struct{}),
	}
}

// IsInitialized reports whether a snapshot has been applied.
func (b *Book) IsInitialized() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialized
}

// WaitInitialized blocks until the first snapshot lands or ctx is done.
func (b *Book) WaitInitialized(ctx context.Context) error {
	b.mu.RLock()
	ch := b.initCh
	done := b.initialized
	b.mu.RUnlock()
	if done {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitUpdate blocks until the next update fires or ctx is done. It is a
// one-shot wait: callers that need every update must call WaitUpdate again
// in a loop, and may miss updates that land between calls.
func (b *Book) WaitUpdate(ctx context.Context) error {
	b.mu.RLock()
	ch := b.updatedCh
	b.mu.RUnlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Book) fireUpdateLocked() {
	close(b.updatedCh)
	b.updatedCh = make(chan struct{})
}

// Process applies u to the book following the protocol in the order-book
// component spec:
//  1. updates older than the last applied one are dropped silently;
//  2. before the first snapshot, non-initial updates are buffered;
//  3. the first Initial update replaces the ladder and replays any buffered
//     updates newer than the snapshot;
//  4. subsequent deltas set or delete individual levels;
//  5. every applied update fires a one-shot update event.
func (b *Book) Process(u *Update) error {
	if u.Pair.IsEmpty() {
		return currency.ErrCurrencyPairEmpty
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized && !u.Initial && u.UpdateID <= b.LastUpdateID {
		return nil // late or duplicate delta, drop silently
	}

	if !b.initialized {
		if !u.Initial {
			b.buffered = append(b.buffered, u)
			return nil
		}
		return b.applySnapshotLocked(u)
	}

	return b.applyDeltaLocked(u)
}

func (b *Book) applySnapshotLocked(u *Update) error {
	if u.UpdateTime.IsZero() {
		return ErrLastUpdatedNotSet
	}

	b.bids.load(u.Bids)
	b.asks.load(u.Asks)
	b.LastUpdateID = u.UpdateID
	b.LastUpdated = u.UpdateTime
	b.LastPushed = time.Now()
	b.initialized = true
	b.initOnce.Do(func() { close(b.initCh) })

	pending := b.buffered
	b.buffered = nil
	sort.Slice(pending, func(i, j int) bool { return pending[i].UpdateID < pending[j].UpdateID })
	for _, p := range pending {
		if p.UpdateID <= u.UpdateID {
			continue // predates (or duplicates) the snapshot, discard
		}
		if err := b.applyDeltaLocked(p); err != nil {
			return err
		}
	}

	b.fireUpdateLocked()
	return nil
}

func (b *Book) applyDeltaLocked(u *Update) error {
	if !u.AllowEmpty && len(u.Bids) == 0 && len(u.Asks) == 0 {
		b.fireUpdateLocked()
		return nil
	}

	for _, l := range u.Bids {
		if l.Price.Sign() < 0 || l.Amount.Sign() < 0 {
			return fmt.Errorf("%w: negative price or amount", ErrOrderbookInvalid)
		}
		b.bids.set(l.Price, l.Amount)
	}
	for _, l := range u.Asks {
		if l.Price.Sign() < 0 || l.Amount.Sign() < 0 {
			return fmt.Errorf("%w: negative price or amount", ErrOrderbookInvalid)
		}
		b.asks.set(l.Price, l.Amount)
	}

	if bestBid, ok := b.bids.best(); ok {
		if bestAsk, ok := b.asks.best(); ok && bestAsk.Price.LessThanOrEqual(bestBid.Price) {
			return fmt.Errorf("%w: book crossed, bid %s >= ask %s", ErrOrderbookInvalid, bestBid.Price, bestAsk.Price)
		}
	}

	if u.UpdateID > b.LastUpdateID {
		b.LastUpdateID = u.UpdateID
	}
	if u.UpdateTime.After(b.LastUpdated) {
		b.LastUpdated = u.UpdateTime
	}
	b.LastPushed = time.Now()

	if u.Checksum != 0 {
		if got := b.checksumLocked(); got != u.Checksum {
			return fmt.Errorf("%w: want %d got %d", ErrChecksumMismatch, u.Checksum, got)
		}
	}

	b.fireUpdateLocked()
	return nil
}

// checksumLocked folds the top levels of both sides into the CRC32 used by
// venues that publish one, e.g. "price:amount:price:amount..." interleaved
// bid/ask rows. Callers must hold b.mu.
func (b *Book) checksumLocked() uint32 {
	const depth = 10
	var buf []byte
	for i := 0; i < depth; i++ {
		if i < len(b.bids.levels) {
			buf = append(buf, []byte(b.bids.levels[i].Price.String()+":"+b.bids.levels[i].Amount.String()+":")...)
		}
		if i < len(b.asks.levels) {
			buf = append(buf, []byte(b.asks.levels[i].Price.String()+":"+b.asks.levels[i].Amount.String()+":")...)
		}
	}
	return crc32.ChecksumIEEE(buf)
}

// LoadSnapshot is a convenience wrapper around Process for callers seeding
// a book directly from a REST depth response rather than the update queue.
func (b *Book) LoadSnapshot(bids, asks []Level, updateID int64, at time.Time) error {
	return b.Process(&Update{
		Pair: b.Pair, Asset: b.Asset,
		Bids: bids, Asks: asks,
		Initial: true, AllowEmpty: true,
		UpdateID: updateID, UpdateTime: at,
	})
}

// Snapshot returns a coherent, point-in-time copy of both sides.
func (b *Book) Snapshot() (bids, asks []Level, lastUpdateID int64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bids.clone(), b.asks.clone(), b.LastUpdateID
}

// BestBidAsk returns the top of book read under a single lock so the pair is
// coherent, matching the concurrency model's "copy both under a brief lock"
// guidance for readers that need a consistent top-of-book pair.
func (b *Book) BestBidAsk() (bid, ask Level, err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return Level{}, Level{}, ErrNotInitialized
	}
	bid, bidOK := b.bids.best()
	ask, askOK := b.asks.best()
	if !bidOK || !askOK {
		return Level{}, Level{}, ErrNotInitialized
	}
	return bid, ask, nil
}

// MidPrice is the midpoint of best bid and best ask.
func (b *Book) MidPrice() (decimal.Decimal, error) {
	bid, ask, err := b.BestBidAsk()
	if err != nil {
		return decimal.Zero, err
	}
	return bid.Price.Add(ask.Price).Div(decimal.NewFromInt(2)), nil
}

// MarketBuyPrice returns the volume-weighted average price of buying volume
// base units by walking the ask side from best to worst. filled is false
// when the book could not absorb the full requested volume.
func (b *Book) MarketBuyPrice(volume decimal.Decimal) (avg decimal.Decimal, filled bool, err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return decimal.Zero, false, ErrNotInitialized
	}
	return walkVolume(b.asks.levels, volume)
}

// MarketSellPrice is the bid-side counterpart of MarketBuyPrice.
func (b *Book) MarketSellPrice(volume decimal.Decimal) (avg decimal.Decimal, filled bool, err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return decimal.Zero, false, ErrNotInitialized
	}
	return walkVolume(b.bids.levels, volume)
}

// walkVolume consumes levels from best to worst until volume base units have
// been accounted for, returning the notional-weighted average price paid.
func walkVolume(levels []Level, volume decimal.Decimal) (avg decimal.Decimal, filled bool, err error) {
	if volume.Sign() < 0 {
		return decimal.Zero, false, fmt.Errorf("%w: negative volume", ErrOrderbookInvalid)
	}
	if len(levels) == 0 {
		return decimal.Zero, false, ErrNotInitialized
	}
	if volume.IsZero() {
		return levels[0].Price, true, nil
	}

	remaining := volume
	notional := decimal.Zero
	for _, l := range levels {
		if remaining.Sign() <= 0 {
			break
		}
		take := l.Amount
		if take.GreaterThan(remaining) {
			take = remaining
		}
		notional = notional.Add(take.Mul(l.Price))
		remaining = remaining.Sub(take)
	}
	filled = remaining.Sign() <= 0
	consumed := volume.Sub(remaining)
	if consumed.Sign() <= 0 {
		return decimal.Zero, filled, nil
	}
	return notional.Div(consumed), filled, nil
}

// MarketBuyPriceQuoteVolume returns the VWAP for spending quote notional
// units walking the ask side, and the base volume that notional bought.
func (b *Book) MarketBuyPriceQuoteVolume(quote decimal.Decimal) (avg, baseVolume decimal.Decimal, filled bool, err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return decimal.Zero, decimal.Zero, false, ErrNotInitialized
	}
	return walkQuoteVolume(b.asks.levels, quote)
}

// MarketSellPriceQuoteVolume is the bid-side counterpart of
// MarketBuyPriceQuoteVolume.
func (b *Book) MarketSellPriceQuoteVolume(quote decimal.Decimal) (avg, baseVolume decimal.Decimal, filled bool, err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return decimal.Zero, decimal.Zero, false, ErrNotInitialized
	}
	return walkQuoteVolume(b.bids.levels, quote)
}

func walkQuoteVolume(levels []Level, quote decimal.Decimal) (avg, baseVolume decimal.Decimal, filled bool, err error) {
	if quote.Sign() < 0 {
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("%w: negative quote volume", ErrOrderbookInvalid)
	}
	if len(levels) == 0 {
		return decimal.Zero, decimal.Zero, false, ErrNotInitialized
	}
	if quote.IsZero() {
		return levels[0].Price, decimal.Zero, true, nil
	}

	remaining := quote
	base := decimal.Zero
	for _, l := range levels {
		if remaining.Sign() <= 0 {
			break
		}
		levelNotional := l.Amount.Mul(l.Price)
		if levelNotional.GreaterThan(remaining) {
			take := remaining.Div(l.Price)
			base = base.Add(take)
			remaining = decimal.Zero
			break
		}
		base = base.Add(l.Amount)
		remaining = remaining.Sub(levelNotional)
	}
	filled = remaining.Sign() <= 0
	spent := quote.Sub(remaining)
	if base.Sign() <= 0 {
		return decimal.Zero, decimal.Zero, filled, nil
	}
	return spent.Div(base), base, filled, nil
}
