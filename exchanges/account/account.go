// Package account implements the Account state machine of §4.5: the
// authoritative local model of one user's balances, positions and open
// orders for one venue, reconciled from a single ingest path of order and
// fill events.
package account

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/asset"
	"github.com/lumenfx/tradecore/exchanges/order"
	"github.com/lumenfx/tradecore/exchanges/position"
)

// RefreshInterval is the 5-minute period of user-event silence used for
// periodic refresh. The Account itself does not re-pull state on silence:
// nothing in this package reads RefreshInterval or schedules a refresh.
const RefreshInterval = 5 * time.Minute

// Refresher is the REST-side collaborator backed by the Venue Adapter.
// Account calls only its GetFills, from CancelOrder on a repeated cancel;
// the balance, open-order and position methods are not called here.
type Refresher interface {
	GetAccountBalances(ctx context.Context) (map[currency.Code]decimal.Decimal, error)
	GetOpenOrders(ctx context.Context) ([]*order.Detail, error)
	GetPositions(ctx context.Context) ([]*position.Position, error)
	GetFills(ctx context.Context, orderID string) ([]*order.Fill, error)
}

// Canceller is the REST-side collaborator that performs the venue-side
// delete backing CancelOrder.
type Canceller interface {
	CancelOrder(ctx context.Context, id string) error
}

// Account is the single authoritative holder of one user's state on one
// venue. All mutation happens through Ingest* methods, which are intended
// to be called only from a single ingest goroutine per §5's single-writer
// rule; reads (Balance, Position, Order, OpenOrders) may race and observe
// at most one event of staleness.
type Account struct {
	Exchange        string
	Leverage        decimal.Decimal
	CollateralAsset currency.Code

	mu             sync.RWMutex
	balance        map[*currency.Item]decimal.Decimal
	positions      map[currency.Pair]*position.Position
	orders         map[string]*order.Detail
	unhandledFills map[string][]*order.Fill
	seenFills      map[string]struct{}
	freeCollateral decimal.Decimal
	lastEventAt    time.Time
}

// New builds an empty Account ready to ingest events.
func New(exchange string, collateral currency.Code, leverage decimal.Decimal) *Account {
	return &Account{
		Exchange:        exchange,
		Leverage:        leverage,
		CollateralAsset: collateral,
		balance:         make(map[*currency.Item]decimal.Decimal),
		positions:       make(map[currency.Pair]*position.Position),
		orders:          make(map[string]*order.Detail),
		unhandledFills:  make(map[string][]*order.Fill),
		seenFills:       make(map[string]struct{}),
	}
}

// Balance returns the balance of a single asset, zero if untracked.
func (a *Account) Balance(code currency.Code) decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balance[code.Item]
}

// Order returns the authoritative copy of a tracked order.
func (a *Account) Order(id string) (*order.Detail, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	d, ok := a.orders[id]
	return d, ok
}

// Position returns the tracked position for pair, if any.
func (a *Account) Position(pair currency.Pair) (*position.Position, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.positions[pair.Upper()]
	return p, ok
}

// Balances returns a snapshot of every tracked balance, including any that
// have returned to zero.
func (a *Account) Balances() map[currency.Code]decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[currency.Code]decimal.Decimal, len(a.balance))
	for item, bal := range a.balance {
		out[currency.Code{Item: item}] = bal
	}
	return out
}

// Positions returns a snapshot of every tracked futures position.
func (a *Account) Positions() []*position.Position {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*position.Position, 0, len(a.positions))
	for _, p := range a.positions {
		out = append(out, p)
	}
	return out
}

// OpenOrders returns every tracked order whose status is not terminal.
func (a *Account) OpenOrders() []*order.Detail {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*order.Detail, 0, len(a.orders))
	for _, d := range a.orders {
		if d.IsOpen() {
			out = append(out, d)
		}
	}
	return out
}

// LastEventAt reports when the most recent order or fill event was
// ingested. No timer in this package reads it.
func (a *Account) LastEventAt() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastEventAt
}

func (a *Account) addBalance(code currency.Code, delta decimal.Decimal) {
	item := code.Item
	a.balance[item] = a.balance[item].Add(delta)
}

// IngestOrderUpdate applies a new or updated order.Detail, per §4.5:
//   - a previously unseen order replays any fills that arrived first via
//     unhandledFills, then is inserted;
//   - an existing order's status/remaining volume is refreshed, and it is
//     dropped from the open set once terminal.
func (a *Account) IngestOrderUpdate(d *order.Detail) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastEventAt = time.Now()

	existing, known := a.orders[d.ID]
	if !known {
		a.orders[d.ID] = d
		if pending, ok := a.unhandledFills[d.ID]; ok {
			for _, f := range pending {
				a.applyFillLocked(d, f)
			}
			delete(a.unhandledFills, d.ID)
		}
		a.reserveLocked(d)
		return
	}

	existing.Status = d.Status
	existing.RecordedFills = d.RecordedFills
	existing.RemainingVolume = d.Volume.Sub(existing.RecordedFills)
	if existing.RemainingVolume.Sign() < 0 {
		existing.RemainingVolume = decimal.Zero
	}
	existing.LastUpdated = time.Now()
	if existing.Status == order.Cancelled || existing.Status == order.Filled {
		existing.Volume = existing.RecordedFills.Add(existing.RemainingVolume)
	}
}

// reserveLocked computes and debits the balance reservation a newly-seen
// open order makes against available funds: a limit buy reserves quote
// notional, a limit sell reserves base volume, a futures limit reserves
// margin. Market orders reserve nothing since they execute immediately.
func (a *Account) reserveLocked(d *order.Detail) {
	if d.Type != order.Limit || !d.IsOpen() {
		return
	}
	remaining := d.Volume.Sub(d.RecordedFills)
	if remaining.Sign() <= 0 {
		return
	}

	if d.Asset == asset.Futures || d.Asset == asset.USDTMarginedFutures {
		if a.Leverage.Sign() > 0 {
			margin := remaining.Mul(d.Price).Div(a.Leverage)
			a.freeCollateral = a.freeCollateral.Sub(margin)
		}
		return
	}

	if d.Side == order.Buy {
		a.addBalance(d.Pair.Quote, remaining.Mul(d.Price).Neg())
	} else {
		a.addBalance(d.Pair.Base, remaining.Neg())
	}
}

// IngestFillUpdate applies a fill, parking it in unhandledFills if its
// parent order has not yet been seen (the out-of-order case called out in
// §4.5 and §8's boundary behavior).
func (a *Account) IngestFillUpdate(f *order.Fill) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastEventAt = time.Now()

	if _, dup := a.seenFills[f.FillID]; dup {
		return
	}
	a.seenFills[f.FillID] = struct{}{}

	parent, known := a.orders[f.OrderID]
	if !known {
		a.unhandledFills[f.OrderID] = append(a.unhandledFills[f.OrderID], f)
		return
	}
	a.applyFillLocked(parent, f)
}

func (a *Account) applyFillLocked(parent *order.Detail, f *order.Fill) {
	notional := f.Volume.Mul(f.Price)

	if f.Asset == asset.Futures || f.Asset == asset.USDTMarginedFutures {
		pair := f.Pair.Upper()
		existing := a.positions[pair]
		next, realized := position.ApplyFill(existing, f.Pair, f.Side, f.Volume, f.Price, a.Leverage)
		a.freeCollateral = a.freeCollateral.Add(realized)
		if next == nil {
			delete(a.positions, pair)
		} else {
			a.positions[pair] = next
		}
		a.freeCollateral = a.freeCollateral.Sub(f.Fee)
	} else {
		if f.Side == order.Buy {
			a.addBalance(f.Pair.Base, f.Volume)
			a.addBalance(f.Pair.Quote, notional.Neg())
		} else {
			a.addBalance(f.Pair.Base, f.Volume.Neg())
			a.addBalance(f.Pair.Quote, notional)
		}
		if !f.Fee.IsZero() {
			a.addBalance(f.FeeCurrency, f.Fee.Neg())
		}
	}

	parent.ApplyFill(f.Volume)
}

// AwaitTerminal blocks until id reaches a terminal status or ctx is done,
// polling every poll interval. It is the synchronous stand-in for §9's
// "per-order fill_event and close_event become single-shot notifications":
// a single-process poller plays the role a broadcast channel or future
// would, without adding a second mutation path into Account state.
func (a *Account) AwaitTerminal(ctx context.Context, id string, poll time.Duration) (*order.Detail, error) {
	if d, ok := a.Order(id); ok && !d.IsOpen() {
		return d, nil
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if d, ok := a.Order(id); ok && !d.IsOpen() {
				return d, nil
			}
		}
	}
}

// CancelOrder requests cancellation of id through c. A venue response
// reporting the order as already closed is treated as success per §4.5 and
// §8 scenario 3: the order is forced out of the open set and its status set
// to Cancelled rather than the error propagating to the caller.
func (a *Account) CancelOrder(ctx context.Context, c Canceller, refetch Refresher, id string) error {
	a.mu.Lock()
	d, known := a.orders[id]
	if !known {
		a.mu.Unlock()
		return ErrOrderNotFound
	}
	alreadyRequested := d.Status == order.RequestedCancellation
	d.Status = order.RequestedCancellation
	a.mu.Unlock()

	if alreadyRequested {
		if refetch == nil {
			return nil
		}
		fills, err := refetch.GetFills(ctx, id)
		if err != nil {
			return err
		}
		a.mu.Lock()
		for _, f := range fills {
			if _, dup := a.seenFills[f.FillID]; dup {
				continue
			}
			a.seenFills[f.FillID] = struct{}{}
			a.applyFillLocked(d, f)
		}
		a.mu.Unlock()
		return nil
	}

	err := c.CancelOrder(ctx, id)
	if err == nil {
		return nil
	}
	if !isAlreadyClosed(err) {
		return err
	}

	a.mu.Lock()
	d.Status = order.Cancelled
	a.mu.Unlock()
	return nil
}
