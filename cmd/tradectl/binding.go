package main

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/order"
	"github.com/lumenfx/tradecore/exchanges/position"
	"github.com/lumenfx/tradecore/exchanges/venue"
)

// venueBinding closes a venue.Adapter over one set of Credentials, giving
// account.Refresher and account.Canceller's ctx-only methods somewhere to
// carry the credentials venue.Adapter itself takes by parameter. This is
// the one place in the process credentials and adapter are bound together;
// the Account, Executor and httpapi layers never see a Credentials value.
type venueBinding struct {
	adapter venue.Adapter
	creds   venue.Credentials
}

func (b venueBinding) GetAccountBalances(ctx context.Context) (map[currency.Code]decimal.Decimal, error) {
	return b.adapter.GetAccountBalances(ctx, b.creds)
}

func (b venueBinding) GetOpenOrders(ctx context.Context) ([]*order.Detail, error) {
	return b.adapter.GetOpenOrders(ctx, b.creds)
}

func (b venueBinding) GetPositions(ctx context.Context) ([]*position.Position, error) {
	return b.adapter.GetPositions(ctx, b.creds)
}

func (b venueBinding) GetFills(ctx context.Context, orderID string) ([]*order.Fill, error) {
	return b.adapter.GetFills(ctx, b.creds, orderID)
}

func (b venueBinding) CancelOrder(ctx context.Context, id string) error {
	return b.adapter.CancelOrder(ctx, b.creds, id)
}
