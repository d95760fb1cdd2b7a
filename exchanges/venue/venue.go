// Package venue defines the capability-set interface every concrete venue
// adapter implements (§4.4, §9's "dynamic type dispatch on venue" redesign:
// one interface, one variant type per venue, no subclassing).
package venue

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/asset"
	"github.com/lumenfx/tradecore/exchanges/market"
	"github.com/lumenfx/tradecore/exchanges/order"
	"github.com/lumenfx/tradecore/exchanges/orderbook"
	"github.com/lumenfx/tradecore/exchanges/position"
)

// OrderRequest is the explicit typed union §9 calls for in place of a
// keyword-argument variadic order method: exactly one of Volume or
// QuoteVolume is set, enforced by Validate rather than left implicit.
type OrderRequest struct {
	Pair  currency.Pair
	Asset asset.Item
	Side  order.Side
	Type  order.Type

	Price       decimal.Decimal // required for Limit
	Volume      decimal.Decimal
	QuoteVolume decimal.Decimal // exclusive with Volume, market orders only
}

// Validate enforces the Volume/QuoteVolume exclusive union.
func (r OrderRequest) Validate() error {
	hasVolume := r.Volume.Sign() > 0
	hasQuote := r.QuoteVolume.Sign() > 0
	if hasVolume == hasQuote {
		return ErrVolumeSpecificationInvalid
	}
	if hasQuote && r.Type != order.Market {
		return ErrVolumeSpecificationInvalid
	}
	return nil
}

// Adapter is the capability set every venue implements: connection
// lifecycle, book/user-data subscription, order placement and the REST
// query surface.
type Adapter interface {
	Name() string

	Connect(ctx context.Context) error
	Close(ctx context.Context) error

	Markets() map[currency.Pair]*market.Market

	SubscribeOrderBooks(ctx context.Context, pairs ...currency.Pair) (map[currency.Pair]*orderbook.Book, error)
	UnsubscribeOrderBooks(ctx context.Context, pairs ...currency.Pair) error

	SubscribeUserData(ctx context.Context, creds Credentials) error

	PlaceOrder(ctx context.Context, creds Credentials, req OrderRequest) (*order.Detail, error)
	CancelOrder(ctx context.Context, creds Credentials, id string) error
	CancelAllOrders(ctx context.Context, creds Credentials) error

	GetOpenOrders(ctx context.Context, creds Credentials) ([]*order.Detail, error)
	GetPositions(ctx context.Context, creds Credentials) ([]*position.Position, error)
	GetAccountBalances(ctx context.Context, creds Credentials) (map[currency.Code]decimal.Decimal, error)
	GetAccountInfo(ctx context.Context, creds Credentials) (AccountInfo, error)
	GetFills(ctx context.Context, creds Credentials, orderID string) ([]*order.Fill, error)
	GetCandles(ctx context.Context, pair currency.Pair, resolution string, startUnix, endUnix int64) ([]Candle, error)
}

// Credentials is the (key, secret, optional subaccount) tuple passed by
// parameter into every authenticated call, never read from the environment
// by the adapter itself.
type Credentials struct {
	Key        string
	Secret     string
	Subaccount string
}

// AccountInfo is the venue-reported account summary used to seed or
// cross-check an Account's free collateral and leverage.
type AccountInfo struct {
	Leverage       decimal.Decimal
	FreeCollateral decimal.Decimal
	Collateral     currency.Code
}

// Candle is one OHLCV bar as returned by GetCandles.
type Candle struct {
	OpenTime              int64
	Open, High, Low, Close decimal.Decimal
	Volume                decimal.Decimal
}
