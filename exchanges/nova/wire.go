package nova

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/common/key"
	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchange/order/limits"
	"github.com/lumenfx/tradecore/exchanges/asset"
	"github.com/lumenfx/tradecore/exchanges/market"
	"github.com/lumenfx/tradecore/exchanges/order"
	"github.com/lumenfx/tradecore/exchanges/orderbook"
	"github.com/lumenfx/tradecore/exchanges/position"
)

func newLimitKey(exchange string, a asset.Item, pair currency.Pair) key.ExchangeAssetPair {
	return key.NewExchangeAssetPair(exchange, a, pair)
}

// marketWire is one entry of GET /markets.
type marketWire struct {
	Symbol          string `json:"symbol"`
	Base            string `json:"base"`
	Quote           string `json:"quote"`
	Kind            string `json:"kind"` // "spot" | "future" | "usdt_margined_futures"
	PriceIncrement  string `json:"price_increment"`
	SizeIncrement   string `json:"size_increment"`
	MinProvideSize  string `json:"min_provide_size"`
	MinQuoteVolume  string `json:"min_quote_volume"`
	BasePrecision   int32  `json:"base_precision"`
	QuotePrecision  int32  `json:"quote_precision"`
}

func (w marketWire) toMarket() (*market.Market, error) {
	kind, err := asset.New(w.Kind)
	if err != nil {
		return nil, err
	}
	return &market.Market{
		Kind:            kind,
		Pair:            currency.NewPair(currency.NewCode(w.Base), currency.NewCode(w.Quote)),
		VenueSymbolName: w.Symbol,
		PriceIncrement:  mustDecimal(w.PriceIncrement),
		SizeIncrement:   mustDecimal(w.SizeIncrement),
		MinProvideSize:  mustDecimal(w.MinProvideSize),
		MinQuoteVolume:  mustDecimal(w.MinQuoteVolume),
		BasePrecision:   w.BasePrecision,
		QuotePrecision:  w.QuotePrecision,
	}, nil
}

func (w marketWire) toLimit(exchange string) limits.MinMaxLevel {
	pair := currency.NewPair(currency.NewCode(w.Base), currency.NewCode(w.Quote))
	kind, _ := asset.New(w.Kind)
	priceStep, _ := mustDecimal(w.PriceIncrement).Float64()
	sizeStep, _ := mustDecimal(w.SizeIncrement).Float64()
	minSize, _ := mustDecimal(w.MinProvideSize).Float64()
	minQuote, _ := mustDecimal(w.MinQuoteVolume).Float64()
	return limits.MinMaxLevel{
		Key:                     newLimitKey(exchange, kind, pair),
		PriceStepIncrementSize:  priceStep,
		AmountStepIncrementSize: sizeStep,
		MinimumBaseAmount:       minSize,
		MinNotional:             minQuote,
	}
}

func mustDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// orderWire is the REST/WS representation of an order, shared by the order
// placement response and the user-data order-update stream.
type orderWire struct {
	OrderID       string `json:"order_id"`
	ClientOrderID string `json:"client_order_id"`
	Market        string `json:"market"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	Price         string `json:"price"`
	Size          string `json:"size"`
	FilledSize    string `json:"filled_size"`
	Status        string `json:"status"`
	CreatedAt     int64  `json:"created_at_ms"`
	UpdatedAt     int64  `json:"updated_at_ms"`
}

func (w orderWire) toDetail(pair currency.Pair, a asset.Item) (*order.Detail, error) {
	side, err := order.NewSide(w.Side)
	if err != nil {
		return nil, err
	}
	typ, err := order.NewType(w.Type)
	if err != nil {
		return nil, err
	}
	volume := mustDecimal(w.Size)
	fills := mustDecimal(w.FilledSize)
	remaining := volume.Sub(fills)
	if remaining.Sign() < 0 {
		remaining = decimal.Zero
	}
	return &order.Detail{
		Exchange:        "nova",
		ID:              w.OrderID,
		ClientOrderID:   w.ClientOrderID,
		Pair:            pair,
		Asset:           a,
		Side:            side,
		Type:            typ,
		Price:           mustDecimal(w.Price),
		Volume:          volume,
		RecordedFills:   fills,
		RemainingVolume: remaining,
		Status:          order.NewStatus(w.Status),
		Date:            msToTime(w.CreatedAt),
		LastUpdated:     msToTime(w.UpdatedAt),
	}, nil
}

// fillWire is the user-data fill-update stream representation.
type fillWire struct {
	FillID      string `json:"fill_id"`
	OrderID     string `json:"order_id"`
	Market      string `json:"market"`
	Side        string `json:"side"`
	Price       string `json:"price"`
	Size        string `json:"size"`
	Fee         string `json:"fee"`
	FeeCurrency string `json:"fee_currency"`
	Timestamp   int64  `json:"timestamp_ms"`
}

func (w fillWire) toFill(pair currency.Pair, a asset.Item) (*order.Fill, error) {
	side, err := order.NewSide(w.Side)
	if err != nil {
		return nil, err
	}
	return &order.Fill{
		Exchange:    "nova",
		FillID:      w.FillID,
		OrderID:     w.OrderID,
		Pair:        pair,
		Asset:       a,
		Side:        side,
		Price:       mustDecimal(w.Price),
		Volume:      mustDecimal(w.Size),
		Fee:         mustDecimal(w.Fee),
		FeeCurrency: currency.NewCode(w.FeeCurrency),
		Timestamp:   msToTime(w.Timestamp),
	}, nil
}

// depthWire is one snapshot or delta frame on the depth channel.
type depthWire struct {
	Market   string     `json:"market"`
	Type     string     `json:"type"` // "snapshot" | "delta"
	Bids     [][2]string `json:"bids"`
	Asks     [][2]string `json:"asks"`
	UpdateID int64      `json:"update_id"`
	Checksum uint32     `json:"checksum"`
}

func toLevels(raw [][2]string) []orderbook.Level {
	out := make([]orderbook.Level, len(raw))
	for i, r := range raw {
		out[i] = orderbook.Level{Price: mustDecimal(r[0]), Amount: mustDecimal(r[1])}
	}
	return out
}

// positionWire is one entry of GET /positions.
type positionWire struct {
	Market      string `json:"market"`
	Side        string `json:"side"`
	Size        string `json:"size"`
	EntryPrice  string `json:"entry_price"`
	Margin      string `json:"margin"`
	UnrealPnL   string `json:"unrealized_pnl"`
}

func (w positionWire) toPosition(pair currency.Pair) (*position.Position, error) {
	side, err := order.NewSide(w.Side)
	if err != nil {
		return nil, err
	}
	return &position.Position{
		Pair:              pair,
		Side:              side,
		Volume:            mustDecimal(w.Size),
		EntryPrice:        mustDecimal(w.EntryPrice),
		MarginRequirement: mustDecimal(w.Margin),
		PnL:               mustDecimal(w.UnrealPnL),
	}, nil
}

// accountInfoWire is the GET /account response.
type accountInfoWire struct {
	Leverage       string `json:"leverage"`
	FreeCollateral string `json:"free_collateral"`
	Collateral     string `json:"collateral_asset"`
}

// candleWire is one entry of GET /candles.
type candleWire struct {
	OpenTime int64  `json:"open_time_ms"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

func msToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
