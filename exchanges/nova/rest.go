package nova

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofrs/uuid"
	"github.com/google/go-querystring/query"
	"github.com/kat-co/vala"
	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/common/key"
	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchange/order/limits"
	"github.com/lumenfx/tradecore/exchange/request"
	"github.com/lumenfx/tradecore/exchanges/asset"
	"github.com/lumenfx/tradecore/exchanges/market"
	"github.com/lumenfx/tradecore/exchanges/order"
	"github.com/lumenfx/tradecore/exchanges/position"
	"github.com/lumenfx/tradecore/exchanges/venue"
	"github.com/lumenfx/tradecore/internal/signing"
)

// fetchMarkets pulls GET /markets, converts each entry into a market.Market,
// and loads the parallel execution-limit table in one batch. A failed limit
// load is logged and the markets are still returned.
func (a *Adapter) fetchMarkets(ctx context.Context) ([]*market.Market, error) {
	if err := a.limit.Wait(ctx, request.Weight{weightPublic: 1}); err != nil {
		return nil, fmt.Errorf("nova rate limit: %w", err)
	}

	var raw []marketWire
	resp, err := a.http.R().SetContext(ctx).SetResult(&raw).Get("/markets")
	if err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("get markets: status %d: %s", resp.StatusCode(), resp.String())
	}

	out := make([]*market.Market, 0, len(raw))
	var levels []limits.MinMaxLevel
	for _, w := range raw {
		m, err := w.toMarket()
		if err != nil {
			a.log.Warn().Err(err).Str("symbol", w.Symbol).Msg("skipping market with unknown kind")
			continue
		}
		out = append(out, m)
		levels = append(levels, w.toLimit(a.Name()))
	}
	if len(levels) > 0 {
		if err := limits.Load(levels); err != nil {
			a.log.Warn().Err(err).Msg("loading execution limits")
		}
	}
	return out, nil
}

// PlaceOrder submits req. For limit orders it renders price/volume to the
// market's tick/step and pre-validates them against the loaded execution
// limits before sending; market orders are sent as given.
func (a *Adapter) PlaceOrder(ctx context.Context, creds venue.Credentials, req venue.OrderRequest) (*order.Detail, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(creds.Key, "key"),
		vala.StringNotEmpty(creds.Secret, "secret"),
	).Check(); err != nil {
		return nil, fmt.Errorf("%w: %w", venue.ErrAuthFailed, err)
	}
	m, ok := a.marketFor(req.Pair)
	if !ok {
		return nil, venue.ErrUnknownMarket
	}

	volume := req.Volume
	price := req.Price
	if req.Type == order.Limit {
		volume = m.RenderVolume(volume)
		price = m.RenderPrice(price, req.Side)
		priceF, _ := price.Float64()
		volF, _ := volume.Float64()
		k := key.NewExchangeAssetPair(a.Name(), req.Asset, req.Pair)
		if err := limits.CheckOrderExecutionLimits(k, priceF, volF, req.Type); err != nil {
			return nil, fmt.Errorf("nova place order: %w", err)
		}
	}

	clientOrderID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generating client order id: %w", err)
	}

	body := map[string]string{
		"market":          m.VenueSymbolName,
		"side":            req.Side.String(),
		"type":            req.Type.String(),
		"client_order_id": clientOrderID.String(),
	}
	if !volume.IsZero() {
		body["size"] = volume.String()
	}
	if !req.QuoteVolume.IsZero() {
		body["quote_size"] = req.QuoteVolume.String()
	}
	if req.Type == order.Limit {
		body["price"] = price.String()
	}

	var result orderWire
	resp, err := a.authedJSON(ctx, creds, weightOrder, http.MethodPost, "/orders", body, &result)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, venue.ErrOrderPlacementFailed
	}
	detail, err := result.toDetail(req.Pair, req.Asset)
	if err != nil {
		return nil, err
	}

	// §4.4: synthesize an order_update from the immediate response so the
	// Account learns of the order before the next WS tick, rather than
	// waiting on the user-data channel to echo it back.
	a.mu.RLock()
	handler := a.orderHandler
	a.mu.RUnlock()
	if handler != nil {
		handler(detail)
	}

	return detail, nil
}

// CancelOrder requests cancellation of id. A venue-side "already closed"
// rejection is returned as an error carrying the response body, which
// account.Account.CancelOrder recognises and treats as success.
func (a *Adapter) CancelOrder(ctx context.Context, creds venue.Credentials, id string) error {
	_, err := a.authedJSON(ctx, creds, weightOrder, http.MethodDelete, "/orders/"+id, nil, nil)
	return err
}

// CancelAllOrders requests cancellation of every open order on the account.
func (a *Adapter) CancelAllOrders(ctx context.Context, creds venue.Credentials) error {
	_, err := a.authedJSON(ctx, creds, weightOrder, http.MethodDelete, "/orders", nil, nil)
	return err
}

// GetOpenOrders returns every order currently open on the account.
func (a *Adapter) GetOpenOrders(ctx context.Context, creds venue.Credentials) ([]*order.Detail, error) {
	var raw []orderWire
	if _, err := a.authedJSON(ctx, creds, weightAccount, http.MethodGet, "/orders/open", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]*order.Detail, 0, len(raw))
	for _, w := range raw {
		pair, a2 := a.resolveSymbol(w.Market)
		d, err := w.toDetail(pair, a2)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// GetPositions returns every open futures position on the account.
func (a *Adapter) GetPositions(ctx context.Context, creds venue.Credentials) ([]*position.Position, error) {
	var raw []positionWire
	if _, err := a.authedJSON(ctx, creds, weightAccount, http.MethodGet, "/positions", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]*position.Position, 0, len(raw))
	for _, w := range raw {
		pair, _ := a.resolveSymbol(w.Market)
		p, err := w.toPosition(pair)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetAccountBalances returns the account's spot wallet balances.
func (a *Adapter) GetAccountBalances(ctx context.Context, creds venue.Credentials) (map[currency.Code]decimal.Decimal, error) {
	var raw map[string]string
	if _, err := a.authedJSON(ctx, creds, weightAccount, http.MethodGet, "/balances", nil, &raw); err != nil {
		return nil, err
	}
	out := make(map[currency.Code]decimal.Decimal, len(raw))
	for code, amount := range raw {
		out[currency.NewCode(code)] = mustDecimal(amount)
	}
	return out, nil
}

// GetAccountInfo returns the account's leverage and collateral summary.
func (a *Adapter) GetAccountInfo(ctx context.Context, creds venue.Credentials) (venue.AccountInfo, error) {
	var raw accountInfoWire
	if _, err := a.authedJSON(ctx, creds, weightAccount, http.MethodGet, "/account", nil, &raw); err != nil {
		return venue.AccountInfo{}, err
	}
	return venue.AccountInfo{
		Leverage:       mustDecimal(raw.Leverage),
		FreeCollateral: mustDecimal(raw.FreeCollateral),
		Collateral:     currency.NewCode(raw.Collateral),
	}, nil
}

// GetFills returns every fill recorded against orderID.
func (a *Adapter) GetFills(ctx context.Context, creds venue.Credentials, orderID string) ([]*order.Fill, error) {
	var raw []fillWire
	params := map[string]string{"order_id": orderID}
	if _, err := a.signedAuthedJSON(ctx, creds, weightAccount, http.MethodGet, "/fills", params, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]*order.Fill, 0, len(raw))
	for _, w := range raw {
		pair, a2 := a.resolveSymbol(w.Market)
		f, err := w.toFill(pair, a2)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// candleQuery renders GetCandles' query string via go-querystring's
// struct tags.
type candleQuery struct {
	Market     string `url:"market"`
	Resolution string `url:"resolution"`
	StartTime  int64  `url:"start_time"`
	EndTime    int64  `url:"end_time"`
}

// GetCandles returns OHLCV bars for pair between startUnix and endUnix.
func (a *Adapter) GetCandles(ctx context.Context, pair currency.Pair, resolution string, startUnix, endUnix int64) ([]venue.Candle, error) {
	m, ok := a.marketFor(pair)
	if !ok {
		return nil, venue.ErrUnknownMarket
	}
	values, err := query.Values(candleQuery{Market: m.VenueSymbolName, Resolution: resolution, StartTime: startUnix, EndTime: endUnix})
	if err != nil {
		return nil, fmt.Errorf("encoding candle query: %w", err)
	}
	params := make(map[string]string, len(values))
	for k := range values {
		params[k] = values.Get(k)
	}

	if err := a.limit.Wait(ctx, request.Weight{weightPublic: 1}); err != nil {
		return nil, err
	}
	var raw []candleWire
	resp, err := a.http.R().SetContext(ctx).SetQueryParams(params).SetResult(&raw).Get("/candles")
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("get candles: status %d", resp.StatusCode())
	}

	out := make([]venue.Candle, len(raw))
	for i, w := range raw {
		out[i] = venue.Candle{
			OpenTime: w.OpenTime,
			Open:     mustDecimal(w.Open),
			High:     mustDecimal(w.High),
			Low:      mustDecimal(w.Low),
			Close:    mustDecimal(w.Close),
			Volume:   mustDecimal(w.Volume),
		}
	}
	return out, nil
}

// authedJSON signs and executes an authenticated request whose response
// body decodes into dst.
func (a *Adapter) authedJSON(ctx context.Context, creds venue.Credentials, weight request.EndpointLimit, method, path string, body, dst any) (*resty.Response, error) {
	return a.signedAuthedJSON(ctx, creds, weight, method, path, nil, body, dst)
}

func (a *Adapter) signedAuthedJSON(ctx context.Context, creds venue.Credentials, weight request.EndpointLimit, method, path string, params map[string]string, body, dst any) (*resty.Response, error) {
	if creds.Key == "" {
		return nil, venue.ErrAuthFailed
	}
	if err := a.limit.Wait(ctx, request.Weight{weight: 1}); err != nil {
		return nil, fmt.Errorf("nova rate limit: %w", err)
	}

	var bodyJSON string
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding body for signing: %w", err)
		}
		bodyJSON = string(raw)
	}

	sigReq := signing.Request{Method: method, Path: path, Params: params, Body: bodyJSON}
	result, err := a.signer.Sign(sigReq, creds.Key, creds.Secret, time.Now())
	if err != nil {
		return nil, fmt.Errorf("signing %s %s: %w", method, path, err)
	}

	r := a.http.R().SetContext(ctx)
	for k, v := range params {
		r.SetQueryParam(k, v)
	}
	for k, v := range result.Params {
		r.SetQueryParam(k, v)
	}
	for k, v := range result.Headers {
		r.SetHeader(k, v)
	}
	if creds.Subaccount != "" {
		r.SetHeader("NOVA-SUBACCOUNT", creds.Subaccount)
	}
	if body != nil {
		// Transmit the exact bytes that were signed above; letting resty
		// re-marshal body independently risks the wire body and the signed
		// payload drifting apart.
		r.SetHeader("Content-Type", "application/json").SetBody([]byte(bodyJSON))
	}
	if dst != nil {
		r.SetResult(dst)
	}

	resp, err := r.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, venue.ErrAuthFailed
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode(), resp.String())
	}
	return resp, nil
}

func (a *Adapter) resolveSymbol(symbol string) (currency.Pair, asset.Item) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for pair, m := range a.markets {
		if m.VenueSymbolName == symbol {
			return pair, m.Kind
		}
	}
	pair, _ := currency.NewPairFromString(symbol)
	return pair, asset.Spot
}
