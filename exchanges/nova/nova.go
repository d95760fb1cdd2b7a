// Package nova implements the venue.Adapter contract against a fictional
// exchange ("nova") whose two wire quirks stand in for the two signing
// shapes and the two market kinds §4.4 asks an adapter to bridge: spot and
// USDT-margined perpetuals, REST auth via NOVA-KEY/NOVA-SIGN/NOVA-TS
// headers, and a single multiplexed depth/order/fill websocket.
package nova

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchange/request"
	"github.com/lumenfx/tradecore/exchange/websocket"
	"github.com/lumenfx/tradecore/exchanges/asset"
	"github.com/lumenfx/tradecore/exchanges/market"
	"github.com/lumenfx/tradecore/exchanges/order"
	"github.com/lumenfx/tradecore/exchanges/orderbook"
	"github.com/lumenfx/tradecore/exchanges/venue"
	"github.com/lumenfx/tradecore/internal/log"
	"github.com/lumenfx/tradecore/internal/signing"
)

const (
	restBaseURL = "https://api.nova.exchange"
	wsURL       = "wss://stream.nova.exchange/ws"

	weightPublic  request.EndpointLimit = "public"
	weightOrder   request.EndpointLimit = "order"
	weightAccount request.EndpointLimit = "account"
)

// Config carries the operator knobs an Adapter needs beyond the
// per-call Credentials, matching §9's "no global mutable state": an Adapter
// holds only connection state of its own, never credentials.
type Config struct {
	BaseURL          string
	WSURL            string
	ReconnectBackoff time.Duration
}

// Adapter is the nova venue.Adapter implementation.
type Adapter struct {
	cfg    Config
	http   *resty.Client
	signer signing.Signer
	limit  *request.Limiter
	log    log.Logger

	pingLimiter *rate.Limiter

	mu           sync.RWMutex
	markets      map[currency.Pair]*market.Market
	books        map[currency.Pair]*orderbook.Book
	orderHandler func(*order.Detail)
	fillHandler  func(*order.Fill)

	wsMu sync.Mutex
	ws   *websocket.Connection
}

// New builds an Adapter, applying defaults to any zero-value Config field.
func New(cfg Config) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = restBaseURL
	}
	if cfg.WSURL == "" {
		cfg.WSURL = wsURL
	}
	if cfg.ReconnectBackoff == 0 {
		cfg.ReconnectBackoff = 2 * time.Second
	}

	limiter := request.NewLimiter()
	limiter.Configure(weightPublic, time.Minute, 1200)
	limiter.Configure(weightOrder, 10*time.Second, 100)
	limiter.Configure(weightAccount, time.Minute, 180)

	return &Adapter{
		cfg:         cfg,
		http:        resty.New().SetBaseURL(cfg.BaseURL).SetTimeout(10 * time.Second),
		signer:      signing.HeaderSplitHMAC{},
		limit:       limiter,
		log:         log.WithExchange(log.New("venue"), "nova"),
		pingLimiter: rate.NewLimiter(rate.Every(15*time.Second), 1),
		markets:     make(map[currency.Pair]*market.Market),
		books:       make(map[currency.Pair]*orderbook.Book),
	}
}

var _ venue.Adapter = (*Adapter)(nil)

// Name reports the venue's identifier, used as the Exchange field on
// Account, Order and Fill records it produces.
func (a *Adapter) Name() string { return "nova" }

// Connect loads the market list and primes the execution-limit store; it
// does not open the websocket, which is deferred to the first
// SubscribeOrderBooks/SubscribeUserData call.
func (a *Adapter) Connect(ctx context.Context) error {
	markets, err := a.fetchMarkets(ctx)
	if err != nil {
		return fmt.Errorf("nova connect: %w", err)
	}

	a.mu.Lock()
	for _, m := range markets {
		a.markets[m.Pair] = m
	}
	a.mu.Unlock()

	a.log.Info().Int("markets", len(markets)).Msg("connected")
	return nil
}

// Close tears down the websocket connection, if one was opened.
func (a *Adapter) Close(_ context.Context) error {
	a.wsMu.Lock()
	defer a.wsMu.Unlock()
	if a.ws == nil {
		return nil
	}
	err := a.ws.Close()
	a.ws = nil
	return err
}

// Markets returns the loaded market metadata, keyed by trading pair.
func (a *Adapter) Markets() map[currency.Pair]*market.Market {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[currency.Pair]*market.Market, len(a.markets))
	for k, v := range a.markets {
		out[k] = v
	}
	return out
}

func (a *Adapter) marketFor(pair currency.Pair) (*market.Market, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.markets[pair]
	return m, ok
}

// OnOrderUpdate registers the callback invoked for every order-update frame
// received after SubscribeUserData; it is not part of venue.Adapter since
// callback wiring is an adapter-construction concern, done once by whatever
// owns the concrete *Adapter before handing it to an Account as an
// venue.Adapter.
func (a *Adapter) OnOrderUpdate(handler func(*order.Detail)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.orderHandler = handler
}

// OnFillUpdate registers the callback invoked for every fill-update frame.
func (a *Adapter) OnFillUpdate(handler func(*order.Fill)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fillHandler = handler
}
