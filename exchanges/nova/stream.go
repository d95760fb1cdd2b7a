package nova

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/buger/jsonparser"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchange/websocket"
	"github.com/lumenfx/tradecore/exchanges/order"
	"github.com/lumenfx/tradecore/exchanges/orderbook"
	"github.com/lumenfx/tradecore/exchanges/venue"
	"github.com/lumenfx/tradecore/internal/signing"
)

// dial opens the websocket connection on first use; subsequent calls reuse
// the existing one.
func (a *Adapter) dial(ctx context.Context) (*websocket.Connection, error) {
	a.wsMu.Lock()
	defer a.wsMu.Unlock()
	if a.ws != nil {
		return a.ws, nil
	}

	conn := websocket.NewConnection(a.cfg.WSURL)
	if err := conn.Dial(ctx, nil, a.onMessage, a.onStreamError); err != nil {
		return nil, fmt.Errorf("nova dial: %w", err)
	}
	a.ws = conn
	go a.pingLoop(ctx, conn)
	return conn, nil
}

// pingLoop keeps the connection alive with a rate-limited ping frame,
// stopping once ctx is cancelled or the connection this loop was started
// for is replaced by a later Dial.
func (a *Adapter) pingLoop(ctx context.Context, conn *websocket.Connection) {
	for {
		if err := a.pingLimiter.Wait(ctx); err != nil {
			return
		}
		a.wsMu.Lock()
		current := a.ws
		a.wsMu.Unlock()
		if current != conn {
			return
		}
		if err := conn.SendJSON(map[string]string{"op": "ping"}); err != nil {
			return
		}
	}
}

func (a *Adapter) onStreamError(err error) {
	a.log.Error().Err(err).Msg("websocket stream error")
}

// onMessage is the single dispatch point for every inbound frame:
// jsonparser peeks the channel field without a full unmarshal, so heartbeats
// and unhandled channels skip a struct decode; depth, order and fill frames
// are then unmarshaled in full by their handlers.
func (a *Adapter) onMessage(raw []byte) {
	channel, err := jsonparser.GetString(raw, "channel")
	if err != nil {
		a.log.Warn().Err(err).Msg("frame missing channel field")
		return
	}

	switch channel {
	case "heartbeat":
		return
	case "depth":
		a.handleDepth(raw)
	case "orders":
		a.handleOrderUpdate(raw)
	case "fills":
		a.handleFillUpdate(raw)
	default:
		a.log.Debug().Str("channel", channel).Msg("unhandled frame channel")
	}
}

func (a *Adapter) handleDepth(raw []byte) {
	var frame depthWire
	if err := json.Unmarshal(raw, &frame); err != nil {
		a.log.Warn().Err(err).Msg("decoding depth frame")
		return
	}

	pair, assetKind := a.resolveSymbol(frame.Market)
	a.mu.RLock()
	book, ok := a.books[pair]
	a.mu.RUnlock()
	if !ok {
		return // not subscribed (or subscription since torn down)
	}

	update := &orderbook.Update{
		Pair:       pair,
		Asset:      assetKind,
		Bids:       toLevels(frame.Bids),
		Asks:       toLevels(frame.Asks),
		Initial:    frame.Type == "snapshot",
		AllowEmpty: true,
		UpdateID:   frame.UpdateID,
		UpdateTime: time.Now(),
		Checksum:   frame.Checksum,
	}
	if err := book.Process(update); err != nil {
		a.log.Warn().Err(err).Str("pair", pair.String()).Msg("processing depth update")
	}
}

func (a *Adapter) handleOrderUpdate(raw []byte) {
	var frame orderWire
	if err := json.Unmarshal(raw, &frame); err != nil {
		a.log.Warn().Err(err).Msg("decoding order frame")
		return
	}
	pair, assetKind := a.resolveSymbol(frame.Market)
	detail, err := frame.toDetail(pair, assetKind)
	if err != nil {
		a.log.Warn().Err(err).Msg("converting order frame")
		return
	}
	a.mu.RLock()
	handler := a.orderHandler
	a.mu.RUnlock()
	if handler != nil {
		handler(detail)
	}
}

func (a *Adapter) handleFillUpdate(raw []byte) {
	var frame fillWire
	if err := json.Unmarshal(raw, &frame); err != nil {
		a.log.Warn().Err(err).Msg("decoding fill frame")
		return
	}
	pair, assetKind := a.resolveSymbol(frame.Market)
	fill, err := frame.toFill(pair, assetKind)
	if err != nil {
		a.log.Warn().Err(err).Msg("converting fill frame")
		return
	}
	a.mu.RLock()
	handler := a.fillHandler
	a.mu.RUnlock()
	if handler != nil {
		handler(fill)
	}
}

// SubscribeOrderBooks dials the websocket if needed, subscribes to the
// depth channel for each pair, and returns the Book each will be
// reconstructed into.
func (a *Adapter) SubscribeOrderBooks(ctx context.Context, pairs ...currency.Pair) (map[currency.Pair]*orderbook.Book, error) {
	conn, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[currency.Pair]*orderbook.Book, len(pairs))
	a.mu.Lock()
	for _, pair := range pairs {
		m, ok := a.markets[pair]
		if !ok {
			a.mu.Unlock()
			return nil, venue.ErrUnknownMarket
		}
		book := orderbook.New(a.Name(), pair, m.Kind)
		a.books[pair] = book
		out[pair] = book
	}
	a.mu.Unlock()

	for _, pair := range pairs {
		m := a.markets[pair]
		if err := conn.SendJSON(subscribeFrame{Op: "subscribe", Channel: "depth", Market: m.VenueSymbolName}); err != nil {
			return nil, fmt.Errorf("subscribe depth %s: %w", pair, err)
		}
		conn.TrackSubscription("depth:" + m.VenueSymbolName)
	}
	return out, nil
}

// UnsubscribeOrderBooks tears down the depth subscription for each pair and
// discards its Book.
func (a *Adapter) UnsubscribeOrderBooks(ctx context.Context, pairs ...currency.Pair) error {
	a.wsMu.Lock()
	conn := a.ws
	a.wsMu.Unlock()
	if conn == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, pair := range pairs {
		m, ok := a.markets[pair]
		if !ok {
			continue
		}
		if err := conn.SendJSON(subscribeFrame{Op: "unsubscribe", Channel: "depth", Market: m.VenueSymbolName}); err != nil {
			return fmt.Errorf("unsubscribe depth %s: %w", pair, err)
		}
		conn.UntrackSubscription("depth:" + m.VenueSymbolName)
		delete(a.books, pair)
	}
	return nil
}

// SubscribeUserData logs in with creds over the websocket and subscribes to
// the account's order and fill channels. A failure to send the login frame
// is returned as venue.ErrAuthFailed; the venue's reply to the login is not
// read, so a rejected signature is not reported by this method.
func (a *Adapter) SubscribeUserData(ctx context.Context, creds venue.Credentials) error {
	conn, err := a.dial(ctx)
	if err != nil {
		return err
	}

	sigReq := signing.Request{Method: http.MethodGet, Path: "/ws/login"}
	result, err := a.signer.Sign(sigReq, creds.Key, creds.Secret, time.Now())
	if err != nil {
		return fmt.Errorf("signing ws login: %w", err)
	}

	if err := conn.SendJSON(loginFrame{Op: "login", Headers: result.Headers}); err != nil {
		return venue.ErrAuthFailed
	}
	if err := conn.SendJSON(subscribeFrame{Op: "subscribe", Channel: "orders"}); err != nil {
		return fmt.Errorf("subscribe orders: %w", err)
	}
	if err := conn.SendJSON(subscribeFrame{Op: "subscribe", Channel: "fills"}); err != nil {
		return fmt.Errorf("subscribe fills: %w", err)
	}
	return nil
}

type subscribeFrame struct {
	Op      string `json:"op"`
	Channel string `json:"channel"`
	Market  string `json:"market,omitempty"`
}

type loginFrame struct {
	Op      string            `json:"op"`
	Headers map[string]string `json:"headers"`
}
