package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	gws "github.com/gorilla/websocket"
)

// ErrNotConnected is returned by send/read operations attempted against a
// Connection that has not completed Dial, or that has since been closed.
var ErrNotConnected = errors.New("websocket connection is not connected")

// Response is the result of a MatchReturnResponses call: either the set of
// frames collected before the count was reached or the deadline fired, or
// Err explaining why none arrived.
type Response struct {
	Responses [][]byte
	Err       error
}

// Connection wraps one gorilla websocket.Conn for a single venue. Writes are
// serialized by writeMu; decoded frames are read only from the listener
// goroutine started by Dial.
type Connection struct {
	URL              string
	ResponseMaxLimit time.Duration

	Match *Match

	mu      sync.Mutex
	writeMu sync.Mutex
	conn    *gws.Conn
	nextID  int64
	closed  atomic.Bool

	subMu sync.Mutex
	subs  map[string]struct{}
}

// NewConnection builds a Connection for addr, ready for Dial.
func NewConnection(addr string) *Connection {
	return &Connection{URL: addr, Match: NewMatch(), ResponseMaxLimit: 10 * time.Second, subs: make(map[string]struct{})}
}

// Dial opens the underlying socket and starts the listener goroutine that
// feeds inbound frames to onMessage until a read fails (including after
// Close). ctx bounds only the dial itself.
func (c *Connection) Dial(ctx context.Context, header http.Header, onMessage func([]byte), onError func(error)) error {
	conn, _, err := gws.DefaultDialer.DialContext(ctx, c.URL, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.URL, err)
	}
	c.mu.Lock()
	c.conn = conn
	c.closed.Store(false)
	c.mu.Unlock()

	go c.listen(onMessage, onError)
	return nil
}

func (c *Connection) listen(onMessage func([]byte), onError func(error)) {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.closed.Store(true)
			if onError != nil {
				onError(err)
			}
			return
		}
		if onMessage != nil {
			onMessage(data)
		}
	}
}

// NextRequestID returns a monotonically increasing id suitable for
// correlating an outbound request with its response via Match.
func (c *Connection) NextRequestID() int64 {
	return atomic.AddInt64(&c.nextID, 1)
}

// SendRaw writes payload to the socket. Writes are serialized: gorilla's
// websocket.Conn permits only one concurrent writer.
func (c *Connection) SendRaw(payload []byte) error {
	if c.closed.Load() {
		return ErrNotConnected
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(gws.TextMessage, payload)
}

// SendJSON marshals v and writes it as a single text frame.
func (c *Connection) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.SendRaw(data)
}

// RequireMatchWithData delivers data to the registered waiter for signature,
// returning ErrSignatureNotMatched if nothing is waiting.
func (c *Connection) RequireMatchWithData(signature any, data []byte) error {
	if !c.Match.IncomingWithData(signature, data) {
		return ErrSignatureNotMatched
	}
	return nil
}

// IncomingWithData is an alias kept for parity with Match's own method so
// callers can dispatch through the Connection without reaching into Match.
func (c *Connection) IncomingWithData(signature any, data []byte) bool {
	return c.Match.IncomingWithData(signature, data)
}

// MatchReturnResponses sends payload (when non-nil) then waits for frames
// matching signature: up to count frames, bounded by ResponseMaxLimit and
// by ctx.
func (c *Connection) MatchReturnResponses(ctx context.Context, signature any, count int, payload ...any) (chan Response, error) {
	ch, err := c.Match.Set(signature, count)
	if err != nil {
		return nil, err
	}

	out := make(chan Response, 1)
	go func() {
		defer c.Match.RemoveSignature(signature)

		if len(payload) > 0 && payload[0] != nil {
			if err := c.SendJSON(payload[0]); err != nil {
				out <- Response{Err: err}
				return
			}
		}

		if c.ResponseMaxLimit <= 0 {
			out <- Response{Err: ErrSignatureTimeout}
			return
		}

		deadline := time.NewTimer(c.ResponseMaxLimit)
		defer deadline.Stop()

		var responses [][]byte
		for len(responses) < count {
			select {
			case <-ctx.Done():
				out <- Response{Responses: responses, Err: ctx.Err()}
				return
			case <-deadline.C:
				if len(responses) == 0 {
					out <- Response{Err: ErrSignatureTimeout}
					return
				}
				out <- Response{Responses: responses}
				return
			case data := <-ch:
				responses = append(responses, data)
			}
		}
		out <- Response{Responses: responses}
	}()
	return out, nil
}

// Subscriptions returns the set of channel names this Connection believes it
// is subscribed to.
func (c *Connection) Subscriptions() []string {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if len(c.subs) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.subs))
	for k := range c.subs {
		out = append(out, k)
	}
	return out
}

// TrackSubscription records channel as subscribed.
func (c *Connection) TrackSubscription(channel string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subs[channel] = struct{}{}
}

// UntrackSubscription removes channel from the subscribed set.
func (c *Connection) UntrackSubscription(channel string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	delete(c.subs, channel)
}

// Close terminates the socket. It is idempotent.
func (c *Connection) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	c.closed.Store(true)
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// parseURL validates addr is a well-formed ws/wss URL.
func parseURL(addr string) error {
	u, err := url.Parse(addr)
	if err != nil {
		return err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: scheme %q is not ws/wss", ErrNotConnected, u.Scheme)
	}
	return nil
}
