// Package request implements the per-venue rate scheduler: every outbound
// request carries a weight map of {kind: spent}, and admission is gated on
// a bounded sliding window per kind.
package request

import (
	"context"
	"sync"
	"time"
)

// EndpointLimit names one weight kind a request can spend against, e.g.
// "orders" or "requestWeight" in Binance's own vocabulary.
type EndpointLimit string

// Weight is a request's cost against one or more kinds.
type Weight map[EndpointLimit]int

// windowConfig is the admission rule for one kind: at most Limit spent
// within any Window-sized sliding interval.
type windowConfig struct {
	Window time.Duration
	Limit  int
}

type spend struct {
	at     time.Time
	amount int
}

// Limiter admits requests against a set of per-kind sliding windows. All
// admission for a given Limiter is serialized behind a single lock so that
// a multi-kind request never partially consumes its budget: see §4.2's "a
// two-kind request does not partially consume budget".
type Limiter struct {
	mu      sync.Mutex
	windows map[EndpointLimit]windowConfig
	history map[EndpointLimit][]spend

	// now is overridable in tests; defaults to time.Now.
	now func() time.Time
}

// NewLimiter builds an empty Limiter; call Configure for each weight kind
// the venue imposes before the first request.
func NewLimiter() *Limiter {
	return &Limiter{
		windows: make(map[EndpointLimit]windowConfig),
		history: make(map[EndpointLimit][]spend),
		now:     time.Now,
	}
}

// Configure registers the sliding-window rule for kind. Calling it again
// replaces the rule and clears that kind's history.
func (l *Limiter) Configure(kind EndpointLimit, window time.Duration, limit int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows[kind] = windowConfig{Window: window, Limit: limit}
	delete(l.history, kind)
}

// Wait blocks until w can be admitted against every kind it names, then
// records the spend. It holds the Limiter's lock across any necessary sleep
// so concurrent callers are served strictly FIFO per the serialized-lock
// tie-break rule in §4.2.
func (l *Limiter) Wait(ctx context.Context, w Weight) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for {
		now := l.now()
		sleep, err := l.admitLocked(now, w)
		if err != nil {
			return err
		}
		if sleep <= 0 {
			for kind, amount := range w {
				l.history[kind] = append(l.history[kind], spend{at: now, amount: amount})
			}
			return nil
		}

		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// admitLocked prunes stale history and returns the sleep duration still
// required before w can be admitted (0 meaning "admit now"), or an error if
// a kind's limit can never be satisfied. Kinds in w with no configured
// window are not metered.
func (l *Limiter) admitLocked(now time.Time, w Weight) (time.Duration, error) {
	var maxSleep time.Duration

	for kind, amount := range w {
		cfg, ok := l.windows[kind]
		if !ok {
			continue // unconfigured kinds are unmetered
		}
		if amount > cfg.Limit {
			return 0, ErrRateLimitExhausted
		}

		hist := l.history[kind]
		cutoff := now.Add(-cfg.Window)
		pruned := hist[:0]
		spent := 0
		for _, s := range hist {
			if s.at.After(cutoff) {
				pruned = append(pruned, s)
				spent += s.amount
			}
		}
		l.history[kind] = pruned

		if spent+amount <= cfg.Limit {
			continue
		}

		oldest := pruned[0].at
		wait := cfg.Window - now.Sub(oldest)
		if wait > maxSleep {
			maxSleep = wait
		}
	}

	return maxSleep, nil
}
