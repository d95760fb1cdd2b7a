// Package currency provides interned currency codes and trading pairs used
// throughout the venue, orderbook, account and rebalancer packages.
package currency

import (
	"errors"
	"strings"
	"sync"
)

// ErrCurrencyCodeEmpty is returned when an operation is attempted against an
// unset currency code.
var ErrCurrencyCodeEmpty = errors.New("currency code is empty")

// ErrCurrencyPairEmpty is returned when an operation is attempted against an
// unset currency pair.
var ErrCurrencyPairEmpty = errors.New("currency pair is empty")

// Item is the interned representation of a currency symbol. Codes compare
// by pointer so that a Code value can be used directly as a map key without
// hashing its string form on every lookup.
type Item struct {
	Symbol string
}

var (
	itemsMu sync.Mutex
	items   = make(map[string]*Item)
)

func intern(symbol string) *Item {
	upper := strings.ToUpper(symbol)
	itemsMu.Lock()
	defer itemsMu.Unlock()
	if it, ok := items[upper]; ok {
		return it
	}
	it := &Item{Symbol: upper}
	items[upper] = it
	return it
}

// Code wraps an interned Item and tracks whether the caller asked for the
// upper or lower cased rendering of it.
type Code struct {
	Item      *Item
	lowerCase bool
}

// NewCode interns symbol and returns the upper-cased Code for it. An empty
// symbol yields the zero value Code{}, which IsEmpty reports true for.
func NewCode(symbol string) Code {
	if symbol == "" {
		return Code{}
	}
	return Code{Item: intern(symbol)}
}

// IsEmpty returns true when the code carries no underlying Item.
func (c Code) IsEmpty() bool {
	return c.Item == nil
}

// String renders the code in the case the caller requested.
func (c Code) String() string {
	if c.Item == nil {
		return ""
	}
	if c.lowerCase {
		return strings.ToLower(c.Item.Symbol)
	}
	return c.Item.Symbol
}

// Upper returns the code rendered in upper case.
func (c Code) Upper() Code {
	c.lowerCase = false
	return c
}

// Lower returns the code rendered in lower case.
func (c Code) Lower() Code {
	c.lowerCase = true
	return c
}

// Equal reports whether two codes refer to the same interned Item,
// irrespective of case rendering.
func (c Code) Equal(other Code) bool {
	return c.Item == other.Item
}

// Common asset codes used across example venues and tests.
var (
	BTC     = NewCode("BTC")
	ETH     = NewCode("ETH")
	USDT    = NewCode("USDT")
	USD     = NewCode("USD")
	USDC    = NewCode("USDC")
	BNB     = NewCode("BNB")
	LTC     = NewCode("LTC")
	XRP     = NewCode("XRP")
	BABY    = NewCode("BABY")
	BABYDOGE = NewCode("BABYDOGE")
	PERP    = NewCode("PERP")
)
