// Package asset enumerates the market kinds a venue adapter can trade:
// spot pairs and (USDT-margined) perpetual futures.
package asset

import (
	"errors"
	"strings"
)

// ErrNotSupported is returned when an operation names an asset.Item the
// caller has not provided, i.e. the zero value.
var ErrNotSupported = errors.New("asset type not supported")

// ErrInvalidAsset is returned when an asset.Item does not match any known
// constant.
var ErrInvalidAsset = errors.New("invalid asset")

// Item identifies the kind of market a Pair trades on.
type Item uint8

// Supported asset kinds. The zero value is deliberately invalid so a missing
// Item is never silently treated as Spot.
const (
	Spot Item = iota + 1
	Futures
	USDTMarginedFutures
)

var supported = map[Item]string{
	Spot:                "spot",
	Futures:             "future",
	USDTMarginedFutures: "usdt_margined_futures",
}

// String renders the asset kind, or "" for an unrecognised value.
func (i Item) String() string {
	return supported[i]
}

// IsValid reports whether i is one of the known constants.
func (i Item) IsValid() bool {
	_, ok := supported[i]
	return ok
}

// IsFutures reports whether the asset kind is any futures variant.
func (i Item) IsFutures() bool {
	return i == Futures || i == USDTMarginedFutures
}

// New resolves a lower-case asset string into its Item, erroring on any
// value this package does not recognise.
func New(s string) (Item, error) {
	s = strings.ToLower(s)
	for item, name := range supported {
		if name == s {
			return item, nil
		}
	}
	return 0, ErrInvalidAsset
}

// Items is a collection of asset kinds, mirroring the helper methods venue
// adapters use to advertise which markets they support.
type Items []Item

// Contains reports whether target is present in the collection.
func (i Items) Contains(target Item) bool {
	for _, a := range i {
		if a == target {
			return true
		}
	}
	return false
}

// Strings renders every item in the collection.
func (i Items) Strings() []string {
	out := make([]string, len(i))
	for x := range i {
		out[x] = i[x].String()
	}
	return out
}

// JoinToString joins the string rendering of every item with sep.
func (i Items) JoinToString(sep string) string {
	return strings.Join(i.Strings(), sep)
}
