// Package key provides comparable struct keys for maps holding per-market
// and per-venue state, avoiding the allocation of a string key on every
// lookup.
package key

import (
	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/asset"
)

// PairAsset uniquely identifies a market within a single venue connection:
// its base/quote legs plus the asset kind (spot vs futures) it trades on.
type PairAsset struct {
	Base  *currency.Item
	Quote *currency.Item
	Asset asset.Item
}

// GeneratePairAssetKey validates pair and a, then returns the comparable key
// for them.
func GeneratePairAssetKey(pair currency.Pair, a asset.Item) (PairAsset, error) {
	if pair.IsEmpty() {
		return PairAsset{}, currency.ErrCurrencyPairEmpty
	}
	if !a.IsValid() {
		return PairAsset{}, asset.ErrInvalidAsset
	}
	return PairAsset{Base: pair.Base.Item, Quote: pair.Quote.Item, Asset: a}, nil
}

// ExchangeAssetPair extends PairAsset with the venue name, used where state
// is shared across more than one venue connection (e.g. order-limit tables).
type ExchangeAssetPair struct {
	Exchange string
	Asset    asset.Item
	Base     *currency.Item
	Quote    *currency.Item
}

// NewExchangeAssetPair builds an ExchangeAssetPair key. Unlike
// GeneratePairAssetKey this constructor does not validate its arguments;
// validation happens where the key is loaded into a store so that
// informative, field-specific errors can be raised there.
func NewExchangeAssetPair(exchange string, a asset.Item, pair currency.Pair) ExchangeAssetPair {
	return ExchangeAssetPair{
		Exchange: exchange,
		Asset:    a,
		Base:     pair.Base.Item,
		Quote:    pair.Quote.Item,
	}
}
