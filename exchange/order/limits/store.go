package limits

import (
	"sync"

	"github.com/lumenfx/tradecore/common/key"
	"github.com/lumenfx/tradecore/exchanges/order"
)

// store holds the loaded execution limits for every (exchange, asset, pair)
// key an account trades on. The zero value is ready to use.
type store struct {
	mu     sync.RWMutex
	levels map[key.ExchangeAssetPair]MinMaxLevel
}

// load replaces the full set of limits, validating every entry's key and
// bounds before any of them take effect: a bad entry anywhere in the batch
// fails the whole load rather than leaving the store half updated.
func (s *store) load(levels []MinMaxLevel) error {
	if len(levels) == 0 {
		return ErrEmptyLevels
	}

	next := make(map[key.ExchangeAssetPair]MinMaxLevel, len(levels))
	for _, l := range levels {
		if l.Key.Exchange == "" {
			return errExchangeNameEmpty
		}
		if !l.Key.Asset.IsValid() {
			return errAssetInvalid
		}
		if l.Key.Base == nil || l.Key.Quote == nil {
			return errPairNotSet
		}
		if l.MinPrice > 0 && l.MaxPrice > 0 && l.MinPrice > l.MaxPrice {
			return errInvalidPriceLevels
		}
		if l.MinimumBaseAmount > 0 && l.MaximumBaseAmount > 0 && l.MinimumBaseAmount > l.MaximumBaseAmount {
			return errInvalidAmountLevels
		}
		if l.MinimumQuoteAmount > 0 && l.MaximumQuoteAmount > 0 && l.MinimumQuoteAmount > l.MaximumQuoteAmount {
			return errInvalidQuoteLevels
		}
		next[l.Key] = l
	}

	s.mu.Lock()
	s.levels = next
	s.mu.Unlock()
	return nil
}

func (s *store) getOrderExecutionLimits(k key.ExchangeAssetPair) (MinMaxLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.levels == nil {
		return MinMaxLevel{}, ErrExchangeLimitNotLoaded
	}
	l, ok := s.levels[k]
	if !ok {
		return MinMaxLevel{}, ErrOrderLimitNotFound
	}
	return l, nil
}

func (s *store) checkOrderExecutionLimits(k key.ExchangeAssetPair, price, amount float64, orderType order.Type) error {
	l, err := s.getOrderExecutionLimits(k)
	if err != nil {
		return err
	}
	if orderType != order.Market {
		if l.MinPrice > 0 && price < l.MinPrice {
			return ErrPriceBelowMin
		}
		if l.MaxPrice > 0 && price > l.MaxPrice {
			return ErrPriceExceedsMax
		}
	}
	return (&l).Validate(price, amount, orderType)
}

var global store

// Load replaces the process-wide set of execution limits.
func Load(levels []MinMaxLevel) error {
	return global.load(levels)
}

// GetOrderExecutionLimits returns the loaded limits for k.
func GetOrderExecutionLimits(k key.ExchangeAssetPair) (MinMaxLevel, error) {
	return global.getOrderExecutionLimits(k)
}

// CheckOrderExecutionLimits validates price and amount against the loaded
// limits for k.
func CheckOrderExecutionLimits(k key.ExchangeAssetPair, price, amount float64, orderType order.Type) error {
	return global.checkOrderExecutionLimits(k, price, amount, orderType)
}
