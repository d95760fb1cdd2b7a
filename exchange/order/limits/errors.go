package limits

import "errors"

var (
	ErrNotionalValue   = errors.New("notional value of order is less than min notional")
	ErrPriceExceedsStep  = errors.New("price exceeds allowed step increment")
	ErrAmountExceedsStep = errors.New("amount exceeds allowed step increment")

	ErrAmountBelowMin = errors.New("amount is below the minimum allowed")
	ErrAmountExceedsMax = errors.New("amount exceeds the maximum allowed")

	ErrMarketAmountBelowMin   = errors.New("market order amount is below the minimum allowed")
	ErrMarketAmountExceedsMax  = errors.New("market order amount exceeds the maximum allowed")
	ErrMarketAmountExceedsStep = errors.New("market order amount exceeds allowed step increment")

	ErrPriceBelowMin = errors.New("price is below the minimum allowed")
	ErrPriceExceedsMax = errors.New("price exceeds the maximum allowed")

	ErrEmptyLevels         = errors.New("no order execution limits supplied")
	errExchangeNameEmpty   = errors.New("exchange name is empty")
	errAssetInvalid        = errors.New("asset type is invalid")
	errPairNotSet          = errors.New("currency pair not set")
	errInvalidPriceLevels  = errors.New("invalid price levels, min exceeds max")
	errInvalidAmountLevels = errors.New("invalid amount levels, min exceeds max")
	errInvalidQuoteLevels  = errors.New("invalid quote amount levels, min exceeds max")

	ErrExchangeLimitNotLoaded = errors.New("exchange order execution limits not loaded")
	ErrOrderLimitNotFound     = errors.New("order execution limits not found for key")
)
