package trader

import "errors"

var (
	// ErrEmptyPortfolio is returned when every balance and price values to
	// zero, so no weighted total can be computed.
	ErrEmptyPortfolio = errors.New("portfolio has zero total value")

	// ErrRepriceTimeout is returned when a limit-order rebalance leg fails
	// to fill within the configured reprice window and is cancelled.
	ErrRepriceTimeout = errors.New("rebalance leg timed out before filling")
)
