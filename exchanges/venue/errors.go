package venue

import "errors"

var (
	// ErrVolumeSpecificationInvalid is raised when an OrderRequest sets
	// neither or both of Volume/QuoteVolume, or sets QuoteVolume on a
	// non-market order.
	ErrVolumeSpecificationInvalid = errors.New("order request must set exactly one of volume or quote volume")

	// ErrUnknownMarket is the §7 UNKNOWN_MARKET condition.
	ErrUnknownMarket = errors.New("market not found in exchange info")

	// ErrOrderPlacementFailed is the §7 ORDER_PLACEMENT_ERROR condition.
	ErrOrderPlacementFailed = errors.New("order placement failed")

	// ErrAuthFailed is the §7 AUTH_FAILED condition: signing or WS login
	// was rejected, fatal for the owning Account.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotConnected names an operation attempted before Connect has
	// completed. No adapter in this module returns it.
	ErrNotConnected = errors.New("venue adapter not connected")
)
