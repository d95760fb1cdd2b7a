package order

import "errors"

var (
	ErrSideIsInvalid = errors.New("order side is invalid")
	ErrTypeIsInvalid = errors.New("order type is invalid")

	ErrOrderIDNotSet       = errors.New("order id not set")
	ErrPairIsEmpty         = errors.New("order pair is empty")
	ErrAmountIsInvalid     = errors.New("order amount is invalid")
	ErrPriceMustBePositive = errors.New("order price must be positive")
)
