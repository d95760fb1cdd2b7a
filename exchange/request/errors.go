package request

import "errors"

// ErrRateLimitExhausted is raised only when a single request's weight
// exceeds a kind's configured limit outright, so no amount of waiting would
// ever admit it. Ordinary contention is absorbed by waiting, never this
// error.
var ErrRateLimitExhausted = errors.New("rate limit exhausted: request weight exceeds window limit")
