package order

import "strings"

// Status tracks an order's lifecycle. Terminal statuses are final: once an
// order reaches one it is removed from an account's open order set and its
// remaining volume is never touched again.
type Status uint8

const (
	UnknownStatus Status = iota
	New
	PartiallyFilled
	Filled
	Cancelled
	Rejected
	Expired
	RequestedCancellation
)

var statusStrings = map[Status]string{
	New:                   "NEW",
	PartiallyFilled:       "PARTIALLY_FILLED",
	Filled:                "FILLED",
	Cancelled:             "CANCELLED",
	Rejected:              "REJECTED",
	Expired:               "EXPIRED",
	RequestedCancellation: "REQUESTED_CANCELLATION",
}

func (s Status) String() string {
	if str, ok := statusStrings[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether an order in this status can receive no further
// fills or status transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case Filled, Cancelled, Rejected, Expired:
		return true
	default:
		return false
	}
}

// NewStatus parses a status from its wire/string representation. Venues
// spell these inconsistently (CANCELED vs CANCELLED, DONE vs FILLED), so
// this normalises the common synonyms rather than round-tripping exactly.
func NewStatus(s string) Status {
	switch strings.ToUpper(s) {
	case "NEW", "OPEN", "ACCEPTED":
		return New
	case "PARTIALLY_FILLED", "PARTIAL":
		return PartiallyFilled
	case "FILLED", "DONE", "CLOSED":
		return Filled
	case "CANCELLED", "CANCELED", "ORDER_CLOSED":
		return Cancelled
	case "REJECTED":
		return Rejected
	case "EXPIRED":
		return Expired
	default:
		return UnknownStatus
	}
}
