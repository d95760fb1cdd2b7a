package orderbook

import (
	"time"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/asset"
)

// Update is a single message from a venue's depth stream: either the
// initial snapshot (Initial=true) or an incremental delta. UpdateID must be
// strictly increasing per (Pair, Asset) once a book is initialized; the
// venue adapter is responsible for mapping the wire protocol's own sequence
// field (lastUpdateId, u, seq, ...) onto it.
type Update struct {
	Pair  currency.Pair
	Asset asset.Item

	Bids []Level
	Asks []Level

	// Initial marks this update as the REST/WS snapshot that seeds the
	// book; Process special-cases it per the protocol in §4.3.
	Initial bool

	// AllowEmpty permits Bids and Asks to both be empty without the update
	// being treated as a no-op venue heartbeat; some venues emit sequence
	// bumps with no level changes attached.
	AllowEmpty bool

	UpdateID   int64
	UpdateTime time.Time

	// Checksum, when non-zero, is compared against the CRC32 folded from
	// the top of book after the update is applied.
	Checksum uint32
}
