package orderbook

import "errors"

var (
	// ErrDepthNotFound names missing order-book depth. Nothing in this
	// package returns it; the read views report a book without a snapshot
	// as ErrNotInitialized.
	ErrDepthNotFound = errors.New("orderbook depth not found")

	// ErrLastUpdatedNotSet is returned when a snapshot is processed with a
	// zero UpdateTime, which the book takes as its LastUpdated. Buffered
	// deltas are compared with the snapshot by UpdateID, not by time.
	ErrLastUpdatedNotSet = errors.New("orderbook snapshot LastUpdated not set")

	// ErrOrderbookInvalid flags a book that failed an internal consistency
	// check (crossed book, malformed level) and must be discarded and
	// resubscribed.
	ErrOrderbookInvalid = errors.New("orderbook state invalid")

	// ErrNotInitialized is returned by the pure read views when no
	// snapshot has been applied yet.
	ErrNotInitialized = errors.New("orderbook not initialized")

	// ErrChecksumMismatch signals a non-fatal integrity failure: the venue
	// checksum disagreed with the locally folded ladder.
	ErrChecksumMismatch = errors.New("orderbook checksum mismatch")
)
