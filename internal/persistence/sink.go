// Package persistence implements the optional fill-history sink named in
// §6 ("Persisted state: none required... optional sqlite sink is an
// external collaborator"): a write-only consumer of the same fill stream
// the Account ingests, never read back by the core.
package persistence

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lumenfx/tradecore/exchanges/order"
)

// FillSink writes every fill it's given to a sqlite database, purely for
// operator-side history; nothing in the core reads from it.
type FillSink struct {
	db *sql.DB
}

// Open creates or attaches to the sqlite database at path and ensures the
// fills table exists.
func Open(path string) (*FillSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS fills (
	fill_id      TEXT PRIMARY KEY,
	order_id     TEXT NOT NULL,
	exchange     TEXT NOT NULL,
	pair         TEXT NOT NULL,
	side         TEXT NOT NULL,
	price        TEXT NOT NULL,
	volume       TEXT NOT NULL,
	fee          TEXT NOT NULL,
	fee_currency TEXT NOT NULL,
	ts_unix_ms   INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating fills table: %w", err)
	}
	return &FillSink{db: db}, nil
}

// Close releases the underlying database handle.
func (s *FillSink) Close() error {
	return s.db.Close()
}

// Record inserts f, ignoring a duplicate fill_id: the Account's own
// dedup-by-FillID rule means the sink may see the same fill replayed after
// a reconnect.
func (s *FillSink) Record(ctx context.Context, f *order.Fill) error {
	const stmt = `
INSERT OR IGNORE INTO fills
	(fill_id, order_id, exchange, pair, side, price, volume, fee, fee_currency, ts_unix_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, stmt,
		f.FillID, f.OrderID, f.Exchange, f.Pair.String(), f.Side.String(),
		f.Price.String(), f.Volume.String(), f.Fee.String(), f.FeeCurrency.String(),
		f.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recording fill %s: %w", f.FillID, err)
	}
	return nil
}
