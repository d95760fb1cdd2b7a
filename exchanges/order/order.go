package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenfx/tradecore/currency"
	"github.com/lumenfx/tradecore/exchanges/asset"
)

// Detail is the authoritative, exchange-confirmed record of a single order.
// RemainingVolume is a derived field, not a separately tracked one: it is
// always Volume minus the sum of RecordedFills, recomputed whenever a fill
// is applied.
type Detail struct {
	Exchange      string
	ID            string
	ClientOrderID string

	Pair  currency.Pair
	Asset asset.Item

	Side Side
	Type Type

	Price  decimal.Decimal
	Volume decimal.Decimal

	RecordedFills   decimal.Decimal
	RemainingVolume decimal.Decimal

	Status Status

	Date        time.Time
	LastUpdated time.Time
}

// Validate checks the static shape of an order before it is submitted or
// ingested, independent of any venue-specific tick/step rules (those live in
// exchange/order/limits).
func (d *Detail) Validate() error {
	if d.Pair.IsEmpty() {
		return ErrPairIsEmpty
	}
	if !d.Side.IsValid() {
		return ErrSideIsInvalid
	}
	if !d.Type.IsValid() {
		return ErrTypeIsInvalid
	}
	if d.Volume.Sign() <= 0 {
		return ErrAmountIsInvalid
	}
	if d.Type != Market && d.Price.Sign() <= 0 {
		return ErrPriceMustBePositive
	}
	return nil
}

// ApplyFill records a fill against the order, recomputing RemainingVolume
// and advancing Status. It is idempotent-safe only insofar as the caller is
// responsible for not applying the same fill twice; callers ingesting a
// fill stream should dedupe on fill ID before calling this.
func (d *Detail) ApplyFill(volume decimal.Decimal) {
	d.RecordedFills = d.RecordedFills.Add(volume)
	remaining := d.Volume.Sub(d.RecordedFills)
	if remaining.Sign() < 0 {
		remaining = decimal.Zero
	}
	d.RemainingVolume = remaining

	switch {
	case remaining.IsZero():
		d.Status = Filled
	case d.RecordedFills.Sign() > 0:
		d.Status = PartiallyFilled
	}
}

// IsOpen reports whether the order should still appear in an account's
// open order set.
func (d *Detail) IsOpen() bool {
	return !d.Status.IsTerminal()
}

// Fill is a single execution against an order, as reported by a venue's
// user-data stream or a trade-history backfill.
type Fill struct {
	Exchange string
	FillID   string
	OrderID  string

	Pair  currency.Pair
	Asset asset.Item

	Side Side

	Price  decimal.Decimal
	Volume decimal.Decimal

	Fee         decimal.Decimal
	FeeCurrency currency.Code

	Timestamp time.Time
}
