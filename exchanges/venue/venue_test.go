package venue

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lumenfx/tradecore/exchanges/order"
)

func TestOrderRequestValidate(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, OrderRequest{}.Validate(), ErrVolumeSpecificationInvalid, "neither volume nor quote volume set")

	both := OrderRequest{Volume: decimal.NewFromInt(1), QuoteVolume: decimal.NewFromInt(1)}
	assert.ErrorIs(t, both.Validate(), ErrVolumeSpecificationInvalid, "both set is not a valid exclusive union")

	assert.NoError(t, OrderRequest{Type: order.Limit, Volume: decimal.NewFromInt(1)}.Validate())

	assert.ErrorIs(t,
		OrderRequest{Type: order.Limit, QuoteVolume: decimal.NewFromInt(1)}.Validate(),
		ErrVolumeSpecificationInvalid,
		"quote volume is only valid on market orders",
	)

	assert.NoError(t, OrderRequest{Type: order.Market, QuoteVolume: decimal.NewFromInt(100)}.Validate())
}
