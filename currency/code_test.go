package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "BTC", NewCode("btc").String())
	assert.True(t, NewCode("").IsEmpty())
	assert.False(t, NewCode("btc").IsEmpty())
}

func TestCodeInterning(t *testing.T) {
	t.Parallel()
	a := NewCode("ETH")
	b := NewCode("eth")
	assert.True(t, a.Equal(b))
	assert.Same(t, a.Item, b.Item)
}

func TestCodeUpperLower(t *testing.T) {
	t.Parallel()
	c := NewCode("USDT")
	assert.Equal(t, "usdt", c.Lower().String())
	assert.Equal(t, "USDT", c.Upper().String())
	assert.True(t, c.Lower().Equal(c.Upper()), "case rendering doesn't change the interned identity")
}

func TestCodeZeroValue(t *testing.T) {
	t.Parallel()
	var zero Code
	assert.True(t, zero.IsEmpty())
	assert.Equal(t, "", zero.String())
}
