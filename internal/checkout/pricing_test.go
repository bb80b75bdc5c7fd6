package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFreeze(t *testing.T) {
	line := Freeze(42, dec("19.99"), 3)

	assert.Equal(t, int64(42), line.ProductID)
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, line.UnitPrice.Equal(dec("19.99")))
}

func TestOrderTotal(t *testing.T) {
	lines := []LineItem{
		Freeze(1, dec("10.00"), 3),
		Freeze(2, dec("199.99"), 2),
	}

	assert.True(t, OrderTotal(lines).Equal(dec("429.98")))
}

func TestOrderTotalEmpty(t *testing.T) {
	assert.True(t, OrderTotal(nil).Equal(decimal.Zero))
}

func TestOrderTotalBankersRounding(t *testing.T) {
	// Half-to-even: .125 rounds down to .12, .135 rounds up to .14.
	assert.True(t, OrderTotal([]LineItem{Freeze(1, dec("0.125"), 1)}).Equal(dec("0.12")))
	assert.True(t, OrderTotal([]LineItem{Freeze(1, dec("0.135"), 1)}).Equal(dec("0.14")))
}

func TestOrderTotalDuplicateProductLines(t *testing.T) {
	// The same product on two lines contributes each line independently.
	lines := []LineItem{
		Freeze(1, dec("10.00"), 1),
		Freeze(1, dec("10.00"), 2),
	}

	assert.True(t, OrderTotal(lines).Equal(dec("30.00")))
}
