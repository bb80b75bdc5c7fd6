package checkout

import "github.com/shopspring/decimal"

// LineItem is one order line with the unit price frozen at the moment the
// stock check read it. Pure value; no I/O.
type LineItem struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Freeze snapshots a product's price for one order line.
func Freeze(productID int64, unitPrice decimal.Decimal, quantity int) LineItem {
	return LineItem{ProductID: productID, Quantity: quantity, UnitPrice: unitPrice}
}

// OrderTotal sums quantity * unit price over all lines and rounds to
// currency precision. Rounding is banker's (round half to even), so totals
// are deterministic regardless of line order.
func OrderTotal(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total.RoundBank(2)
}
