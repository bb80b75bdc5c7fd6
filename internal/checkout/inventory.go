package checkout

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RequestedItem is one line of a checkout request. Duplicate product ids are
// allowed and stay separate lines.
type RequestedItem struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

const selectForReserve = `SELECT id, name, price, stock FROM products WHERE id IN (%s) AND is_active = 1 FOR UPDATE`

const decrementStock = `UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ?`

type lockedProduct struct {
	id    int64
	name  string
	price decimal.Decimal
	stock int
}

// Ledger owns product stock during checkout. CheckAndReserve must run inside
// the coordinator's transaction: the FOR UPDATE read and the decrement
// together form the serialization point against concurrent checkouts.
type Ledger struct{}

// CheckAndReserve locks the requested product rows, verifies every requested
// product resolves to an active row, checks stock per line, and decrements
// stock inside the same transaction. It returns one priced line per
// requested line, carrying the price read under the lock.
//
// Resolution is all-or-nothing: if any product id is missing or inactive the
// whole request fails, no partial match.
func (Ledger) CheckAndReserve(ctx context.Context, tx *sql.Tx, items []RequestedItem) ([]LineItem, error) {
	distinct := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			distinct = append(distinct, item.ProductID)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(distinct)), ",")
	args := make([]any, len(distinct))
	for i, id := range distinct {
		args[i] = id
	}

	rows, err := tx.QueryContext(ctx, strings.Replace(selectForReserve, "%s", placeholders, 1), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locked := make(map[int64]*lockedProduct, len(distinct))
	for rows.Next() {
		var p lockedProduct
		if err := rows.Scan(&p.id, &p.name, &p.price, &p.stock); err != nil {
			return nil, err
		}
		locked[p.id] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(locked) != len(distinct) {
		return nil, productNotFound("One or more products not found")
	}

	lines := make([]LineItem, 0, len(items))
	for _, item := range items {
		p := locked[item.ProductID]
		// p.stock tracks what this transaction has already reserved, so a
		// duplicated product id across lines behaves like the summed quantity.
		if p.stock < item.Quantity {
			return nil, insufficientStock(p.name)
		}
		p.stock -= item.Quantity
		lines = append(lines, Freeze(p.id, p.price, item.Quantity))
	}

	now := time.Now()
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, decrementStock, line.Quantity, now, line.ProductID); err != nil {
			return nil, err
		}
	}

	return lines, nil
}
