package checkout

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/storeline/storeline-golang/internal/models"
)

const (
	selectStatusForUpdate = `SELECT status FROM orders WHERE id = ? FOR UPDATE`

	updateStatus = `UPDATE orders SET status = ?, status_updated_at = ?, updated_at = ? WHERE id = ?`

	cancelStalePending = `UPDATE orders SET status = ?, status_updated_at = ?, updated_at = ? WHERE status = ? AND created_at < ?`
)

// UpdateStatus moves an order through the status machine. Transitions only
// go forward; anything else is rejected without touching the row.
func UpdateStatus(ctx context.Context, db *sql.DB, orderID, next string) error {
	if !models.ValidOrderStatus(next) {
		return invalidf("Unknown order status: %s", next)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current string
	if err := tx.QueryRowContext(ctx, selectStatusForUpdate, orderID).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("Order not found")
		}
		return err
	}

	if !models.CanTransition(current, next) {
		return invalidf("Cannot transition order from %s to %s", current, next)
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx, updateStatus, next, now, now, orderID); err != nil {
		return err
	}

	return tx.Commit()
}

// CancelStale cancels orders stuck in 'pending' for longer than age. Run by
// the background sweeper in cmd/api.
func CancelStale(ctx context.Context, db *sql.DB, age time.Duration) (int64, error) {
	now := time.Now()
	res, err := db.ExecContext(ctx, cancelStalePending,
		models.OrderCancelled, now, now, models.OrderPending, now.Add(-age),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
