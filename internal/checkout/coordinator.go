package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/storeline/storeline-golang/internal/auth"
	"github.com/storeline/storeline-golang/internal/metrics"
	"github.com/storeline/storeline-golang/internal/models"
	"github.com/storeline/storeline-golang/internal/notifier"
)

// MySQL server error numbers that mean the transaction lost a race rather
// than hit a business rule: lock wait timeout and deadlock victim.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

const insertOrder = `INSERT INTO orders (id, user_id, status, total, shipping_address, status_updated_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

const insertOrderItem = `INSERT INTO order_items (order_id, product_id, quantity, price, created_at) VALUES (?, ?, ?, ?, ?)`

// Coordinator wraps checkout in one atomic unit of work: validate, reserve
// stock, persist the order, commit, then notify. Nothing outside this
// transaction mutates product stock.
type Coordinator struct {
	DB       *sql.DB
	Notifier notifier.Notifier
	Logger   *slog.Logger
	Metrics  *metrics.Metrics

	// Timeout bounds the whole transaction, including lock waits. A checkout
	// that exceeds it rolls back and surfaces as a retryable conflict.
	Timeout time.Duration

	builder Builder
}

// NewCoordinator wires a coordinator with the default transaction timeout.
func NewCoordinator(db *sql.DB, n notifier.Notifier, logger *slog.Logger) *Coordinator {
	return &Coordinator{DB: db, Notifier: n, Logger: logger, Timeout: 10 * time.Second}
}

// PlaceOrder executes one checkout. On success the returned order and items
// are committed; stock decrements, the order row and its item rows became
// visible together. On any failure the transaction is fully rolled back and
// no partial state survives.
func (co *Coordinator) PlaceOrder(ctx context.Context, user auth.Identity, items []RequestedItem, address models.Address) (*models.Order, []models.OrderItem, error) {
	// Shape errors are rejected before any storage access.
	if err := ValidateRequest(items, address); err != nil {
		co.Metrics.CountCheckout("rejected")
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, co.Timeout)
	defer cancel()

	// Serializable plus the ledger's FOR UPDATE row locks: two concurrent
	// checkouts for the last unit serialize on the product row, and the
	// loser sees the decremented stock.
	tx, err := co.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		co.Metrics.CountCheckout("error")
		return nil, nil, err
	}
	defer tx.Rollback() // Safety net; no-op after Commit.

	agg, err := co.builder.Build(ctx, tx, user.ID, items, address)
	if err != nil {
		return nil, nil, co.fail(err)
	}

	addressJSON, err := json.Marshal(agg.Order.ShippingAddress)
	if err != nil {
		co.Metrics.CountCheckout("error")
		return nil, nil, err
	}

	o := &agg.Order
	if _, err := tx.ExecContext(ctx, insertOrder,
		o.ID, o.UserID, o.Status, o.Total, addressJSON, o.StatusUpdatedAt, o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return nil, nil, co.fail(err)
	}

	for i := range agg.Items {
		item := &agg.Items[i]
		if _, err := tx.ExecContext(ctx, insertOrderItem,
			item.OrderID, item.ProductID, item.Quantity, item.Price, item.CreatedAt,
		); err != nil {
			return nil, nil, co.fail(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, co.fail(err)
	}

	co.Metrics.CountCheckout("success")

	// Post-commit only: a failed notification must never reverse the order.
	go co.notify(user.Email, o.ID, o.Total)

	return o, agg.Items, nil
}

func (co *Coordinator) notify(email, orderID string, total decimal.Decimal) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subject, html := notifier.OrderConfirmation(orderID, total)
	if err := co.Notifier.Send(ctx, email, subject, html); err != nil {
		co.Logger.Warn("order confirmation email failed",
			"order_id", orderID,
			"recipient", email,
			"error", err.Error(),
		)
		return
	}
	co.Logger.Info("order confirmation email sent", "order_id", orderID, "recipient", email)
}

// fail classifies an in-transaction error. Business-rule kinds pass through
// unchanged; storage-level contention becomes a retryable conflict.
func (co *Coordinator) fail(err error) error {
	var cerr *Error
	if errors.As(err, &cerr) {
		switch cerr.Kind {
		case KindValidation:
			co.Metrics.CountCheckout("rejected")
		case KindProductNotFound, KindInsufficientStock:
			co.Metrics.CountCheckout("refused")
		default:
			co.Metrics.CountCheckout("conflict")
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && (myErr.Number == mysqlLockWaitTimeout || myErr.Number == mysqlDeadlock) {
		co.Metrics.CountCheckout("conflict")
		return conflict("Checkout conflicted with another order, please retry")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		co.Metrics.CountCheckout("conflict")
		return conflict("Checkout timed out, please retry")
	}

	co.Metrics.CountCheckout("error")
	return err
}
