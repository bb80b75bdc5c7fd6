package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/storeline/storeline-golang/internal/models"
)

const (
	countOrders = `SELECT COUNT(*) FROM orders WHERE user_id = ?`

	selectOrders = `SELECT id, user_id, status, total, shipping_address, status_updated_at, created_at, updated_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	selectOrder = `SELECT id, user_id, status, total, shipping_address, status_updated_at, created_at, updated_at
		FROM orders
		WHERE id = ? AND user_id = ?`

	selectOrderItems = `SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.created_at, p.name, p.category
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?`
)

// OrderPage is one page of a user's order history, newest first.
type OrderPage struct {
	Items      []models.Order `json:"items"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
	TotalCount int            `json:"totalCount"`
}

// OrderItemDetail extends the base OrderItem with product info for display.
type OrderItemDetail struct {
	models.OrderItem
	ProductName     string `json:"productName"`
	ProductCategory string `json:"productCategory"`
}

// OrderDetail is one order with its line items.
type OrderDetail struct {
	models.Order
	Items []OrderItemDetail `json:"items"`
}

// Queries is the read path for orders. It never takes the checkout locks;
// every query is scoped to the requesting user.
type Queries struct {
	DB *sql.DB
}

// List returns one page of the user's orders. Page is 1-indexed and defaults
// to 1; limit defaults to 10 and is capped at 100.
func (q *Queries) List(ctx context.Context, userID int64, page, limit int) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	var totalCount int
	if err := q.DB.QueryRowContext(ctx, countOrders, userID).Scan(&totalCount); err != nil {
		return nil, err
	}

	rows, err := q.DB.QueryContext(ctx, selectOrders, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &OrderPage{
		Items:      orders,
		Page:       page,
		Limit:      limit,
		TotalPages: (totalCount + limit - 1) / limit,
		TotalCount: totalCount,
	}, nil
}

// Get fetches one order with its items. An order belonging to another user
// is indistinguishable from a missing one: both are KindNotFound.
func (q *Queries) Get(ctx context.Context, userID int64, orderID string) (*OrderDetail, error) {
	row := q.DB.QueryRowContext(ctx, selectOrder, orderID, userID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("Order not found")
		}
		return nil, err
	}

	rows, err := q.DB.QueryContext(ctx, selectOrderItems, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []OrderItemDetail{}
	for rows.Next() {
		var item OrderItemDetail
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt,
			&item.ProductName, &item.ProductCategory,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &OrderDetail{Order: *o, Items: items}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var addressJSON []byte
	if err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.Total, &addressJSON, &o.StatusUpdatedAt, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
		return nil, err
	}
	return &o, nil
}
