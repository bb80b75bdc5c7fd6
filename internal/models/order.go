package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status values. Transitions only move forward:
// pending -> processing -> completed, with cancelled reachable from
// pending or processing.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

var orderTransitions = map[string][]string{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderCompleted, OrderCancelled},
	OrderCompleted:  {},
	OrderCancelled:  {},
}

// ValidOrderStatus reports whether s is a known status value.
func ValidOrderStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Address is the structured shipping address stored as JSON on the order.
// All five fields are required.
type Address struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zipCode" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// Order is the model for the 'orders' table. The id is a UUID so order
// numbers are not guessable across users.
type Order struct {
	ID              string          `json:"id" db:"id"`
	UserID          int64           `json:"userId" db:"user_id"`
	Status          string          `json:"status" db:"status"`
	Total           decimal.Decimal `json:"total" db:"total"`
	ShippingAddress Address         `json:"shippingAddress" db:"shipping_address"`
	StatusUpdatedAt time.Time       `json:"statusUpdatedAt" db:"status_updated_at"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is the model for the 'order_items' table. Price is the unit
// price frozen at purchase time, never the product's current price.
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   string          `json:"orderId" db:"order_id"`
	ProductID int64           `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}
