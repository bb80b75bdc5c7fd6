package checkout

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/storeline/storeline-golang/internal/models"
)

// OrderAggregate is an uncommitted order with its items. The coordinator
// persists and commits it; the builder never does.
type OrderAggregate struct {
	Order models.Order
	Items []models.OrderItem
}

// ValidateRequest checks request shape before any storage access.
func ValidateRequest(items []RequestedItem, address models.Address) error {
	if len(items) == 0 {
		return invalidf("Order must contain at least one item")
	}
	for _, item := range items {
		if item.ProductID <= 0 {
			return invalidf("Invalid product id: %d", item.ProductID)
		}
		if item.Quantity <= 0 {
			return invalidf("Quantity must be positive for product %d", item.ProductID)
		}
	}
	for field, value := range map[string]string{
		"street":  address.Street,
		"city":    address.City,
		"state":   address.State,
		"zipCode": address.ZipCode,
		"country": address.Country,
	} {
		if value == "" {
			return invalidf("Shipping address is missing %s", field)
		}
	}
	return nil
}

// Builder validates a checkout request against the inventory ledger and
// assembles the order aggregate. Requested lines are kept as-is: the same
// product id twice means two order items.
type Builder struct {
	Ledger Ledger
}

// Build runs inside the coordinator's transaction. On ledger failure the
// error kind propagates unchanged.
func (b Builder) Build(ctx context.Context, tx *sql.Tx, userID int64, items []RequestedItem, address models.Address) (*OrderAggregate, error) {
	if err := ValidateRequest(items, address); err != nil {
		return nil, err
	}

	lines, err := b.Ledger.CheckAndReserve(ctx, tx, items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Status:          models.OrderPending,
		Total:           OrderTotal(lines),
		ShippingAddress: address,
		StatusUpdatedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	orderItems := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		orderItems = append(orderItems, models.OrderItem{
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
			CreatedAt: now,
		})
	}

	return &OrderAggregate{Order: order, Items: orderItems}, nil
}
