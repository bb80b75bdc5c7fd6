package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storeline/storeline-golang/internal/checkout"
	"github.com/storeline/storeline-golang/internal/middleware"
	"github.com/storeline/storeline-golang/internal/models"
)

// CreateOrderInput is the body of POST /api/orders.
type CreateOrderInput struct {
	Items           []checkout.RequestedItem `json:"items" binding:"required,min=1,dive"`
	ShippingAddress models.Address           `json:"shippingAddress" binding:"required"`
}

// CreateOrder is the handler for POST /api/orders. All transactional work
// lives in the checkout coordinator; this layer only binds and maps errors.
func (h *Handlers) CreateOrder(c *gin.Context) {
	user := middleware.Identity(c)

	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}

	order, items, err := h.Checkout.PlaceOrder(c.Request.Context(), user, input.Items, input.ShippingAddress)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order": order,
		"items": items,
	})
}

// ListOrders is the handler for GET /api/orders.
func (h *Handlers) ListOrders(c *gin.Context) {
	user := middleware.Identity(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.Orders.List(c.Request.Context(), user.ID, page, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrder is the handler for GET /api/orders/:id. Another user's order is
// indistinguishable from a missing one.
func (h *Handlers) GetOrder(c *gin.Context) {
	user := middleware.Identity(c)

	detail, err := h.Orders.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateOrderStatusInput is the body of PATCH /api/admin/orders/:id/status.
type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus is the admin handler driving the order status machine.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}

	if err := checkout.UpdateStatus(c.Request.Context(), h.DB, c.Param("id"), input.Status); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": input.Status})
}
