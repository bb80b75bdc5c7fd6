package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/storeline/storeline-golang/internal/middleware"
	"github.com/storeline/storeline-golang/internal/models"
)

// CartItemInput is the body of POST /api/cart.
type CartItemInput struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItemInput is the body of PUT /api/cart/:productId.
type UpdateCartItemInput struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// cartLine is one cart row joined with its product for display.
type cartLine struct {
	models.CartItem
	Product models.Product `json:"product"`
}

// checkProductStock verifies the product is active and has at least the
// requested quantity. This is advisory only: the checkout transaction
// re-checks under row locks, so the cart path never takes them.
func (h *Handlers) checkProductStock(c *gin.Context, productID int64, quantity int) bool {
	var stock int
	err := h.DB.QueryRowContext(c.Request.Context(),
		"SELECT stock FROM products WHERE id = ? AND is_active = 1", productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return false
		}
		h.writeError(c, err)
		return false
	}
	if stock < quantity {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient stock"})
		return false
	}
	return true
}

// AddToCart is the handler for POST /api/cart. Adding a product already in
// the cart replaces its quantity.
func (h *Handlers) AddToCart(c *gin.Context) {
	user := middleware.Identity(c)

	var input CartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}

	if !h.checkProductStock(c, input.ProductID, input.Quantity) {
		return
	}

	now := time.Now()
	_, err := h.DB.ExecContext(c.Request.Context(), `
		INSERT INTO cart (user_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = VALUES(quantity), updated_at = VALUES(updated_at)`,
		user.ID, input.ProductID, input.Quantity, now, now,
	)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item added to cart"})
}

// GetCart is the handler for GET /api/cart. The total here is informational;
// the authoritative total is computed at checkout under the stock locks.
func (h *Handlers) GetCart(c *gin.Context) {
	user := middleware.Identity(c)

	rows, err := h.DB.QueryContext(c.Request.Context(), `
		SELECT ct.id, ct.user_id, ct.product_id, ct.quantity, ct.created_at, ct.updated_at,
			p.id, p.name, p.description, p.price, p.stock, p.category, p.is_active, p.created_at, p.updated_at
		FROM cart ct
		JOIN products p ON ct.product_id = p.id
		WHERE ct.user_id = ?
		ORDER BY ct.created_at DESC`,
		user.ID,
	)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer rows.Close()

	items := []cartLine{}
	total := decimal.Zero
	for rows.Next() {
		var line cartLine
		if err := rows.Scan(
			&line.ID, &line.UserID, &line.ProductID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt,
			&line.Product.ID, &line.Product.Name, &line.Product.Description, &line.Product.Price,
			&line.Product.Stock, &line.Product.Category, &line.Product.IsActive,
			&line.Product.CreatedAt, &line.Product.UpdatedAt,
		); err != nil {
			h.writeError(c, err)
			return
		}
		line.Product.Images = []string{}
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, line)
	}
	if err := rows.Err(); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total.RoundBank(2),
	})
}

// UpdateCartItem is the handler for PUT /api/cart/:productId.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	user := middleware.Identity(c)
	productID := c.Param("productId")

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}

	var cartItemID int64
	err := h.DB.QueryRowContext(c.Request.Context(),
		"SELECT id FROM cart WHERE user_id = ? AND product_id = ?", user.ID, productID).Scan(&cartItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Cart item not found"})
			return
		}
		h.writeError(c, err)
		return
	}

	pid, err := strconv.ParseInt(productID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product id"})
		return
	}
	if !h.checkProductStock(c, pid, input.Quantity) {
		return
	}

	_, err = h.DB.ExecContext(c.Request.Context(),
		"UPDATE cart SET quantity = ?, updated_at = ? WHERE id = ?",
		input.Quantity, time.Now(), cartItemID,
	)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
}

// DeleteCartItem is the handler for DELETE /api/cart/:productId.
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	user := middleware.Identity(c)

	result, err := h.DB.ExecContext(c.Request.Context(),
		"DELETE FROM cart WHERE user_id = ? AND product_id = ?", user.ID, c.Param("productId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Cart item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// ClearCart is the handler for DELETE /api/cart.
func (h *Handlers) ClearCart(c *gin.Context) {
	user := middleware.Identity(c)

	if _, err := h.DB.ExecContext(c.Request.Context(), "DELETE FROM cart WHERE user_id = ?", user.ID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
