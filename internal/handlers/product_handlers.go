package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/storeline/storeline-golang/internal/models"
)

const productColumns = "id, name, description, price, stock, images, category, is_active, created_at, updated_at"

// Sortable columns for the public listing. Anything else falls back to
// created_at; user input never reaches the ORDER BY clause directly.
var productSortColumns = map[string]bool{
	"created_at": true,
	"price":      true,
	"name":       true,
}

// ListProducts is the handler for GET /api/products. Read-only catalog path;
// it takes none of the checkout locks.
func (h *Handlers) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	sortField := c.DefaultQuery("sort", "created_at")
	if !productSortColumns[sortField] {
		sortField = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(c.DefaultQuery("order", "desc"), "asc") {
		order = "ASC"
	}

	where := "WHERE is_active = 1"
	args := []any{}
	if category := c.Query("category"); category != "" {
		where += " AND category = ?"
		args = append(args, category)
	}
	if search := c.Query("search"); search != "" {
		where += " AND name LIKE ?"
		args = append(args, "%"+search+"%")
	}

	var totalCount int
	countQuery := "SELECT COUNT(*) FROM products " + where
	if err := h.DB.QueryRowContext(c.Request.Context(), countQuery, args...).Scan(&totalCount); err != nil {
		h.writeError(c, err)
		return
	}

	query := fmt.Sprintf("SELECT %s FROM products %s ORDER BY %s %s LIMIT ? OFFSET ?",
		productColumns, where, sortField, order)
	args = append(args, limit, (page-1)*limit)

	rows, err := h.DB.QueryContext(c.Request.Context(), query, args...)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			h.writeError(c, err)
			return
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      products,
		"page":       page,
		"limit":      limit,
		"totalPages": (totalCount + limit - 1) / limit,
		"totalCount": totalCount,
	})
}

// GetProduct is the handler for GET /api/products/:id. Inactive products are
// invisible here.
func (h *Handlers) GetProduct(c *gin.Context) {
	row := h.DB.QueryRowContext(c.Request.Context(),
		"SELECT "+productColumns+" FROM products WHERE id = ? AND is_active = 1", c.Param("id"))

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// ProductInput is the body of the admin create endpoint.
type ProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock" binding:"min=0"`
	Category    string          `json:"category" binding:"required"`
	Images      []string        `json:"images"`
}

// CreateProduct is the admin handler for POST /api/admin/products.
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}
	if input.Price.IsNegative() || input.Price.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Price must be positive"})
		return
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		h.writeError(c, err)
		return
	}

	now := time.Now()
	result, err := h.DB.ExecContext(c.Request.Context(),
		"INSERT INTO products (name, description, price, stock, images, category, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)",
		input.Name, input.Description, input.Price, input.Stock, imagesJSON, input.Category, now, now,
	)
	if err != nil {
		h.writeError(c, err)
		return
	}
	id, err := result.LastInsertId()
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Images:      images,
		Category:    input.Category,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// UpdateProductInput is the body of the admin update endpoint; all fields
// optional, only provided ones change.
type UpdateProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
	Images      []string         `json:"images"`
}

// UpdateProduct is the admin handler for PUT /api/admin/products/:id.
// Catalog price changes here never touch existing order items: those carry
// the price frozen at purchase time.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}

	sets := []string{}
	args := []any{}
	if input.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *input.Name)
	}
	if input.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *input.Description)
	}
	if input.Price != nil {
		if input.Price.IsNegative() || input.Price.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Price must be positive"})
			return
		}
		sets = append(sets, "price = ?")
		args = append(args, *input.Price)
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Stock cannot be negative"})
			return
		}
		sets = append(sets, "stock = ?")
		args = append(args, *input.Stock)
	}
	if input.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *input.Category)
	}
	if input.Images != nil {
		imagesJSON, err := json.Marshal(input.Images)
		if err != nil {
			h.writeError(c, err)
			return
		}
		sets = append(sets, "images = ?")
		args = append(args, imagesJSON)
	}

	if len(sets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		return
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), c.Param("id"))

	query := "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	result, err := h.DB.ExecContext(c.Request.Context(), query, args...)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully"})
}

// DeleteProduct is the admin handler for DELETE /api/admin/products/:id.
// Soft delete: order_items keep a restrict FK on products, so rows are
// deactivated, never dropped.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	result, err := h.DB.ExecContext(c.Request.Context(),
		"UPDATE products SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1",
		time.Now(), c.Param("id"),
	)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var imagesJSON []byte
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &imagesJSON, &p.Category, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Images = []string{}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
