package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storeline/storeline-golang/internal/auth"
	"github.com/storeline/storeline-golang/internal/models"
	"github.com/storeline/storeline-golang/internal/notifier"
)

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,min=2"`
}

// LoginInput is the body of POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authenticatedUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Register is the handler for POST /api/auth/register. New users are always
// customers; admins are created by the seed or by hand.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}

	var existingID int64
	err := h.DB.QueryRowContext(c.Request.Context(), "SELECT id FROM users WHERE email = ?", input.Email).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already registered"})
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		h.writeError(c, err)
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		h.writeError(c, err)
		return
	}

	now := time.Now()
	result, err := h.DB.ExecContext(c.Request.Context(),
		"INSERT INTO users (email, password, name, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		input.Email, password.Hash, input.Name, models.RoleCustomer, now, now,
	)
	if err != nil {
		h.writeError(c, err)
		return
	}
	userID, err := result.LastInsertId()
	if err != nil {
		h.writeError(c, err)
		return
	}

	identity := auth.Identity{ID: userID, Email: input.Email, Role: models.RoleCustomer}
	token, err := auth.GenerateToken(h.TokenSecret, identity)
	if err != nil {
		h.writeError(c, err)
		return
	}

	go h.sendWelcomeEmail(input.Email, input.Name)

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  authenticatedUser{ID: userID, Email: input.Email, Name: input.Name, Role: models.RoleCustomer},
	})
}

// Login is the handler for POST /api/auth/login. A missing user and a wrong
// password are deliberately the same response.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
		return
	}

	var user models.User
	err := h.DB.QueryRowContext(c.Request.Context(),
		"SELECT id, email, password, name, role FROM users WHERE email = ?", input.Email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		h.writeError(c, err)
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	matches, err := password.Matches(input.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !matches {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(h.TokenSecret, auth.Identity{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  authenticatedUser{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role},
	})
}

func (h *Handlers) sendWelcomeEmail(email, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subject, html := notifier.Welcome(name)
	if err := h.Notifier.Send(ctx, email, subject, html); err != nil {
		h.Logger.Warn("welcome email failed", "recipient", email, "error", err.Error())
	}
}
