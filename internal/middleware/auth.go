package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storeline/storeline-golang/internal/auth"
)

// IdentityKey is the gin context key carrying the authenticated identity.
const IdentityKey = "identity"

// Identity pulls the authenticated identity out of the gin context. Only
// valid behind AuthMiddleware.
func Identity(c *gin.Context) auth.Identity {
	return c.MustGet(IdentityKey).(auth.Identity)
}

// AuthMiddleware validates the Bearer token and injects the caller's
// identity into the context. Everything behind it can assume a valid caller.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token format (must be Bearer)"})
			c.Abort()
			return
		}

		identity, err := auth.ValidateToken(secret, parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// AdminMiddleware gates admin-only routes on the identity's capability.
// Must run behind AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Identity(c).IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
