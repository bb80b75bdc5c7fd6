package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/storeline/storeline-golang/internal/config"
	"github.com/storeline/storeline-golang/internal/handlers"
	"github.com/storeline/storeline-golang/internal/metrics"
	"github.com/storeline/storeline-golang/internal/middleware"
)

// CORSMiddleware allows the configured frontend origin to call the API.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, cfg *config.Config, rdb *redis.Client, m *metrics.Metrics) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware(cfg.FrontendURL))
	if m != nil {
		router.Use(m.Middleware())
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	secret := []byte(cfg.JWTSecret)

	api := router.Group("/api")
	{
		// --- Auth Routes (Public) ---
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// --- Public Catalog Routes ---
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)

		// --- Protected Routes (Login Required) ---
		authed := api.Group("/")
		authed.Use(middleware.AuthMiddleware(secret))
		{
			authed.GET("/cart", h.GetCart)
			authed.POST("/cart", h.AddToCart)
			authed.PUT("/cart/:productId", h.UpdateCartItem)
			authed.DELETE("/cart/:productId", h.DeleteCartItem)
			authed.DELETE("/cart", h.ClearCart)

			orders := authed.Group("/orders")
			{
				orders.POST("", middleware.RateLimit(rdb, cfg.CheckoutRateLimit, time.Minute), h.CreateOrder)
				orders.GET("", h.ListOrders)
				orders.GET("/:id", h.GetOrder)
			}
		}

		// --- Admin-Only Routes ---
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(secret))
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
		}
	}

	return router
}
