package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit is a fixed-window per-user limiter backed by Redis, so the limit
// holds across server instances. It is a throttle, not a correctness
// mechanism: any Redis failure fails open and the request proceeds. Must run
// behind AuthMiddleware.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rl:checkout:%d", Identity(c).ID)
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, window)
		}

		if count > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many checkout attempts, please slow down"})
			c.Abort()
			return
		}

		c.Next()
	}
}
