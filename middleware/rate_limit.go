package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eshop/database"
)

const (
	rateLimitPeriod = 1 * time.Minute
	rateLimitCount  = 5
)

// RateLimiter caps requests per client IP using Redis. When Redis is
// unavailable traffic passes through untouched.
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if database.RedisClient == nil {
			c.Next()
			return
		}

		key := "rate_limit:" + c.ClientIP()
		count, err := database.RedisClient.Incr(c.Request.Context(), key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			database.RedisClient.Expire(c.Request.Context(), key, rateLimitPeriod)
		}

		if count > rateLimitCount {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "Too many requests"})
			return
		}
		c.Next()
	}
}
