package middlewares

import (
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit caps how many times a client may hit the wrapped route per
// day, tracked in Redis per client address. A nil client or non-positive
// limit disables the cap entirely.
func RateLimit(client *redis.Client, prefix string, limit int) gin.HandlerFunc {
	if client == nil || limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := prefix + ":" + c.ClientIP()

		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// The store being down must not take creation down with it.
			log.WithError(err).Warn("rate limit check failed, allowing request")
			c.Next()
			return
		}

		if count == 1 {
			if err := client.Expire(c.Request.Context(), key, 24*time.Hour).Err(); err != nil {
				log.WithError(err).Warn("failed to set rate limit TTL")
			}
		}

		if count > int64(limit) {
			retryAfter, _ := client.TTL(c.Request.Context(), key).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"message":     "Rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
