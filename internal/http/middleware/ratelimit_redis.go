package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter sets the shared Redis client used by RateLimit. A nil
// client switches every limiter to its in-process bucket.
func InitRedisRateLimiter(client *redis.Client) {
	redisClient = client
}

// RateLimit is a fixed-window limiter keyed by scope and client IP using
// Redis INCR/EXPIRE. key format: rl:<scope>:<window_seconds>:<ip>
//
// Without Redis it falls back to a per-process token bucket; on Redis
// errors it fails open.
func RateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	local := newLocalLimiter(maxRequests, window)

	return func(c *gin.Context) {
		ident := c.ClientIP()

		if redisClient == nil {
			if !local.allow(scope + ":" + ident) {
				RLBlocked.WithLabelValues(scope).Inc()
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
				return
			}
			RLRequests.WithLabelValues(scope).Inc()
			c.Next()
			return
		}

		key := "rl:" + scope + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(scope).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(scope).Inc()
		c.Next()
	}
}
