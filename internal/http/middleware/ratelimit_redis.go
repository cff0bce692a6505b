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

// InitRedisRateLimiter connects the shared Redis client the limiters use.
// With an empty addr, or when the initial ping fails, the client stays nil
// and every limiter in this package fails open.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient = nil
	}
}

// RedisRateLimit caps requests per client IP over a fixed window, counting
// with INCR and letting the key expire after one window.
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	windowKey := strconv.FormatInt(int64(window.Seconds()), 10)
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := "rl:" + windowKey + ":" + c.ClientIP()
		ctx := context.Background()

		n, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down must not take the API down with it
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if n == 1 {
			redisClient.Expire(ctx, key, window)
		}

		if n > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
