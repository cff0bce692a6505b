package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// SimpleRateLimit is the in-process fallback limiter, used where the Redis
// limiter fits poorly: the websocket upgrade is one long-lived request, so a
// per-request Redis counter would never decay while the socket stays open.
// Fixed window per client IP, state kept in a plain map.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		windows = make(map[string]*ipWindow)
	)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		w, ok := windows[ip]
		if !ok || now.Sub(w.start) > window {
			windows[ip] = &ipWindow{start: now, hits: 1}
			mu.Unlock()
			c.Next()
			return
		}
		w.hits++
		hits := w.hits
		mu.Unlock()

		if hits > maxRequests {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

type ipWindow struct {
	start time.Time
	hits  int
}
