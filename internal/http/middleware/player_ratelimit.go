package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// maxActionBodyPeek bounds how much of a request body the limiter reads to
// find the player id. Game action bodies are tiny JSON objects.
const maxActionBodyPeek = 1 << 16

// PlayerRateLimit caps game actions per player over a fixed window. Game
// action requests carry the player id in the JSON body, so the limiter peeks
// at the body (restoring it for the handler) and falls back to the player_id
// query parameter, then to the client IP for requests that carry neither.
func PlayerRateLimit(maxActions int, window time.Duration) gin.HandlerFunc {
	windowKey := strconv.FormatInt(int64(window.Seconds()), 10)
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := "game_rl:" + playerIdent(c) + ":" + windowKey
		ctx := context.Background()

		n, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Header("X-GameRateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if n == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-GameRateLimit-Limit", strconv.Itoa(maxActions))
		c.Header("X-GameRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxActions)-n), 10))

		if n > int64(maxActions) {
			RLBlocked.WithLabelValues("game:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "game rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("game:" + c.FullPath()).Inc()
		c.Next()
	}
}

// playerIdent extracts the rate-limit key for a game action request.
func playerIdent(c *gin.Context) string {
	if c.Request.Body != nil && c.Request.ContentLength > 0 && c.Request.ContentLength <= maxActionBodyPeek {
		body, err := io.ReadAll(c.Request.Body)
		if err == nil {
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			var req struct {
				PlayerID int64 `json:"player_id"`
			}
			if json.Unmarshal(body, &req) == nil && req.PlayerID != 0 {
				return "p" + strconv.FormatInt(req.PlayerID, 10)
			}
		}
	}
	if id := c.Query("player_id"); id != "" {
		return "p" + id
	}
	return c.ClientIP()
}
