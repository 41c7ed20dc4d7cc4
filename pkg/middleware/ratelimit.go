package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	mem "pka/pkg/memcache"
	"pka/pkg/utils"
)

// ClientIP extracts the client's address, preferring Cloudflare's
// CF-Connecting-IP header, then the first X-Forwarded-For hop, then X-Real-IP.
func ClientIP(c *gin.Context) string {
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// RateLimit rejects a client once it has made more than limit requests in window.
// Store errors fail open so an unavailable cache does not lock everyone out.
func RateLimit(store mem.AttemptStore, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + ClientIP(c)
		count, resetAt, err := store.Hit(c.Request.Context(), key, window)
		if err != nil {
			zap.L().Warn("rate limit store unavailable", zap.Error(err), zap.String("scope", scope))
			c.Next()
			return
		}

		if count > limit {
			retry := int(time.Until(resetAt).Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			utils.RespondError(c, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
			c.Abort()
			return
		}

		c.Next()
	}
}
