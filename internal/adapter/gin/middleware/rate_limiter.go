package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usuarios-api/internal/adapter/gin/handler"
	"usuarios-api/internal/adapter/ratelimit"
)

const msgRateLimited = "rate limit exceeded"

// RateLimiter limits requests per method, path and client IP.
// A limiter error lets the request through.
func RateLimiter(limiter ratelimit.Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		key := fmt.Sprintf("%s:%s:%s", c.Request.Method, c.Request.URL.Path, clientIP)

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			)
			handler.Fail(c, http.StatusTooManyRequests, msgRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}
