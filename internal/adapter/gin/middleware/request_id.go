package middleware

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"usuarios-api/pkg/logger"
)

// RequestID assigns every request an id (reusing an incoming X-Request-ID),
// echoes it in the response and stores it in the request context for logging.
func RequestID() gin.HandlerFunc {
	return requestid.New(
		requestid.WithGenerator(func() string {
			return uuid.NewString()
		}),
		requestid.WithHandler(func(c *gin.Context, id string) {
			c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		}),
	)
}
