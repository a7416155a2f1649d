package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemHammer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

// Recovery turns a handler panic into a 500 JSON error.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				reqID := GetRequestID(c)
				logger.Error("panic recovered",
					logging.String("panic", fmt.Sprint(r)),
					logging.String("stack", string(debug.Stack())),
					logging.String("method", c.Request.Method),
					logging.String("path", c.Request.URL.Path),
					logging.String(logging.RequestIDKey, reqID),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":       errors.CodeInternal.String(),
					"message":    errors.DefaultMessageForCode(errors.CodeInternal),
					"request_id": reqID,
				})
			}
		}()
		c.Next()
	}
}

// BodyLimit caps request bodies at n bytes. Non-positive n disables it.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
