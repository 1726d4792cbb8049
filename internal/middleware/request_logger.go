package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openreel/openreel/internal/logger"
)

// RequestLogger logs HTTP requests and their outcome. Health probes
// and the websocket feed are skipped to keep the log readable.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/api/health" || strings.HasSuffix(path, "/events/ws") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger.DebugStructured("HTTP request",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.String("duration", time.Since(start).String()),
			logger.Int("size", c.Writer.Size()),
			logger.String("ip", c.ClientIP()),
		)
	}
}

// ErrorLogger logs errors attached to the gin context during handling
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, err := range c.Errors {
			logger.ErrorStructured("Request error",
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
				logger.String("error", err.Error()),
			)
		}
	}
}
