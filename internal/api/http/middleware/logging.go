package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clubhub-app/clubhub-backend/internal/logger"
)

// Logging is a gin middleware that logs requests and results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, path, duration and status for each request.
func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()

	c.Next()

	duration := time.Since(start)
	status := c.Writer.Status()

	l.logger.Info("request completed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"duration_ms", duration.Milliseconds(),
		"status", status)

	if status >= http.StatusInternalServerError {
		for _, ginErr := range c.Errors {
			l.logger.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", ginErr.Error())
		}
	}
}
