package middleware

import (
	"time"

	"github.com/Payphone-Digital/auth-service/internal/constants"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/Payphone-Digital/auth-service/pkg/logger"
	"github.com/Payphone-Digital/auth-service/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// unmatchedRoute labels requests that hit no registered route, keeping the
// metrics label set bounded.
const unmatchedRoute = "unmatched"

// LoggingMiddleware writes one access log entry per request.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger.LogRequest(
			c.Request.Method,
			path,
			status,
			latency.Milliseconds(),
			c.ClientIP(),
			c.Request.UserAgent(),
			c.GetString(constants.GinKeyRequestID),
		)

		if len(c.Errors) > 0 {
			logger.GetLogger().Error("Request error",
				zap.String("error", c.Errors.String()),
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.Int("status_code", status),
			)
		}

		if latency > 2*time.Second {
			logger.GetLogger().Warn("Slow request detected",
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.Duration("latency", latency),
			)
		}
	}
}

// RecoveryMiddleware turns a panic into an UnexpectedError response.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.LogPanic(recovered)
		abortWithError(c, apperrors.ErrUnexpected)
	})
}

// MetricsMiddleware records request count and latency by route template.
func MetricsMiddleware(recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		recorder.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
