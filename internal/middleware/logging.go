package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// LoggerKey for storing the request-scoped logger in the Gin context
const LoggerKey = "logger"

func Logging(baseLogger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		span := trace.SpanFromContext(c.Request.Context())

		logger := baseLogger.With(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)

		c.Set(LoggerKey, logger)

		c.Next()

		logger.Info("request completed",
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.Int("size", c.Writer.Size()),
		)
	}
}

// GetLogger extracts the request-scoped logger from the Gin context.
func GetLogger(c *gin.Context) *slog.Logger {
	if logger, exists := c.Get(LoggerKey); exists {
		return logger.(*slog.Logger)
	}
	return slog.Default()
}
