package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/case-admin-backend/internal/logger"
)

const traceIDHeader = "X-Trace-ID"

// TraceID attaches a child logger carrying trace_id to the request context and
// echoes the id in the response. An incoming X-Trace-ID is reused.
func TraceID(base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		l := base.GetChildLogger()
		l.UpdateContext(func(zc zerolog.Context) zerolog.Context {
			return zc.Str("trace_id", traceID)
		})
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Header(traceIDHeader, traceID)
		c.Next()
	}
}

// RequestLogger logs one line per request. It must run after TraceID.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		uri := c.Request.RequestURI
		method := c.Request.Method

		c.Next()

		logger.FromContext(c.Request.Context()).Info().
			Str("uri", uri).
			Str("method", method).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Int("size", c.Writer.Size()).
			Send()
	}
}
