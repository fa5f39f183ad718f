package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lithammer/shortuuid/v4"
	"go.opentelemetry.io/otel/trace"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderTraceID   = "X-Trace-Id"

	keyRequestID = "request_id"
	keyTraceID   = "trace_id"
)

// AttachRequestID echoes or mints a request id and exposes the active trace
// id, both as response headers and gin keys.
func AttachRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if reqID == "" {
			reqID = shortuuid.New()
		}
		traceID := strings.TrimSpace(c.GetHeader(HeaderTraceID))
		if traceID == "" {
			if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
				traceID = sc.TraceID().String()
			}
		}
		c.Set(keyRequestID, reqID)
		c.Writer.Header().Set(HeaderRequestID, reqID)
		if traceID != "" {
			c.Set(keyTraceID, traceID)
			c.Writer.Header().Set(HeaderTraceID, traceID)
		}
		c.Next()
	}
}
