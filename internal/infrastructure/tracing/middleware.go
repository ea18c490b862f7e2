package tracing

import (
	"github.com/gin-gonic/gin"

	"github.com/ari-dashboard/backend/internal/shared/utils"
)

// Header carries the trace id on requests and responses.
const Header = "X-Request-ID"

// HTTPMiddleware creates Gin middleware for HTTP tracing. An incoming
// X-Request-ID is honored when it is a safe identifier; otherwise a new one
// is generated.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if incoming := c.GetHeader(Header); incoming != "" && utils.ValidateID(incoming, "request id") == nil {
			ctx = WithTraceID(ctx, TraceID(incoming))
		}

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, name)
		span.Method = c.Request.Method

		c.Request = c.Request.WithContext(ctx)
		c.Header(Header, string(span.TraceID))

		c.Next()

		span.StatusCode = c.Writer.Status()
		if len(c.Errors) > 0 {
			span.Error = c.Errors.Last()
		}
		tracer.Finish(span)
	}
}
