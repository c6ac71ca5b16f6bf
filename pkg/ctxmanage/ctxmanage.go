package ctxmanage

import (
	"github.com/gin-gonic/gin"
)

type key string

// TraceIDKey is where the logging middleware stores the request trace id.
const TraceIDKey key = "traceId"

// GetTraceIdOfRequest returns the trace id set by the logging middleware,
// or "unknown" if the middleware did not run for this request.
func GetTraceIdOfRequest(c *gin.Context) string {
	ctx := c.Request.Context()
	traceId, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return "unknown"
	}
	return traceId
}
