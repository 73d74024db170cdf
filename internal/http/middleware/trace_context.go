package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/roadmap-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxRequestIDLen = 128
)

// AttachTraceContext stores trace and request ids on the request context and
// echoes them as response headers. An active otel span wins over a client header.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := cleanID(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		td := resolveTrace(c)
		td.RequestID = reqID
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Writer.Header().Set(headerTraceID, td.TraceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

func resolveTrace(c *gin.Context) ctxutil.TraceData {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return ctxutil.TraceData{TraceID: sc.TraceID().String(), Source: ctxutil.TraceSourceSpan}
	}
	if id := cleanID(c.GetHeader(headerTraceID)); id != "" {
		return ctxutil.TraceData{TraceID: id, Source: ctxutil.TraceSourceHeader}
	}
	return ctxutil.TraceData{TraceID: uuid.NewString(), Source: ctxutil.TraceSourceGenerated}
}

// cleanID drops client ids that are too long or carry non-printable bytes.
func cleanID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxRequestIDLen {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return ""
		}
	}
	return id
}
