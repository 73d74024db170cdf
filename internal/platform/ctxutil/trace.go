package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type traceDataKey struct{}

// TraceData correlates one HTTP request across logs, spans and responses.
// Source records whether TraceID came from an otel span, a client header or
// was generated here.
type TraceData struct {
	TraceID   string
	RequestID string
	Source    string
}

const (
	TraceSourceSpan      = "span"
	TraceSourceHeader    = "header"
	TraceSourceGenerated = "generated"
)

func WithTraceData(ctx context.Context, td TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) (TraceData, bool) {
	if ctx == nil {
		return TraceData{}, false
	}
	td, ok := ctx.Value(traceDataKey{}).(TraceData)
	return td, ok
}

// LogFields returns the correlation key/value pairs known for ctx, ready to
// append to a logger call.
func LogFields(ctx context.Context) []interface{} {
	var kv []interface{}
	if td, ok := GetTraceData(ctx); ok {
		kv = append(kv, "trace_id", td.TraceID, "request_id", td.RequestID)
	}
	if id := UserID(ctx); id != uuid.Nil {
		kv = append(kv, "user_id", id.String())
	}
	return kv
}
