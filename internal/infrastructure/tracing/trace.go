package tracing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
	"github.com/ari-dashboard/backend/internal/shared/id"
)

// TraceID identifies one request across log lines.
type TraceID string

// Span records a single traced request.
type Span struct {
	TraceID    TraceID
	Name       string
	Method     string
	StartTime  time.Time
	Duration   time.Duration
	StatusCode int
	Error      error
}

// Tracer logs completed spans.
type Tracer struct {
	logger *logging.Logger
	slow   time.Duration
}

// New creates a tracer. Spans slower than slow are logged at Warn; zero
// disables the threshold.
func New(logger *logging.Logger, slow time.Duration) *Tracer {
	return &Tracer{
		logger: logger.Named("trace"),
		slow:   slow,
	}
}

// StartSpan begins a span, reusing the trace id already in ctx when present.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = TraceID(id.NewRequestID())
	}
	span := &Span{
		TraceID:   traceID,
		Name:      name,
		StartTime: time.Now(),
	}
	return span, WithTraceID(ctx, traceID)
}

// Finish marks the span complete and logs it.
func (t *Tracer) Finish(span *Span) {
	span.Duration = time.Since(span.StartTime)

	fields := []zap.Field{
		zap.String("trace_id", string(span.TraceID)),
		zap.String("operation", span.Name),
		zap.String("method", span.Method),
		zap.Int("status", span.StatusCode),
		zap.Duration("duration", span.Duration),
	}

	switch {
	case span.Error != nil || span.StatusCode >= 500:
		if span.Error != nil {
			fields = append(fields, zap.Error(span.Error))
		}
		t.logger.Error("Request failed", fields...)
	case t.slow > 0 && span.Duration > t.slow:
		t.logger.Warn("Slow request", fields...)
	default:
		t.logger.Debug("Request completed", fields...)
	}
}

type contextKey string

const traceIDKey contextKey = "trace_id"

// WithTraceID returns ctx carrying traceID.
func WithTraceID(ctx context.Context, traceID TraceID) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) TraceID {
	if traceID, ok := ctx.Value(traceIDKey).(TraceID); ok {
		return traceID
	}
	return ""
}

// Field returns the trace id of ctx as a log field.
func Field(ctx context.Context) zap.Field {
	return zap.String("trace_id", string(GetTraceID(ctx)))
}
