package logging

import (
	"go.uber.org/zap"

	"github.com/blueflyio/ossa-go/tracing"
)

// TraceFields returns the standard log fields for an active trace context.
// Empty identifiers are skipped so logs stay compact on partial contexts.
func TraceFields(tc *tracing.TraceContext) []zap.Field {
	if tc == nil || tc.Correlation == nil {
		return nil
	}
	c := tc.Correlation

	fields := make([]zap.Field, 0, 6)
	fields = append(fields,
		zap.String("trace_id", c.TraceID),
		zap.String("span_id", c.SpanID),
		zap.String("correlation_id", c.CorrelationID),
	)
	if c.ParentSpanID != "" {
		fields = append(fields, zap.String("parent_span_id", c.ParentSpanID))
	}
	if c.AgentID != "" {
		fields = append(fields, zap.String("agent_id", c.AgentID))
	}
	if c.InteractionID != "" {
		fields = append(fields, zap.String("interaction_id", c.InteractionID))
	}
	return fields
}

// WithTrace returns a child logger carrying the trace fields on every entry.
func (l *Logger) WithTrace(tc *tracing.TraceContext) *Logger {
	fields := TraceFields(tc)
	if len(fields) == 0 {
		return l
	}
	return &Logger{Logger: l.Logger.With(fields...)}
}
