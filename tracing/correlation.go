package tracing

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// CorrelationContext tracks one operation within a distributed interaction.
//
// Every context derived, directly or transitively, from one root shares
// exactly one TraceID and CorrelationID; each hop gets its own SpanID with
// ParentSpanID pointing at its immediate predecessor.
type CorrelationContext struct {
	CorrelationID string
	TraceID       string
	SpanID        string
	ParentSpanID  string
	AgentID       string
	InteractionID string
	WorkflowID    string
	TenantID      string
	Metadata      map[string]string
	Timestamp     time.Time
}

// NewCorrelationContext creates a root correlation context with freshly
// generated correlation, trace, and span ids and no parent span.
func NewCorrelationContext(opts ...Option) *CorrelationContext {
	s := applyOptions(opts)
	md := make(map[string]string, len(s.metadata))
	for k, v := range s.metadata {
		md[k] = v
	}
	return &CorrelationContext{
		CorrelationID: GenerateCorrelationID(),
		TraceID:       GenerateTraceID(),
		SpanID:        GenerateSpanID(),
		AgentID:       s.agentID,
		InteractionID: s.interactionID,
		WorkflowID:    s.workflowID,
		TenantID:      s.tenantID,
		Metadata:      md,
		Timestamp:     time.Now().UTC(),
	}
}

// Child derives a context for a nested operation: same correlation and trace
// ids, a fresh span id, and ParentSpanID set to c's SpanID. The agent id is
// overridden via WithAgent or inherited; metadata is a shallow merge of c's
// metadata with any WithMetadata/WithMeta options, the latter winning on
// collision. Interaction, workflow, and tenant ids are inherited unchanged.
// c is not mutated.
func (c *CorrelationContext) Child(opts ...Option) *CorrelationContext {
	s := applyOptions(opts)

	agentID := c.AgentID
	if s.agentID != "" {
		agentID = s.agentID
	}

	md := make(map[string]string, len(c.Metadata)+len(s.metadata))
	for k, v := range c.Metadata {
		md[k] = v
	}
	for k, v := range s.metadata {
		md[k] = v
	}

	return &CorrelationContext{
		CorrelationID: c.CorrelationID,
		TraceID:       c.TraceID,
		SpanID:        GenerateSpanID(),
		ParentSpanID:  c.SpanID,
		AgentID:       agentID,
		InteractionID: c.InteractionID,
		WorkflowID:    c.WorkflowID,
		TenantID:      c.TenantID,
		Metadata:      md,
		Timestamp:     time.Now().UTC(),
	}
}

// ToMap returns a flattened debug/log view of the context.
func (c *CorrelationContext) ToMap() map[string]any {
	return map[string]any{
		"correlation_id": c.CorrelationID,
		"trace_id":       c.TraceID,
		"span_id":        c.SpanID,
		"parent_span_id": c.ParentSpanID,
		"agent_id":       c.AgentID,
		"interaction_id": c.InteractionID,
		"workflow_id":    c.WorkflowID,
		"tenant_id":      c.TenantID,
		"metadata":       c.Metadata,
		"timestamp":      c.Timestamp.Format(time.RFC3339Nano),
	}
}

// MarshalLogObject implements zapcore.ObjectMarshaler so correlation
// contexts log as structured fields.
func (c *CorrelationContext) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("correlation_id", c.CorrelationID)
	enc.AddString("trace_id", c.TraceID)
	enc.AddString("span_id", c.SpanID)
	if c.ParentSpanID != "" {
		enc.AddString("parent_span_id", c.ParentSpanID)
	}
	if c.AgentID != "" {
		enc.AddString("agent_id", c.AgentID)
	}
	if c.InteractionID != "" {
		enc.AddString("interaction_id", c.InteractionID)
	}
	if c.WorkflowID != "" {
		enc.AddString("workflow_id", c.WorkflowID)
	}
	if c.TenantID != "" {
		enc.AddString("tenant_id", c.TenantID)
	}
	return nil
}
