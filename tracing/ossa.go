package tracing

import "strings"

// Reserved keys inside the "ossa." namespace. Anything else under the prefix
// except "ossa.custom.*" is ignored by the projection.
const (
	keyAgentID       = OSSAPrefix + "agent_id"
	keyInteractionID = OSSAPrefix + "interaction_id"
	keyTraceID       = OSSAPrefix + "trace_id"
	keySpanID        = OSSAPrefix + "span_id"
	keyParentAgentID = OSSAPrefix + "parent_agent_id"
	keyWorkflowID    = OSSAPrefix + "workflow_id"
	keyTenantID      = OSSAPrefix + "tenant_id"

	customPrefix = OSSAPrefix + "custom."
)

// OSSAContext is a typed view over a baggage's "ossa." key namespace.
//
// All fields are optional (empty string means absent) to support partial
// context propagation. Custom carries free-form fields stored under
// "ossa.custom.<name>"; a nil map means no custom keys exist, which is
// distinct from an empty map and preserved across round trips. OSSAContext
// is always derived from a Baggage, never independently stored.
type OSSAContext struct {
	AgentID       string
	InteractionID string
	TraceID       string
	SpanID        string
	ParentAgentID string
	WorkflowID    string
	TenantID      string
	Custom        map[string]string
}

// SetOSSAContext writes the populated fields of ctx into the baggage under
// the "ossa." prefix. Absent fields are omitted, never written as empty
// strings. Custom fields go under "ossa.custom.<name>".
func (b *Baggage) SetOSSAContext(ctx OSSAContext) error {
	fixed := []struct {
		key   string
		value string
	}{
		{keyAgentID, ctx.AgentID},
		{keyInteractionID, ctx.InteractionID},
		{keyTraceID, ctx.TraceID},
		{keySpanID, ctx.SpanID},
		{keyParentAgentID, ctx.ParentAgentID},
		{keyWorkflowID, ctx.WorkflowID},
		{keyTenantID, ctx.TenantID},
	}
	for _, f := range fixed {
		if f.value == "" {
			continue
		}
		if err := b.Set(f.key, f.value); err != nil {
			return err
		}
	}
	for k, v := range ctx.Custom {
		if err := b.Set(customPrefix+k, v); err != nil {
			return err
		}
	}
	return nil
}

// OSSAContext reads the reserved keys back into a typed view. The Custom map
// is nil when no "ossa.custom.*" keys exist. Keys outside the "ossa."
// namespace are untouched.
func (b *Baggage) OSSAContext() OSSAContext {
	var custom map[string]string
	for key, entry := range b.entries {
		if !strings.HasPrefix(key, customPrefix) {
			continue
		}
		if custom == nil {
			custom = make(map[string]string)
		}
		custom[key[len(customPrefix):]] = entry.Value
	}

	get := func(key string) string {
		value, _ := b.Get(key)
		return value
	}
	return OSSAContext{
		AgentID:       get(keyAgentID),
		InteractionID: get(keyInteractionID),
		TraceID:       get(keyTraceID),
		SpanID:        get(keySpanID),
		ParentAgentID: get(keyParentAgentID),
		WorkflowID:    get(keyWorkflowID),
		TenantID:      get(keyTenantID),
		Custom:        custom,
	}
}
