package tracing

// TraceContext is the public entry point for propagation: one exclusively
// owned Baggage, one CorrelationContext, and the derived header map. Every
// constructing or mutating operation keeps the trace/span ids embedded in
// the baggage's OSSA projection equal to the correlation context's ids.
type TraceContext struct {
	Baggage     *Baggage
	Correlation *CorrelationContext
	Headers     map[string]string
}

// New creates a root trace context for agentID and interactionID. Workflow,
// tenant, and metadata are supplied via options. The baggage, correlation
// context, and headers are mutually consistent by construction. The only
// possible failure is a SizeError from oversized metadata.
func New(agentID, interactionID string, opts ...Option) (*TraceContext, error) {
	s := applyOptions(opts)

	correlation := NewCorrelationContext(append(opts,
		WithAgent(agentID), WithInteraction(interactionID))...)

	baggage := NewBaggage()
	err := baggage.SetOSSAContext(OSSAContext{
		AgentID:       agentID,
		InteractionID: interactionID,
		TraceID:       correlation.TraceID,
		SpanID:        correlation.SpanID,
		WorkflowID:    s.workflowID,
		TenantID:      s.tenantID,
		Custom:        s.metadata,
	})
	if err != nil {
		return nil, err
	}

	headers, err := baggage.Headers()
	if err != nil {
		return nil, err
	}

	return &TraceContext{
		Baggage:     baggage,
		Correlation: correlation,
		Headers:     headers,
	}, nil
}

// FromHeaders reconstructs a trace context from an incoming header map.
//
// It never fails: a missing, empty, or unparseable "baggage" header degrades
// to an empty-but-valid freshly rooted context, so tracing keeps working
// downstream of un-instrumented callers. Incoming trace/span ids are reused
// when present; otherwise fresh ones are generated. The correlation id is
// always fresh on the receiving hop. Keys outside the "ossa." namespace are
// kept in the baggage for pass-through.
func FromHeaders(headers map[string]string) *TraceContext {
	raw := headers[HeaderName]
	baggage, err := ParseBaggage(raw)
	if err != nil {
		baggage = NewBaggage()
	}

	ossa := baggage.OSSAContext()
	traceID := ossa.TraceID
	if traceID == "" {
		traceID = GenerateTraceID()
	}
	spanID := ossa.SpanID
	if spanID == "" {
		spanID = GenerateSpanID()
	}

	correlation := NewCorrelationContext(
		WithAgent(ossa.AgentID),
		WithInteraction(ossa.InteractionID),
		WithWorkflow(ossa.WorkflowID),
		WithTenant(ossa.TenantID),
		WithMetadata(ossa.Custom),
	)
	correlation.TraceID = traceID
	correlation.SpanID = spanID

	outHeaders, err := baggage.Headers()
	if err != nil {
		// Availability over strictness: keep the raw header rather than fail.
		outHeaders = map[string]string{HeaderName: raw}
	}

	return &TraceContext{
		Baggage:     baggage,
		Correlation: correlation,
		Headers:     outHeaders,
	}
}

// Child creates a trace context for delegating to childAgentID: inherited
// trace and correlation ids, a fresh span id with the parent pointer
// recorded, and ParentAgentID set to the current context's agent id. tc is
// not mutated, so one parent can fan out to many children.
func (tc *TraceContext) Child(childAgentID string, opts ...Option) (*TraceContext, error) {
	s := applyOptions(opts)

	childCorrelation := tc.Correlation.Child(append(opts, WithAgent(childAgentID))...)

	current := tc.Baggage.OSSAContext()
	custom := current.Custom
	if len(s.metadata) > 0 {
		custom = make(map[string]string, len(current.Custom)+len(s.metadata))
		for k, v := range current.Custom {
			custom[k] = v
		}
		for k, v := range s.metadata {
			custom[k] = v
		}
	}

	childBaggage := NewBaggage()
	err := childBaggage.SetOSSAContext(OSSAContext{
		AgentID:       childAgentID,
		InteractionID: current.InteractionID,
		TraceID:       childCorrelation.TraceID,
		SpanID:        childCorrelation.SpanID,
		ParentAgentID: tc.Correlation.AgentID,
		WorkflowID:    current.WorkflowID,
		TenantID:      current.TenantID,
		Custom:        custom,
	})
	if err != nil {
		return nil, err
	}

	headers, err := childBaggage.Headers()
	if err != nil {
		return nil, err
	}

	return &TraceContext{
		Baggage:     childBaggage,
		Correlation: childCorrelation,
		Headers:     headers,
	}, nil
}

// MergeMetadata is the single in-place mutator: it merges md into the
// correlation metadata and the baggage's custom fields, then recomputes the
// headers. Not safe for concurrent use with other operations on tc.
func (tc *TraceContext) MergeMetadata(md map[string]string) error {
	if tc.Correlation.Metadata == nil {
		tc.Correlation.Metadata = make(map[string]string, len(md))
	}
	for k, v := range md {
		tc.Correlation.Metadata[k] = v
	}

	ossa := tc.Baggage.OSSAContext()
	merged := make(map[string]string, len(ossa.Custom)+len(md))
	for k, v := range ossa.Custom {
		merged[k] = v
	}
	for k, v := range md {
		merged[k] = v
	}
	ossa.Custom = merged
	if err := tc.Baggage.SetOSSAContext(ossa); err != nil {
		return err
	}

	headers, err := tc.Baggage.Headers()
	if err != nil {
		return err
	}
	tc.Headers = headers
	return nil
}

// ToMap returns a flattened debug/log view of the whole context.
func (tc *TraceContext) ToMap() map[string]any {
	ossa := tc.Baggage.OSSAContext()
	return map[string]any{
		"correlation": tc.Correlation.ToMap(),
		"ossa_context": map[string]any{
			"agent_id":        ossa.AgentID,
			"interaction_id":  ossa.InteractionID,
			"trace_id":        ossa.TraceID,
			"span_id":         ossa.SpanID,
			"parent_agent_id": ossa.ParentAgentID,
			"workflow_id":     ossa.WorkflowID,
			"tenant_id":       ossa.TenantID,
			"custom":          ossa.Custom,
		},
		"headers": tc.Headers,
	}
}

// PropagateBaggage builds a child baggage from a parent baggage alone, for
// callers that hold no correlation context. The parent's agent id becomes
// the child's parent_agent_id and the child receives a fresh span id on the
// inherited trace.
func PropagateBaggage(parent *Baggage, childAgentID string) (*Baggage, error) {
	ctx := parent.OSSAContext()

	child := NewBaggage()
	err := child.SetOSSAContext(OSSAContext{
		AgentID:       childAgentID,
		InteractionID: ctx.InteractionID,
		TraceID:       ctx.TraceID,
		SpanID:        GenerateSpanID(),
		ParentAgentID: ctx.AgentID,
		WorkflowID:    ctx.WorkflowID,
		TenantID:      ctx.TenantID,
		Custom:        ctx.Custom,
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// NewAgentBaggage creates root-level baggage with generated trace and span
// ids, for callers that only need the wire representation.
func NewAgentBaggage(agentID, interactionID string, opts ...Option) (*Baggage, error) {
	s := applyOptions(opts)

	baggage := NewBaggage()
	err := baggage.SetOSSAContext(OSSAContext{
		AgentID:       agentID,
		InteractionID: interactionID,
		TraceID:       GenerateTraceID(),
		SpanID:        GenerateSpanID(),
		WorkflowID:    s.workflowID,
		TenantID:      s.tenantID,
		Custom:        s.metadata,
	})
	if err != nil {
		return nil, err
	}
	return baggage, nil
}
