package tracing

// Option configures context creation and child derivation.
type Option func(*settings)

type settings struct {
	agentID       string
	interactionID string
	workflowID    string
	tenantID      string
	metadata      map[string]string
}

func applyOptions(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithAgent sets the agent identifier. On child derivation it overrides the
// inherited agent id.
func WithAgent(agentID string) Option {
	return func(s *settings) { s.agentID = agentID }
}

// WithInteraction sets the interaction/session identifier.
func WithInteraction(interactionID string) Option {
	return func(s *settings) { s.interactionID = interactionID }
}

// WithWorkflow sets the workflow/orchestration identifier.
func WithWorkflow(workflowID string) Option {
	return func(s *settings) { s.workflowID = workflowID }
}

// WithTenant sets the multi-tenant isolation identifier.
func WithTenant(tenantID string) Option {
	return func(s *settings) { s.tenantID = tenantID }
}

// WithMetadata merges md into the context metadata. Later options win on key
// collision.
func WithMetadata(md map[string]string) Option {
	return func(s *settings) {
		if len(md) == 0 {
			return
		}
		if s.metadata == nil {
			s.metadata = make(map[string]string, len(md))
		}
		for k, v := range md {
			s.metadata[k] = v
		}
	}
}

// WithMeta merges a single metadata pair.
func WithMeta(key, value string) Option {
	return func(s *settings) {
		if s.metadata == nil {
			s.metadata = make(map[string]string, 1)
		}
		s.metadata[key] = value
	}
}
