// Package events emits CloudEvents v1.0 for agent lifecycle reporting, with
// OSSA trace extensions carried as event attributes.
package events

import (
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/blueflyio/ossa-go/tracing"
)

// SpecVersion is the only CloudEvents version this package produces.
const SpecVersion = "1.0"

// Content types used on the wire.
const (
	ContentTypeJSON       = "application/json"
	ContentTypeCloudEvent = "application/cloudevents+json"
	ContentTypeBatch      = "application/cloudevents-batch+json"
)

// Event is a CloudEvents v1.0 envelope. The ossa* attributes are extension
// attributes correlating the event with a distributed trace.
type Event struct {
	SpecVersion     string `json:"specversion"`
	Type            string `json:"type"`
	Source          string `json:"source"`
	ID              string `json:"id"`
	Time            string `json:"time,omitempty"`
	DataContentType string `json:"datacontenttype,omitempty"`
	Subject         string `json:"subject,omitempty"`
	Data            any    `json:"data,omitempty"`

	AgentID       string `json:"ossaagentid,omitempty"`
	InteractionID string `json:"ossainteractionid,omitempty"`
	TraceID       string `json:"ossatraceid,omitempty"`
	SpanID        string `json:"ossaspanid,omitempty"`
}

// New creates an event with a generated id and the current UTC time.
func New(eventType, source string, data any) *Event {
	return &Event{
		SpecVersion:     SpecVersion,
		Type:            eventType,
		Source:          source,
		ID:              uuid.NewString(),
		Time:            time.Now().UTC().Format(time.RFC3339Nano),
		DataContentType: ContentTypeJSON,
		Data:            data,
	}
}

// WithTrace fills the OSSA extension attributes from a trace context and
// returns the event for chaining.
func (e *Event) WithTrace(tc *tracing.TraceContext) *Event {
	if tc == nil || tc.Correlation == nil {
		return e
	}
	e.AgentID = tc.Correlation.AgentID
	e.InteractionID = tc.Correlation.InteractionID
	e.TraceID = tc.Correlation.TraceID
	e.SpanID = tc.Correlation.SpanID
	return e
}

// WithSubject sets the event subject and returns the event for chaining.
func (e *Event) WithSubject(subject string) *Event {
	e.Subject = subject
	return e
}

// Validate checks the required CloudEvents attributes.
func (e *Event) Validate() error {
	switch {
	case e.SpecVersion != SpecVersion:
		return errors.New("events: specversion must be " + SpecVersion)
	case e.Type == "":
		return errors.New("events: type is required")
	case e.Source == "":
		return errors.New("events: source is required")
	case e.ID == "":
		return errors.New("events: id is required")
	}
	return nil
}

// JSON serializes the event.
func (e *Event) JSON() ([]byte, error) {
	return sonic.Marshal(e)
}

// PrettyJSON serializes the event with indentation for human consumption.
func (e *Event) PrettyJSON() ([]byte, error) {
	return sonic.MarshalIndent(e, "", "  ")
}
