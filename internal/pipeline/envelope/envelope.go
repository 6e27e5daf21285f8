// Package envelope defines the message contract carried across every queue in
// the pipeline. A single serialized record flows between all stages; unknown
// fields are preserved on the way through so that newer producers can talk to
// older consumers without losing data.
package envelope

import (
	"encoding/json"
	"time"

	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	"github.com/SergioST90/document-processing-system/internal/pkg/uid"
)

// Message is the envelope published to and consumed from every pipeline queue.
//
// Identity fields are required; everything else is optional workflow or stage
// context. Payload is stage-scoped and opaque to the runtime.
type Message struct {
	// Identity
	RequestID string `json:"request_id"`
	TraceID   string `json:"trace_id"`

	// Workflow
	WorkflowName string     `json:"workflow_name"`
	CurrentStage string     `json:"current_stage,omitempty"`
	DeadlineUTC  *time.Time `json:"deadline_utc,omitempty"`

	// Page-level context (set by the splitter, carried through page stages)
	PageIndex *int `json:"page_index,omitempty"`
	PageCount *int `json:"page_count,omitempty"`
	FileIndex *int `json:"file_index,omitempty"`

	// Document-level context (set by the classification aggregator)
	DocumentID    string `json:"document_id,omitempty"`
	DocumentCount *int   `json:"document_count,omitempty"`

	// Flexible payload for stage-specific data
	Payload map[string]any `json:"payload"`

	// Tracing
	SourceComponent string    `json:"source_component,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	// Extra captures fields this build does not know about. They are carried
	// forward verbatim when the message is re-serialized.
	Extra map[string]json.RawMessage `json:"-"`
}

// knownFields lists every JSON key owned by Message. Anything else found on
// the wire lands in Extra.
var knownFields = map[string]struct{}{
	"request_id":       {},
	"trace_id":         {},
	"workflow_name":    {},
	"current_stage":    {},
	"deadline_utc":     {},
	"page_index":       {},
	"page_count":       {},
	"file_index":       {},
	"document_id":      {},
	"document_count":   {},
	"payload":          {},
	"source_component": {},
	"created_at":       {},
}

// New constructs a Message with a fresh trace id and creation timestamp.
func New(requestID, workflowName string) *Message {
	return &Message{
		RequestID:    requestID,
		TraceID:      uid.NewUUID(),
		WorkflowName: workflowName,
		Payload:      map[string]any{},
		CreatedAt:    time.Now().UTC(),
	}
}

// Decode deserializes the wire representation and validates the identity
// fields. A message without request_id or workflow_name is rejected as
// permanently malformed.
func Decode(body []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, apperror.NewPersistance(apperror.CodeEnvelopeInvalid, "malformed message body", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate enforces the envelope's required fields.
func (m *Message) Validate() error {
	if m.RequestID == "" {
		return apperror.NewPersistance(apperror.CodeEnvelopeInvalid, "message missing request_id")
	}
	if m.WorkflowName == "" {
		return apperror.NewPersistance(apperror.CodeEnvelopeInvalid, "message missing workflow_name")
	}
	return nil
}

// Encode serializes the message, merging back any unknown fields captured at
// decode time. Known fields always win over stale Extra entries.
func (m *Message) Encode() ([]byte, error) {
	type alias Message
	known, err := json.Marshal((*alias)(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return known, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range m.Extra {
		if _, owned := merged[k]; !owned {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes known fields into the struct and stashes everything
// else in Extra so it survives a round trip through this process.
func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range raw {
		if _, ok := knownFields[k]; ok {
			delete(raw, k)
		}
	}
	if len(raw) > 0 {
		a.Extra = raw
	}

	*m = Message(a)
	return nil
}

// Clone returns a deep-enough copy for the producer-side mutation pattern:
// stages never modify an incoming message, they publish modified copies.
// The payload map is copied one level deep; nested values are shared.
func (m *Message) Clone() *Message {
	out := *m
	out.Payload = make(map[string]any, len(m.Payload))
	for k, v := range m.Payload {
		out.Payload[k] = v
	}
	if m.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

// WithPayload returns a copy of the message with the given payload entries
// merged over the existing ones and source_component updated.
func (m *Message) WithPayload(source string, entries map[string]any) *Message {
	out := m.Clone()
	out.SourceComponent = source
	for k, v := range entries {
		out.Payload[k] = v
	}
	return out
}

// IntPtr is a small helper for the optional numeric context fields.
func IntPtr(v int) *int { return &v }
