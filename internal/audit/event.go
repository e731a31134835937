// Package audit provides a tamper-evident record of certificate issuance.
//
// Audit logs are separate from diagnostic logs. Events are appended to a
// JSONL file and chained with SHA-256 so that edits and deletions are
// detectable.
//
// Key principles:
//   - Audit failure = Operation failure
//   - Never log secrets (private keys, passphrases, PINs)
//   - All timestamps in UTC
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// EventType represents the category of audit event.
type EventType string

const (
	// EventCACreated records a new CA certificate, self-signed or intermediate.
	EventCACreated EventType = "CA_CREATED"

	// EventKeyAccessed records an issuer key being loaded.
	EventKeyAccessed EventType = "KEY_ACCESSED"

	// EventCertIssued records a new end-entity certificate.
	EventCertIssued EventType = "CERT_ISSUED"
)

// Result represents the outcome of an audited operation.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

func resultOf(success bool) Result {
	if success {
		return ResultSuccess
	}
	return ResultFailure
}

// Actor represents who performed the action.
type Actor struct {
	Type string `json:"type"`           // "user"
	ID   string `json:"id"`             // login name
	Host string `json:"host,omitempty"` // hostname where action occurred
}

// Object represents what was acted upon.
type Object struct {
	Type    string   `json:"type"`              // "certificate", "ca", "key"
	Serial  string   `json:"serial,omitempty"`  // certificate serial number
	Subject string   `json:"subject,omitempty"` // certificate subject DN
	SANs    []string `json:"sans,omitempty"`    // subject alternative names
	Path    string   `json:"path,omitempty"`    // file path or HSM key reference
}

// Context provides additional details about the operation.
type Context struct {
	Issuer    string `json:"issuer,omitempty"`     // issuer subject DN
	Algorithm string `json:"algorithm,omitempty"`  // key algorithm
	NotAfter  string `json:"not_after,omitempty"`  // RFC3339 UTC
	KeySource string `json:"key_source,omitempty"` // "file" or "pkcs11"
	Reason    string `json:"reason,omitempty"`     // failure reason
}

// Event represents a single audit log entry.
type Event struct {
	EventType EventType `json:"event_type"`
	Timestamp string    `json:"timestamp"` // RFC3339 UTC
	Actor     Actor     `json:"actor"`
	Object    Object    `json:"object"`
	Context   Context   `json:"context,omitempty"`
	Result    Result    `json:"result"`
	HashPrev  string    `json:"hash_prev"` // hash of previous event
	Hash      string    `json:"hash"`      // hash of this event
}

// NewEvent creates a new audit event with current timestamp and actor info.
func NewEvent(eventType EventType, result Result) *Event {
	hostname, _ := os.Hostname()
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME") // Windows
	}
	if username == "" {
		username = "unknown"
	}

	return &Event{
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Actor: Actor{
			Type: "user",
			ID:   username,
			Host: hostname,
		},
		Result: result,
	}
}

// WithObject sets the object field.
func (e *Event) WithObject(obj Object) *Event {
	e.Object = obj
	return e
}

// WithContext sets the context field.
func (e *Event) WithContext(ctx Context) *Event {
	e.Context = ctx
	return e
}

// Validate checks that required fields are present.
func (e *Event) Validate() error {
	if e.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if e.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	if e.Actor.Type == "" || e.Actor.ID == "" {
		return fmt.Errorf("actor type and id are required")
	}
	if e.Result == "" {
		return fmt.Errorf("result is required")
	}
	return nil
}

// CanonicalJSON returns the event as JSON without the Hash field.
func (e *Event) CanonicalJSON() ([]byte, error) {
	type eventForHash struct {
		EventType EventType `json:"event_type"`
		Timestamp string    `json:"timestamp"`
		Actor     Actor     `json:"actor"`
		Object    Object    `json:"object"`
		Context   Context   `json:"context,omitempty"`
		Result    Result    `json:"result"`
		HashPrev  string    `json:"hash_prev"`
	}

	return json.Marshal(eventForHash{
		EventType: e.EventType,
		Timestamp: e.Timestamp,
		Actor:     e.Actor,
		Object:    e.Object,
		Context:   e.Context,
		Result:    e.Result,
		HashPrev:  e.HashPrev,
	})
}

// JSON returns the full event as JSON.
func (e *Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}
