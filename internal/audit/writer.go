package audit

import "io"

// Writer defines the interface for audit log writers.
//
// Implementations MUST:
//   - Return an error if the write fails
//   - Flush to stable storage before returning from Write
//   - Set HashPrev and Hash on the event
type Writer interface {
	io.Closer

	// Write validates, chains and persists an event.
	Write(event *Event) error

	// LastHash returns the hash of the last written event, or
	// GenesisHash if none has been written.
	LastHash() string
}

// NopWriter discards all events. Used when audit logging is disabled.
type NopWriter struct{}

var _ Writer = (*NopWriter)(nil)

func (NopWriter) Write(*Event) error { return nil }
func (NopWriter) Close() error       { return nil }
func (NopWriter) LastHash() string   { return GenesisHash }
