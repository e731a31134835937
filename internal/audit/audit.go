package audit

import (
	"fmt"
	"sync"
)

var (
	globalWriter Writer = NopWriter{}
	globalMu     sync.RWMutex
	enabled      bool
)

// Init installs w as the process-wide audit writer, closing the previous
// one. A nil writer disables auditing.
func Init(w Writer) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	prev := globalWriter
	if w == nil {
		globalWriter = NopWriter{}
		enabled = false
	} else {
		globalWriter = w
		enabled = true
	}
	return prev.Close()
}

// InitFile installs a FileWriter for path. An empty path disables auditing.
func InitFile(path string) error {
	if path == "" {
		return Init(nil)
	}

	w, err := NewFileWriter(path)
	if err != nil {
		return err
	}
	return Init(w)
}

// Close closes the global audit writer and disables auditing.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	err := globalWriter.Close()
	globalWriter = NopWriter{}
	enabled = false
	return err
}

// Enabled returns whether audit logging is active.
func Enabled() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return enabled
}

// Log writes an audit event to the global writer.
func Log(event *Event) error {
	globalMu.RLock()
	w := globalWriter
	globalMu.RUnlock()

	return w.Write(event)
}

// MustLog writes an audit event and wraps any failure so that the caller
// can fail its operation with it.
//
//	if err := audit.MustLog(event); err != nil {
//	    return nil, err
//	}
func MustLog(event *Event) error {
	if err := Log(event); err != nil {
		return fmt.Errorf("audit log failed: %w", err)
	}
	return nil
}

// LogCACreated logs the creation of a CA certificate. issuer is empty for
// a self-signed root.
func LogCACreated(serial, subject, issuer, algorithm, notAfter string, sans []string, success bool, reason string) error {
	event := NewEvent(EventCACreated, resultOf(success)).
		WithObject(Object{
			Type:    "ca",
			Serial:  serial,
			Subject: subject,
			SANs:    sans,
		}).
		WithContext(Context{
			Issuer:    issuer,
			Algorithm: algorithm,
			NotAfter:  notAfter,
			Reason:    reason,
		})

	return MustLog(event)
}

// LogKeyAccessed logs an issuer key being loaded from a file or a token.
func LogKeyAccessed(path, keySource string, success bool, reason string) error {
	event := NewEvent(EventKeyAccessed, resultOf(success)).
		WithObject(Object{
			Type: "key",
			Path: path,
		}).
		WithContext(Context{
			KeySource: keySource,
			Reason:    reason,
		})

	return MustLog(event)
}

// LogCertIssued logs the issuance of an end-entity certificate.
func LogCertIssued(serial, subject, issuer, algorithm, notAfter string, sans []string, success bool, reason string) error {
	event := NewEvent(EventCertIssued, resultOf(success)).
		WithObject(Object{
			Type:    "certificate",
			Serial:  serial,
			Subject: subject,
			SANs:    sans,
		}).
		WithContext(Context{
			Issuer:    issuer,
			Algorithm: algorithm,
			NotAfter:  notAfter,
			Reason:    reason,
		})

	return MustLog(event)
}
