package ca

import "errors"

// Error kinds returned by issuance. Callers match them with errors.Is; the
// wrapped cause carries the detail. A canceled or expired context is
// returned as ctx.Err() unwrapped, so it matches context.Canceled or
// context.DeadlineExceeded instead.
var (
	// ErrInvalidInput reports a malformed request: empty name, missing or
	// malformed subject alternative names, or a non-positive TTL.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidIssuer reports issuer material that cannot sign: unreadable
	// PEM, an unsupported key, a key that does not match the certificate,
	// or a certificate that is not a CA.
	ErrInvalidIssuer = errors.New("invalid issuer")

	// ErrCryptoFailure reports a key generation, signing or encoding failure.
	ErrCryptoFailure = errors.New("crypto failure")

	// ErrIOFailure reports a read or write failure on certificate or key
	// files, or on the audit log.
	ErrIOFailure = errors.New("i/o failure")
)
