package x509util

import (
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"fmt"
)

// SubjectKeyID computes the subject key identifier from a public key.
// Uses the first 160 bits of the SHA-256 hash of the PKIX encoding.
func SubjectKeyID(pub crypto.PublicKey) ([]byte, error) {
	pubBytes, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	hash := sha256.Sum256(pubBytes)
	return hash[:20], nil
}

// AuthorityKeyID returns the key identifier to place in certificates signed
// by issuer. Certificates without a SubjectKeyId get one computed from their
// public key.
func AuthorityKeyID(issuer *x509.Certificate) ([]byte, error) {
	if len(issuer.SubjectKeyId) > 0 {
		return issuer.SubjectKeyId, nil
	}
	return SubjectKeyID(issuer.PublicKey)
}
