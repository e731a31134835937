package ca

import "crypto/x509"

// Key usage sets applied to issued certificates.
const (
	// SelfSignedKeyUsage is used for self-signed CA certificates.
	SelfSignedKeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature

	// IntermediateKeyUsage is used for signed certificates with IsCA set.
	IntermediateKeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature

	// LeafKeyUsage is used for signed end-entity certificates.
	LeafKeyUsage = x509.KeyUsageDigitalSignature
)

// unconstrainedPathLen leaves basicConstraints pathLenConstraint absent.
const unconstrainedPathLen = -1

func signedKeyUsage(isCA bool) x509.KeyUsage {
	if isCA {
		return IntermediateKeyUsage
	}
	return LeafKeyUsage
}
