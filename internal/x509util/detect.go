package x509util

import (
	"bytes"
	"crypto/x509"
	"fmt"
	"strings"
)

// CertificateKind represents the role of a certificate in a chain.
type CertificateKind int

const (
	// KindUnknown indicates the kind could not be determined.
	KindUnknown CertificateKind = iota
	// KindRootCA is a self-issued CA certificate.
	KindRootCA
	// KindIntermediateCA is a CA certificate signed by another CA.
	KindIntermediateCA
	// KindEndEntity is a non-CA certificate.
	KindEndEntity
)

// String returns the string representation of the certificate kind.
func (k CertificateKind) String() string {
	switch k {
	case KindRootCA:
		return "Root CA"
	case KindIntermediateCA:
		return "Intermediate CA"
	case KindEndEntity:
		return "End entity"
	default:
		return "Unknown"
	}
}

// IsSelfIssued reports whether subject and issuer are the same entity.
// Key identifiers are compared when both are present, names otherwise.
func IsSelfIssued(cert *x509.Certificate) bool {
	if cert == nil {
		return false
	}
	if len(cert.SubjectKeyId) > 0 && len(cert.AuthorityKeyId) > 0 {
		return bytes.Equal(cert.SubjectKeyId, cert.AuthorityKeyId)
	}
	return bytes.Equal(cert.RawSubject, cert.RawIssuer)
}

// GetCertificateKind determines the role of a certificate.
func GetCertificateKind(cert *x509.Certificate) CertificateKind {
	if cert == nil {
		return KindUnknown
	}
	if !cert.IsCA {
		return KindEndEntity
	}
	if IsSelfIssued(cert) {
		return KindRootCA
	}
	return KindIntermediateCA
}

// CanSignCertificates reports whether cert may act as an issuer: it must
// assert cA in basicConstraints, and if it carries a keyUsage extension
// that extension must include keyCertSign.
func CanSignCertificates(cert *x509.Certificate) error {
	if cert == nil {
		return fmt.Errorf("no certificate")
	}
	if !cert.BasicConstraintsValid || !cert.IsCA {
		return fmt.Errorf("certificate %q is not a CA (basicConstraints cA=false)", cert.Subject.CommonName)
	}
	if cert.KeyUsage != 0 && cert.KeyUsage&x509.KeyUsageCertSign == 0 {
		return fmt.Errorf("certificate %q key usage does not permit certificate signing", cert.Subject.CommonName)
	}
	return nil
}

var keyUsageNames = []struct {
	bit  x509.KeyUsage
	name string
}{
	{x509.KeyUsageDigitalSignature, "digitalSignature"},
	{x509.KeyUsageContentCommitment, "contentCommitment"},
	{x509.KeyUsageKeyEncipherment, "keyEncipherment"},
	{x509.KeyUsageDataEncipherment, "dataEncipherment"},
	{x509.KeyUsageKeyAgreement, "keyAgreement"},
	{x509.KeyUsageCertSign, "keyCertSign"},
	{x509.KeyUsageCRLSign, "cRLSign"},
	{x509.KeyUsageEncipherOnly, "encipherOnly"},
	{x509.KeyUsageDecipherOnly, "decipherOnly"},
}

// KeyUsageNames lists the RFC 5280 names of the bits set in ku.
func KeyUsageNames(ku x509.KeyUsage) []string {
	var names []string
	for _, u := range keyUsageNames {
		if ku&u.bit != 0 {
			names = append(names, u.name)
		}
	}
	return names
}

// FormatKeyID renders a key identifier as colon-separated hex.
func FormatKeyID(id []byte) string {
	if len(id) == 0 {
		return "-"
	}
	parts := make([]string, len(id))
	for i, b := range id {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}
