package x509util

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"math/big"
	"time"
)

// CertificateRequest holds the parameters for creating a certificate.
type CertificateRequest struct {
	// Subject information
	Subject pkix.Name

	// Subject Alternative Names
	SANs SubjectAltNames

	// Validity period
	NotBefore time.Time
	NotAfter  time.Time

	// Key Usage
	KeyUsage x509.KeyUsage

	// CA settings
	IsCA                  bool
	MaxPathLen            int
	MaxPathLenZero        bool
	BasicConstraintsValid bool

	// Serial number (if nil, a random one will be generated)
	SerialNumber *big.Int
}

// CertificateBuilder builds X.509 certificates.
type CertificateBuilder struct {
	request *CertificateRequest
	rand    io.Reader
}

// NewCertificateBuilder creates a new certificate builder.
// Validity defaults to one year from now; callers normally override it.
func NewCertificateBuilder() *CertificateBuilder {
	now := time.Now()
	return &CertificateBuilder{
		request: &CertificateRequest{
			NotBefore:             now,
			NotAfter:              now.AddDate(1, 0, 0),
			BasicConstraintsValid: true,
		},
		rand: rand.Reader,
	}
}

// Subject sets the certificate subject.
func (b *CertificateBuilder) Subject(name pkix.Name) *CertificateBuilder {
	b.request.Subject = name
	return b
}

// CommonName sets the subject common name.
func (b *CertificateBuilder) CommonName(cn string) *CertificateBuilder {
	b.request.Subject.CommonName = cn
	return b
}

// SubjectAltNames sets all SAN categories at once.
func (b *CertificateBuilder) SubjectAltNames(sans SubjectAltNames) *CertificateBuilder {
	b.request.SANs = sans
	return b
}

// Validity sets the certificate validity period.
func (b *CertificateBuilder) Validity(notBefore, notAfter time.Time) *CertificateBuilder {
	b.request.NotBefore = notBefore
	b.request.NotAfter = notAfter
	return b
}

// ValidFor sets the validity to [from, from+d].
func (b *CertificateBuilder) ValidFor(from time.Time, d time.Duration) *CertificateBuilder {
	return b.Validity(from, from.Add(d))
}

// KeyUsage sets the key usage flags.
func (b *CertificateBuilder) KeyUsage(usage x509.KeyUsage) *CertificateBuilder {
	b.request.KeyUsage = usage
	return b
}

// CA marks this as a CA certificate. A negative maxPathLen leaves the
// path length unconstrained.
func (b *CertificateBuilder) CA(maxPathLen int) *CertificateBuilder {
	b.request.IsCA = true
	b.request.MaxPathLen = maxPathLen
	b.request.MaxPathLenZero = maxPathLen == 0
	b.request.BasicConstraintsValid = true
	return b
}

// EndEntity marks this as an end-entity (non-CA) certificate.
func (b *CertificateBuilder) EndEntity() *CertificateBuilder {
	b.request.IsCA = false
	b.request.MaxPathLen = -1
	b.request.MaxPathLenZero = false
	b.request.BasicConstraintsValid = true
	return b
}

// SerialNumber sets a specific serial number.
func (b *CertificateBuilder) SerialNumber(sn *big.Int) *CertificateBuilder {
	b.request.SerialNumber = sn
	return b
}

// Rand sets the entropy source used for the serial number and the signature.
func (b *CertificateBuilder) Rand(r io.Reader) *CertificateBuilder {
	if r != nil {
		b.rand = r
	}
	return b
}

// Build creates an x509.Certificate template from the request.
func (b *CertificateBuilder) Build() (*x509.Certificate, error) {
	serial := b.request.SerialNumber
	if serial == nil {
		var err error
		serial, err = GenerateSerialNumber(b.rand)
		if err != nil {
			return nil, fmt.Errorf("failed to generate serial number: %w", err)
		}
	}

	return &x509.Certificate{
		SerialNumber:          serial,
		Subject:               b.request.Subject,
		NotBefore:             b.request.NotBefore,
		NotAfter:              b.request.NotAfter,
		KeyUsage:              b.request.KeyUsage,
		IsCA:                  b.request.IsCA,
		MaxPathLen:            b.request.MaxPathLen,
		MaxPathLenZero:        b.request.MaxPathLenZero,
		BasicConstraintsValid: b.request.BasicConstraintsValid,
		DNSNames:              b.request.SANs.DNSNames,
		EmailAddresses:        b.request.SANs.EmailAddresses,
		IPAddresses:           b.request.SANs.IPAddresses,
		URIs:                  b.request.SANs.URIs,
	}, nil
}

// BuildAndSign creates and signs a certificate for pub.
//
// When issuer is nil the certificate is self-signed by issuerKey, and its
// AuthorityKeyId equals its SubjectKeyId. Otherwise the AuthorityKeyId is
// taken from the issuer certificate.
func (b *CertificateBuilder) BuildAndSign(
	pub crypto.PublicKey,
	issuer *x509.Certificate,
	issuerKey crypto.Signer,
) (*x509.Certificate, []byte, error) {
	template, err := b.Build()
	if err != nil {
		return nil, nil, err
	}

	ski, err := SubjectKeyID(pub)
	if err != nil {
		return nil, nil, err
	}
	template.SubjectKeyId = ski

	if issuer == nil {
		issuer = template
		template.AuthorityKeyId = ski
	} else {
		aki, err := AuthorityKeyID(issuer)
		if err != nil {
			return nil, nil, err
		}
		template.AuthorityKeyId = aki
	}

	certDER, err := x509.CreateCertificate(b.rand, template, issuer, pub, issuerKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse created certificate: %w", err)
	}

	return cert, certDER, nil
}

// GenerateSerialNumber generates a random positive 128-bit serial number.
func GenerateSerialNumber(random io.Reader) (*big.Int, error) {
	if random == nil {
		random = rand.Reader
	}
	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	for {
		sn, err := rand.Int(random, serialNumberLimit)
		if err != nil {
			return nil, err
		}
		// RFC 5280 requires a positive serial
		if sn.Sign() > 0 {
			return sn, nil
		}
	}
}
