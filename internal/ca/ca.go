// Package ca issues X.509 certificates: self-signed CA certificates and
// certificates signed by an existing CA.
package ca

import (
	"crypto/rand"
	"crypto/x509"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	pkicrypto "github.com/remiblancher/certgen/internal/crypto"
	"github.com/remiblancher/certgen/internal/x509util"
)

// Minter generates fresh key pairs and certificates for them.
// A Minter holds only immutable options and is safe for concurrent use.
type Minter struct {
	algorithm  pkicrypto.AlgorithmID
	now        func() time.Time
	rand       io.Reader
	passphrase []byte
	logger     zerolog.Logger
}

// Option configures a Minter.
type Option func(*Minter)

// WithAlgorithm selects the algorithm for generated keys.
func WithAlgorithm(alg pkicrypto.AlgorithmID) Option {
	return func(m *Minter) { m.algorithm = alg }
}

// WithClock overrides the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(m *Minter) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRand overrides the entropy source for keys, serials and signatures.
func WithRand(r io.Reader) Option {
	return func(m *Minter) {
		if r != nil {
			m.rand = r
		}
	}
}

// WithKeyPassphrase encrypts emitted private keys with passphrase.
func WithKeyPassphrase(passphrase []byte) Option {
	return func(m *Minter) { m.passphrase = passphrase }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Minter) { m.logger = logger }
}

// New creates a Minter. Without options it generates ECDSA P-256 keys,
// uses the wall clock and crypto/rand, and logs nothing.
func New(opts ...Option) *Minter {
	m := &Minter{
		algorithm: pkicrypto.DefaultAlgorithm,
		now:       time.Now,
		rand:      rand.Reader,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Algorithm returns the algorithm used for generated keys.
func (m *Minter) Algorithm() pkicrypto.AlgorithmID {
	return m.algorithm
}

// Request holds the caller-supplied parameters of a certificate.
type Request struct {
	// Name becomes the subject common name.
	Name string

	// SubjectAltNames lists DNS names, IP addresses, e-mail addresses and URIs.
	SubjectAltNames []string

	// TTL is the validity period starting now.
	TTL time.Duration

	// IsCA makes a signed certificate an intermediate CA. Ignored for
	// self-signed certificates, which are always CAs.
	IsCA bool
}

// validate checks the request and returns its parsed SANs.
func (r Request) validate() (x509util.SubjectAltNames, error) {
	if strings.TrimSpace(r.Name) == "" {
		return x509util.SubjectAltNames{}, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	if len(r.SubjectAltNames) == 0 {
		return x509util.SubjectAltNames{}, fmt.Errorf("%w: at least one subject alternative name is required", ErrInvalidInput)
	}
	if r.TTL <= 0 {
		return x509util.SubjectAltNames{}, fmt.Errorf("%w: ttl must be positive, got %s", ErrInvalidInput, r.TTL)
	}

	sans, err := x509util.ParseSANs(r.SubjectAltNames)
	if err != nil {
		return x509util.SubjectAltNames{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return sans, nil
}

// Issued is a newly minted certificate with its private key.
type Issued struct {
	// Certificate is the parsed certificate.
	Certificate *x509.Certificate

	// DER is the raw certificate.
	DER []byte

	// CertPEM is the PEM "CERTIFICATE" encoding of DER.
	CertPEM []byte

	// KeyPEM is the PEM PKCS#8 private key, encrypted when a passphrase
	// was configured.
	KeyPEM []byte

	// Algorithm is the algorithm of the generated key.
	Algorithm pkicrypto.AlgorithmID
}

// Serial returns the certificate serial number in the form used by the
// audit trail.
func (i *Issued) Serial() string {
	return formatSerial(i.Certificate)
}

func formatSerial(cert *x509.Certificate) string {
	if cert == nil || cert.SerialNumber == nil {
		return ""
	}
	return fmt.Sprintf("0x%X", cert.SerialNumber.Bytes())
}
