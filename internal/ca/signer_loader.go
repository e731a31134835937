package ca

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	pkicrypto "github.com/remiblancher/certgen/internal/crypto"
	"github.com/remiblancher/certgen/internal/x509util"
)

// Issuer is the CA material used to sign a certificate: its certificate and
// a signer for its private key. The signer may be a software key or a
// PKCS#11 key.
type Issuer struct {
	Certificate *x509.Certificate
	Signer      crypto.Signer
}

// NewIssuer checks that cert is a CA certificate and that signer holds the
// private key matching it.
func NewIssuer(cert *x509.Certificate, signer crypto.Signer) (*Issuer, error) {
	if cert == nil {
		return nil, fmt.Errorf("%w: no issuer certificate", ErrInvalidIssuer)
	}
	if signer == nil {
		return nil, fmt.Errorf("%w: no issuer key", ErrInvalidIssuer)
	}
	if err := x509util.CanSignCertificates(cert); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIssuer, err)
	}
	if !pkicrypto.KeyMatches(signer, cert.PublicKey) {
		return nil, fmt.Errorf("%w: private key does not match the public key of certificate %q",
			ErrInvalidIssuer, cert.Subject.CommonName)
	}
	return &Issuer{Certificate: cert, Signer: signer}, nil
}

// ParseIssuer parses a PEM CA certificate and PEM private key and returns
// the validated issuer. passphrase is only used for encrypted keys.
func ParseIssuer(certPEM, keyPEM, passphrase []byte) (*Issuer, error) {
	cert, err := ParseCertificatePEM(certPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIssuer, err)
	}

	signer, err := pkicrypto.ParsePrivateKeyPEM(keyPEM, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load CA key: %w", ErrInvalidIssuer, err)
	}

	return NewIssuer(cert, signer)
}

// ParseCertificatePEM returns the first CERTIFICATE block in data.
func ParseCertificatePEM(data []byte) (*x509.Certificate, error) {
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, fmt.Errorf("no PEM CERTIFICATE block found")
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		return cert, nil
	}
}

// Close releases the issuer signer when it holds external resources.
func (i *Issuer) Close() error {
	if c, ok := i.Signer.(pkicrypto.Closer); ok {
		return c.Close()
	}
	return nil
}
