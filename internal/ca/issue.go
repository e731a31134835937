package ca

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/remiblancher/certgen/internal/audit"
	pkicrypto "github.com/remiblancher/certgen/internal/crypto"
	"github.com/remiblancher/certgen/internal/x509util"
)

// IssueSelfSigned generates a key pair and a self-signed CA certificate for
// it. The certificate has an unconstrained path length and carries
// SelfSignedKeyUsage.
func (m *Minter) IssueSelfSigned(ctx context.Context, req Request) (*Issued, error) {
	sans, err := req.validate()
	if err != nil {
		return nil, err
	}

	kp, err := m.generateKey(ctx)
	if err != nil {
		return nil, err
	}

	notBefore := m.now()
	builder := x509util.NewCertificateBuilder().
		CommonName(req.Name).
		SubjectAltNames(sans).
		ValidFor(notBefore, req.TTL).
		CA(unconstrainedPathLen).
		KeyUsage(SelfSignedKeyUsage).
		Rand(m.rand)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cert, der, err := builder.BuildAndSign(kp.PublicKey, nil, kp.PrivateKey)
	if err != nil {
		_ = audit.LogCACreated("", "CN="+req.Name, "", string(kp.Algorithm), "", req.SubjectAltNames, false, err.Error())
		return nil, fmt.Errorf("%w: failed to sign CA certificate: %w", ErrCryptoFailure, err)
	}

	issued, err := m.finish(cert, der, kp)
	if err != nil {
		return nil, err
	}

	if err := audit.LogCACreated(issued.Serial(), cert.Subject.String(), "", string(kp.Algorithm),
		cert.NotAfter.UTC().Format(time.RFC3339), sans.Strings(), true, ""); err != nil {
		return nil, fmt.Errorf("%w: failed to write audit event: %w", ErrIOFailure, err)
	}

	m.logger.Debug().
		Str("subject", cert.Subject.String()).
		Str("serial", issued.Serial()).
		Str("algorithm", string(kp.Algorithm)).
		Time("not_after", cert.NotAfter).
		Msg("self-signed CA certificate issued")

	return issued, nil
}

// IssueSignedPEM parses the issuer certificate and key from PEM and issues
// a certificate signed by it. See IssueSigned.
func (m *Minter) IssueSignedPEM(ctx context.Context, issuerCertPEM, issuerKeyPEM, passphrase []byte, req Request) (*Issued, error) {
	issuer, err := ParseIssuer(issuerCertPEM, issuerKeyPEM, passphrase)
	if err != nil {
		return nil, err
	}
	return m.IssueSigned(ctx, issuer, req)
}

// IssueSigned generates a key pair and a certificate for it signed by
// issuer. The issuer is checked before the request so that a bad CA is
// reported even when the request is also invalid.
//
// With req.IsCA the certificate is an intermediate CA with
// IntermediateKeyUsage, otherwise an end entity with LeafKeyUsage.
// NotAfter is not clamped to the issuer's validity.
func (m *Minter) IssueSigned(ctx context.Context, issuer *Issuer, req Request) (*Issued, error) {
	if issuer == nil {
		return nil, fmt.Errorf("%w: no issuer", ErrInvalidIssuer)
	}
	if _, err := NewIssuer(issuer.Certificate, issuer.Signer); err != nil {
		return nil, err
	}

	sans, err := req.validate()
	if err != nil {
		return nil, err
	}

	kp, err := m.generateKey(ctx)
	if err != nil {
		return nil, err
	}

	notBefore := m.now()
	builder := x509util.NewCertificateBuilder().
		CommonName(req.Name).
		SubjectAltNames(sans).
		ValidFor(notBefore, req.TTL).
		KeyUsage(signedKeyUsage(req.IsCA)).
		Rand(m.rand)
	if req.IsCA {
		builder.CA(unconstrainedPathLen)
	} else {
		builder.EndEntity()
	}

	if notAfter := notBefore.Add(req.TTL); notAfter.After(issuer.Certificate.NotAfter) {
		m.logger.Warn().
			Time("not_after", notAfter).
			Time("issuer_not_after", issuer.Certificate.NotAfter).
			Msg("certificate outlives its issuer")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	issuerDN := issuer.Certificate.Subject.String()
	logIssued := audit.LogCertIssued
	if req.IsCA {
		logIssued = audit.LogCACreated
	}

	cert, der, err := builder.BuildAndSign(kp.PublicKey, issuer.Certificate, issuer.Signer)
	if err != nil {
		_ = logIssued("", "CN="+req.Name, issuerDN, string(kp.Algorithm), "", req.SubjectAltNames, false, err.Error())
		return nil, fmt.Errorf("%w: failed to sign certificate: %w", ErrCryptoFailure, err)
	}

	issued, err := m.finish(cert, der, kp)
	if err != nil {
		return nil, err
	}

	if err := logIssued(issued.Serial(), cert.Subject.String(), issuerDN, string(kp.Algorithm),
		cert.NotAfter.UTC().Format(time.RFC3339), sans.Strings(), true, ""); err != nil {
		return nil, fmt.Errorf("%w: failed to write audit event: %w", ErrIOFailure, err)
	}

	m.logger.Debug().
		Str("subject", cert.Subject.String()).
		Str("issuer", issuerDN).
		Str("serial", issued.Serial()).
		Str("algorithm", string(kp.Algorithm)).
		Bool("is_ca", cert.IsCA).
		Time("not_after", cert.NotAfter).
		Msg("certificate issued")

	return issued, nil
}

func (m *Minter) generateKey(ctx context.Context) (*pkicrypto.KeyPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !m.algorithm.IsValid() {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidInput, m.algorithm)
	}

	kp, err := pkicrypto.GenerateKeyPairWithRand(m.rand, m.algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate %s key: %w", ErrCryptoFailure, m.algorithm, err)
	}
	return kp, nil
}

func (m *Minter) finish(cert *x509.Certificate, der []byte, kp *pkicrypto.KeyPair) (*Issued, error) {
	keyPEM, err := pkicrypto.MarshalPrivateKeyPEM(kp.PrivateKey, m.passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode private key: %w", ErrCryptoFailure, err)
	}

	return &Issued{
		Certificate: cert,
		DER:         der,
		CertPEM:     pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		KeyPEM:      keyPEM,
		Algorithm:   kp.Algorithm,
	}, nil
}
