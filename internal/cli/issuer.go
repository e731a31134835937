package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/remiblancher/certgen/internal/audit"
	"github.com/remiblancher/certgen/internal/ca"
	pkicrypto "github.com/remiblancher/certgen/internal/crypto"
)

// IssuerSource describes where the issuer certificate and key come from.
// Exactly one of KeyPath and HSMConfig must be set.
type IssuerSource struct {
	CertPath string

	// Software key
	KeyPath    string
	Passphrase []byte

	// PKCS#11 key
	HSMConfig string
	KeyLabel  string
	KeyID     string
}

// Validate checks that the source names a certificate and exactly one key.
func (s IssuerSource) Validate() error {
	if s.CertPath == "" {
		return fmt.Errorf("%w: --ca is required", ca.ErrInvalidInput)
	}
	switch {
	case s.KeyPath != "" && s.HSMConfig != "":
		return fmt.Errorf("%w: --ca-key and --ca-hsm-config are mutually exclusive", ca.ErrInvalidInput)
	case s.KeyPath == "" && s.HSMConfig == "":
		return fmt.Errorf("%w: --ca-key or --ca-hsm-config is required", ca.ErrInvalidInput)
	case s.HSMConfig != "" && s.KeyLabel == "" && s.KeyID == "":
		return fmt.Errorf("%w: --ca-key-label or --ca-key-id is required with --ca-hsm-config", ca.ErrInvalidInput)
	}
	return nil
}

// LoadIssuer reads the issuer certificate and opens its key. The key access
// is recorded in the audit trail. The caller must Close the returned issuer.
func LoadIssuer(src IssuerSource) (*ca.Issuer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	certPEM, err := os.ReadFile(src.CertPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CA certificate: %w", ca.ErrIOFailure, err)
	}

	if src.HSMConfig != "" {
		return loadHSMIssuer(src, certPEM)
	}

	keyPEM, err := os.ReadFile(src.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CA key: %w", ca.ErrIOFailure, err)
	}

	issuer, err := ca.ParseIssuer(certPEM, keyPEM, src.Passphrase)
	if auditErr := audit.LogKeyAccessed(src.KeyPath, "file", err == nil, errorReason(err)); auditErr != nil {
		return nil, errors.Join(err, auditFailure(auditErr))
	}
	if err != nil {
		return nil, err
	}
	return issuer, nil
}

func loadHSMIssuer(src IssuerSource, certPEM []byte) (*ca.Issuer, error) {
	ref := hsmKeyRef(src)

	cert, err := ca.ParseCertificatePEM(certPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ca.ErrInvalidIssuer, err)
	}

	signer, err := pkicrypto.OpenHSMSigner(src.HSMConfig, src.KeyLabel, src.KeyID)
	if err != nil {
		err = fmt.Errorf("%w: failed to open HSM key %s: %w", ca.ErrInvalidIssuer, ref, err)
		if auditErr := audit.LogKeyAccessed(ref, "pkcs11", false, err.Error()); auditErr != nil {
			return nil, errors.Join(err, auditFailure(auditErr))
		}
		return nil, err
	}

	issuer, err := ca.NewIssuer(cert, signer)
	if err != nil {
		_ = pkicrypto.CloseSigner(signer)
	}
	if auditErr := audit.LogKeyAccessed(ref, "pkcs11", err == nil, errorReason(err)); auditErr != nil {
		if issuer != nil {
			_ = issuer.Close()
		}
		return nil, errors.Join(err, auditFailure(auditErr))
	}
	if err != nil {
		return nil, err
	}
	return issuer, nil
}

func auditFailure(err error) error {
	return fmt.Errorf("%w: failed to write audit event: %w", ca.ErrIOFailure, err)
}

func hsmKeyRef(src IssuerSource) string {
	ref := "pkcs11:" + src.HSMConfig
	if src.KeyLabel != "" {
		ref += ";label=" + src.KeyLabel
	}
	if src.KeyID != "" {
		ref += ";id=" + src.KeyID
	}
	return ref
}

func errorReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
