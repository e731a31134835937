package cli

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/remiblancher/certgen/internal/ca"
)

// File modes for issued material.
const (
	KeyFileMode  os.FileMode = 0600
	CertFileMode os.FileMode = 0644
)

// OutputPaths returns the certificate and key paths for name in dir.
func OutputPaths(dir, name string) (certPath, keyPath string) {
	return filepath.Join(dir, name+".pem"), filepath.Join(dir, name+".key")
}

// ValidateOutputName checks that name can be used as a file name stem.
func ValidateOutputName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: name %q cannot be used as a file name", ca.ErrInvalidInput, name)
	}
	return nil
}

// WriteIssued writes issued as <name>.key then <name>.pem in dir. Existing
// files are overwritten. If the certificate cannot be written the key file
// is removed so that no orphan key is left behind.
func WriteIssued(dir, name string, issued *ca.Issued) (certPath, keyPath string, err error) {
	if err := ValidateOutputName(name); err != nil {
		return "", "", err
	}
	certPath, keyPath = OutputPaths(dir, name)

	if err := writeFileMode(keyPath, issued.KeyPEM, KeyFileMode); err != nil {
		return "", "", fmt.Errorf("%w: failed to write private key: %w", ca.ErrIOFailure, err)
	}

	if err := writeFileMode(certPath, issued.CertPEM, CertFileMode); err != nil {
		rmErr := os.Remove(keyPath)
		if rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return "", "", fmt.Errorf("%w: certificate generated but not persisted (%s), and %s could not be removed: %w",
				ca.ErrIOFailure, err, keyPath, rmErr)
		}
		return "", "", fmt.Errorf("%w: certificate generated but not persisted: %w", ca.ErrIOFailure, err)
	}

	return certPath, keyPath, nil
}

// writeFileMode writes data to path and forces perm even when the file
// already existed with a different mode.
func writeFileMode(path string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return err
	}
	return os.Chmod(path, perm)
}

// LoadCertFromPath loads the first certificate from a PEM file.
func LoadCertFromPath(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read certificate file: %w", ca.ErrIOFailure, err)
	}

	cert, err := ca.ParseCertificatePEM(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cert, nil
}

// PassphraseFromEnv reads a passphrase from the named environment variable.
// An empty name means no passphrase.
func PassphraseFromEnv(name string) ([]byte, error) {
	if name == "" {
		return nil, nil
	}
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return nil, fmt.Errorf("%w: environment variable %s is not set or empty", ca.ErrInvalidInput, name)
	}
	return []byte(value), nil
}
