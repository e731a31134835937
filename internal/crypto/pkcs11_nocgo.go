//go:build !cgo

// Package crypto provides the key material used to issue certificates.
// HSM support via PKCS#11 requires cgo; this file provides the stubs.
package crypto

import (
	"crypto"
	"fmt"
	"io"
)

// PKCS11Signer is unavailable without cgo.
type PKCS11Signer struct{}

var _ Signer = (*PKCS11Signer)(nil)

// NewPKCS11Signer always fails when built without cgo.
func NewPKCS11Signer(cfg PKCS11Config) (*PKCS11Signer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("PKCS#11 support requires a cgo-enabled build")
}

func (s *PKCS11Signer) Algorithm() AlgorithmID { return "" }
func (s *PKCS11Signer) Public() crypto.PublicKey { return nil }
func (s *PKCS11Signer) Close() error             { return nil }

func (s *PKCS11Signer) Sign(io.Reader, []byte, crypto.SignerOpts) ([]byte, error) {
	return nil, fmt.Errorf("PKCS#11 support requires a cgo-enabled build")
}

// CloseAllPools is a no-op without cgo.
func CloseAllPools() {}
