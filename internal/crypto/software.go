package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
)

// PEM block types for private keys.
const (
	PEMTypePKCS8 = "PRIVATE KEY"
	PEMTypeEC    = "EC PRIVATE KEY"
	PEMTypeRSA   = "RSA PRIVATE KEY"
)

// ErrPassphraseRequired is returned when an encrypted key is loaded without a passphrase.
var ErrPassphraseRequired = errors.New("private key is encrypted but no passphrase provided")

// SoftwareSigner implements Signer with an in-memory private key.
type SoftwareSigner struct {
	alg  AlgorithmID
	priv crypto.Signer
}

var _ Signer = (*SoftwareSigner)(nil)

// NewSoftwareSigner creates a new SoftwareSigner from a key pair.
func NewSoftwareSigner(kp *KeyPair) (*SoftwareSigner, error) {
	if kp == nil {
		return nil, fmt.Errorf("key pair is nil")
	}
	return &SoftwareSigner{alg: kp.Algorithm, priv: kp.PrivateKey}, nil
}

// Algorithm returns the algorithm used by this signer.
func (s *SoftwareSigner) Algorithm() AlgorithmID {
	return s.alg
}

// Public returns the public key.
func (s *SoftwareSigner) Public() crypto.PublicKey {
	return s.priv.Public()
}

// Sign delegates to the underlying key. Ed25519 keys receive the full
// message, the others a digest, as crypto/x509 arranges.
func (s *SoftwareSigner) Sign(random io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	return s.priv.Sign(random, digest, opts)
}

// PrivateKey returns the wrapped private key.
func (s *SoftwareSigner) PrivateKey() crypto.Signer {
	return s.priv
}

// MarshalPrivateKeyPEM encodes a private key as a PKCS#8 PEM block.
// If passphrase is non-empty the block is encrypted with AES-256.
func MarshalPrivateKeyPEM(key crypto.Signer, passphrase []byte) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	block := &pem.Block{Type: PEMTypePKCS8, Bytes: der}

	if len(passphrase) > 0 {
		block, err = x509.EncryptPEMBlock(rand.Reader, block.Type, block.Bytes, passphrase, x509.PEMCipherAES256) //nolint:staticcheck // Deprecated but still used
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt private key: %w", err)
		}
	}

	return pem.EncodeToMemory(block), nil
}

// ParsePrivateKeyPEM loads a software signer from PEM data.
// PKCS#8, SEC1 (EC) and PKCS#1 (RSA) blocks are accepted.
func ParsePrivateKeyPEM(data, passphrase []byte) (*SoftwareSigner, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	keyBytes := block.Bytes

	if x509.IsEncryptedPEMBlock(block) { //nolint:staticcheck
		if len(passphrase) == 0 {
			return nil, ErrPassphraseRequired
		}
		var err error
		keyBytes, err = x509.DecryptPEMBlock(block, passphrase) //nolint:staticcheck
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt private key: %w", err)
		}
	}

	var key any
	var err error

	switch block.Type {
	case PEMTypePKCS8:
		key, err = x509.ParsePKCS8PrivateKey(keyBytes)
	case PEMTypeEC:
		key, err = x509.ParseECPrivateKey(keyBytes)
	case PEMTypeRSA:
		key, err = x509.ParsePKCS1PrivateKey(keyBytes)
	default:
		return nil, fmt.Errorf("unsupported PEM block type: %s", block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", block.Type, err)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("key of type %T cannot sign", key)
	}

	alg, err := AlgorithmForKey(signer)
	if err != nil {
		return nil, err
	}

	return &SoftwareSigner{alg: alg, priv: signer}, nil
}
