package crypto

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"
)

// KeyPair holds a public/private key pair.
type KeyPair struct {
	Algorithm  AlgorithmID
	PrivateKey crypto.Signer
	PublicKey  crypto.PublicKey
}

// GenerateKeyPair generates a new key pair for the specified algorithm.
//
// Example:
//
//	kp, err := crypto.GenerateKeyPair(crypto.AlgECDSAP256)
//	if err != nil {
//	    log.Fatal(err)
//	}
func GenerateKeyPair(alg AlgorithmID) (*KeyPair, error) {
	return GenerateKeyPairWithRand(rand.Reader, alg)
}

// GenerateKeyPairWithRand generates a key pair using the provided random source.
func GenerateKeyPairWithRand(random io.Reader, alg AlgorithmID) (*KeyPair, error) {
	if !alg.IsValid() {
		return nil, fmt.Errorf("unsupported algorithm: %s", alg)
	}

	var priv crypto.Signer
	var err error

	switch alg {
	case AlgECDSAP256:
		priv, err = ecdsa.GenerateKey(elliptic.P256(), random)
	case AlgECDSAP384:
		priv, err = ecdsa.GenerateKey(elliptic.P384(), random)
	case AlgECDSAP521:
		priv, err = ecdsa.GenerateKey(elliptic.P521(), random)

	case AlgEd25519:
		priv, err = generateEd25519(random)

	case AlgRSA2048, AlgRSA3072, AlgRSA4096:
		priv, err = rsa.GenerateKey(random, alg.KeySize())

	default:
		return nil, fmt.Errorf("key generation not implemented for: %s", alg)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to generate %s key: %w", alg, err)
	}

	return &KeyPair{
		Algorithm:  alg,
		PrivateKey: priv,
		PublicKey:  priv.Public(),
	}, nil
}

func generateEd25519(random io.Reader) (crypto.Signer, error) {
	_, priv, err := ed25519.GenerateKey(random)
	if err != nil {
		return nil, err
	}
	return priv, nil
}

// AlgorithmForKey maps a private or public key to its AlgorithmID.
func AlgorithmForKey(key any) (AlgorithmID, error) {
	if s, ok := key.(crypto.Signer); ok {
		key = s.Public()
	}

	switch pub := key.(type) {
	case *ecdsa.PublicKey:
		switch pub.Curve {
		case elliptic.P256():
			return AlgECDSAP256, nil
		case elliptic.P384():
			return AlgECDSAP384, nil
		case elliptic.P521():
			return AlgECDSAP521, nil
		default:
			return "", fmt.Errorf("unsupported ECDSA curve: %s", pub.Curve.Params().Name)
		}
	case ed25519.PublicKey:
		return AlgEd25519, nil
	case *rsa.PublicKey:
		switch bits := pub.N.BitLen(); {
		case bits <= 2048:
			return AlgRSA2048, nil
		case bits <= 3072:
			return AlgRSA3072, nil
		default:
			return AlgRSA4096, nil
		}
	default:
		return "", fmt.Errorf("unsupported key type: %T", key)
	}
}
