// Package crypto provides the key material used to issue certificates.
// The set of key algorithms is closed: every algorithm listed here can be
// encoded into an X.509 certificate by crypto/x509.
package crypto

import (
	"crypto/x509"
	"fmt"
	"sort"
)

// AlgorithmID identifies a key algorithm.
type AlgorithmID string

const (
	AlgECDSAP256 AlgorithmID = "ecdsa-p256"
	AlgECDSAP384 AlgorithmID = "ecdsa-p384"
	AlgECDSAP521 AlgorithmID = "ecdsa-p521"
	AlgEd25519   AlgorithmID = "ed25519"
	AlgRSA2048   AlgorithmID = "rsa-2048"
	AlgRSA3072   AlgorithmID = "rsa-3072"
	AlgRSA4096   AlgorithmID = "rsa-4096"
)

// DefaultAlgorithm is used for newly generated keys when none is requested.
const DefaultAlgorithm = AlgECDSAP256

// Family is the key family of an algorithm.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyECDSA
	FamilyEd25519
	FamilyRSA
)

func (f Family) String() string {
	switch f {
	case FamilyECDSA:
		return "ECDSA"
	case FamilyEd25519:
		return "Ed25519"
	case FamilyRSA:
		return "RSA"
	default:
		return "unknown"
	}
}

type algorithmInfo struct {
	Family      Family
	X509SigAlg  x509.SignatureAlgorithm
	KeySizeBits int
	Description string
}

var algorithms = map[AlgorithmID]algorithmInfo{
	AlgECDSAP256: {
		Family:      FamilyECDSA,
		X509SigAlg:  x509.ECDSAWithSHA256,
		KeySizeBits: 256,
		Description: "ECDSA with P-256 curve",
	},
	AlgECDSAP384: {
		Family:      FamilyECDSA,
		X509SigAlg:  x509.ECDSAWithSHA384,
		KeySizeBits: 384,
		Description: "ECDSA with P-384 curve",
	},
	AlgECDSAP521: {
		Family:      FamilyECDSA,
		X509SigAlg:  x509.ECDSAWithSHA512,
		KeySizeBits: 521,
		Description: "ECDSA with P-521 curve",
	},
	AlgEd25519: {
		Family:      FamilyEd25519,
		X509SigAlg:  x509.PureEd25519,
		KeySizeBits: 256,
		Description: "Ed25519 (EdDSA with Curve25519)",
	},
	AlgRSA2048: {
		Family:      FamilyRSA,
		X509SigAlg:  x509.SHA256WithRSA,
		KeySizeBits: 2048,
		Description: "RSA 2048-bit",
	},
	AlgRSA3072: {
		Family:      FamilyRSA,
		X509SigAlg:  x509.SHA256WithRSA,
		KeySizeBits: 3072,
		Description: "RSA 3072-bit",
	},
	AlgRSA4096: {
		Family:      FamilyRSA,
		X509SigAlg:  x509.SHA256WithRSA,
		KeySizeBits: 4096,
		Description: "RSA 4096-bit",
	},
}

// IsValid returns true if the algorithm is recognized.
func (a AlgorithmID) IsValid() bool {
	_, ok := algorithms[a]
	return ok
}

// Family returns the key family of the algorithm.
func (a AlgorithmID) Family() Family {
	if info, ok := algorithms[a]; ok {
		return info.Family
	}
	return FamilyUnknown
}

// X509SignatureAlgorithm returns the signature algorithm certificates signed
// by a key of this algorithm will carry.
func (a AlgorithmID) X509SignatureAlgorithm() x509.SignatureAlgorithm {
	if info, ok := algorithms[a]; ok {
		return info.X509SigAlg
	}
	return x509.UnknownSignatureAlgorithm
}

// KeySize returns the key size in bits.
func (a AlgorithmID) KeySize() int {
	return algorithms[a].KeySizeBits
}

// Description returns a human-readable description of the algorithm.
func (a AlgorithmID) Description() string {
	if info, ok := algorithms[a]; ok {
		return info.Description
	}
	return "Unknown algorithm"
}

func (a AlgorithmID) String() string {
	return string(a)
}

// ParseAlgorithm parses a string into an AlgorithmID.
func ParseAlgorithm(s string) (AlgorithmID, error) {
	if s == "" {
		return DefaultAlgorithm, nil
	}
	alg := AlgorithmID(s)
	if !alg.IsValid() {
		return "", fmt.Errorf("unknown algorithm: %s (supported: %v)", s, AllAlgorithms())
	}
	return alg, nil
}

// AllAlgorithms returns the supported algorithm IDs in a stable order.
func AllAlgorithms() []AlgorithmID {
	result := make([]AlgorithmID, 0, len(algorithms))
	for alg := range algorithms {
		result = append(result, alg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
