package crypto

import (
	"crypto"
)

// Signer extends crypto.Signer with algorithm metadata.
// Software keys and HSM-resident keys both satisfy it.
type Signer interface {
	crypto.Signer

	// Algorithm returns the algorithm identifier for this signer.
	Algorithm() AlgorithmID
}

// Closer is implemented by signers that hold external resources.
type Closer interface {
	Close() error
}

// CloseSigner releases the signer's resources if it has any.
func CloseSigner(s Signer) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}

// KeyMatches reports whether pub is the public half of signer.
func KeyMatches(signer crypto.Signer, pub crypto.PublicKey) bool {
	own, ok := signer.Public().(interface{ Equal(crypto.PublicKey) bool })
	if !ok {
		return false
	}
	return own.Equal(pub)
}
