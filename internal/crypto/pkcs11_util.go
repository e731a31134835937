package crypto

import (
	"crypto"
	"crypto/elliptic"
	"encoding/asn1"
	"fmt"
	"math/big"
)

// DigestInfo prefixes for PKCS#1 v1.5 signatures (RFC 8017).
var digestInfoPrefixes = map[crypto.Hash][]byte{
	crypto.SHA256: {0x30, 0x31, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x01, 0x05, 0x00, 0x04, 0x20},
	crypto.SHA384: {0x30, 0x41, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x02, 0x05, 0x00, 0x04, 0x30},
	crypto.SHA512: {0x30, 0x51, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x03, 0x05, 0x00, 0x04, 0x40},
}

// addDigestInfoPrefix prepends the DigestInfo header CKM_RSA_PKCS expects.
func addDigestInfoPrefix(digest []byte, hash crypto.Hash) ([]byte, error) {
	prefix, ok := digestInfoPrefixes[hash]
	if !ok {
		return nil, fmt.Errorf("unsupported hash for RSA PKCS#1 v1.5: %v", hash)
	}
	if len(digest) != hash.Size() {
		return nil, fmt.Errorf("digest length %d does not match %v", len(digest), hash)
	}
	result := make([]byte, len(prefix)+len(digest))
	copy(result, prefix)
	copy(result[len(prefix):], digest)
	return result, nil
}

// convertECDSASignature converts a raw r||s signature to ASN.1 DER.
func convertECDSASignature(rawSig []byte) ([]byte, error) {
	if len(rawSig) == 0 || len(rawSig)%2 != 0 {
		return nil, fmt.Errorf("invalid ECDSA signature length: %d", len(rawSig))
	}

	n := len(rawSig) / 2
	r := new(big.Int).SetBytes(rawSig[:n])
	s := new(big.Int).SetBytes(rawSig[n:])

	return asn1.Marshal(struct {
		R, S *big.Int
	}{r, s})
}

// parseECParams maps DER-encoded curve parameters to a curve.
func parseECParams(params []byte) (elliptic.Curve, AlgorithmID, error) {
	var oid asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(params, &oid); err != nil {
		return nil, "", fmt.Errorf("failed to parse EC params OID: %w", err)
	}

	switch {
	case oid.Equal(asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}):
		return elliptic.P256(), AlgECDSAP256, nil
	case oid.Equal(asn1.ObjectIdentifier{1, 3, 132, 0, 34}):
		return elliptic.P384(), AlgECDSAP384, nil
	case oid.Equal(asn1.ObjectIdentifier{1, 3, 132, 0, 35}):
		return elliptic.P521(), AlgECDSAP521, nil
	default:
		return nil, "", fmt.Errorf("unsupported EC curve OID: %v", oid)
	}
}

// unwrapECPoint strips the DER OCTET STRING wrapper some tokens put around
// CKA_EC_POINT. An already-raw uncompressed point is returned unchanged.
func unwrapECPoint(point []byte) []byte {
	var raw []byte
	if rest, err := asn1.Unmarshal(point, &raw); err == nil && len(rest) == 0 && len(raw) > 0 && raw[0] == 0x04 {
		return raw
	}
	return point
}

// bytesToUint decodes a native-endian CK_ULONG attribute value.
// Big-integer attributes such as CKA_PUBLIC_EXPONENT must use big.Int instead.
func bytesToUint(b []byte) uint {
	var result uint
	for i := len(b) - 1; i >= 0; i-- {
		result = result<<8 | uint(b[i])
	}
	return result
}
