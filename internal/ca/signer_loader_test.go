package ca

import (
	"bytes"
	"encoding/pem"
	"errors"
	"testing"

	pkicrypto "github.com/remiblancher/certgen/internal/crypto"
)

func TestU_ParseCertificatePEM_SkipsOtherBlocks(t *testing.T) {
	root := issueRoot(t, New(), "root")

	bundle := append([]byte{}, root.KeyPEM...)
	bundle = append(bundle, root.CertPEM...)

	cert, err := ParseCertificatePEM(bundle)
	if err != nil {
		t.Fatalf("ParseCertificatePEM() error = %v", err)
	}
	if !bytes.Equal(cert.Raw, root.DER) {
		t.Error("wrong certificate returned")
	}
}

func TestU_ParseCertificatePEM_Invalid(t *testing.T) {
	if _, err := ParseCertificatePEM(nil); err == nil {
		t.Error("expected error for empty input")
	}
	bad := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{0x30, 0x00}})
	if _, err := ParseCertificatePEM(bad); err == nil {
		t.Error("expected error for corrupt DER")
	}
}

func TestU_NewIssuer(t *testing.T) {
	root := issueRoot(t, New(), "root")
	signer, err := pkicrypto.ParsePrivateKeyPEM(root.KeyPEM, nil)
	if err != nil {
		t.Fatal(err)
	}

	issuer, err := NewIssuer(root.Certificate, signer)
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}
	if err := issuer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := NewIssuer(root.Certificate, nil); !errors.Is(err, ErrInvalidIssuer) {
		t.Errorf("expected ErrInvalidIssuer for missing key, got %v", err)
	}
}

func TestU_ParseIssuer_WrongPassphrase(t *testing.T) {
	root := issueRoot(t, New(WithKeyPassphrase([]byte("right"))), "root")

	if _, err := ParseIssuer(root.CertPEM, root.KeyPEM, []byte("wrong")); !errors.Is(err, ErrInvalidIssuer) {
		t.Errorf("expected ErrInvalidIssuer, got %v", err)
	}
	if _, err := ParseIssuer(root.CertPEM, root.KeyPEM, nil); !errors.Is(err, pkicrypto.ErrPassphraseRequired) {
		t.Errorf("expected ErrPassphraseRequired in chain, got %v", err)
	}
}
