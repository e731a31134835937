package main

import (
	"crypto/ed25519"
	"crypto/x509"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/remiblancher/certgen/internal/ca"
	"github.com/remiblancher/certgen/internal/cli"
	pkicrypto "github.com/remiblancher/certgen/internal/crypto"
)

func TestF_SelfSignedCA_Root(t *testing.T) {
	tc := newTestContext(t)

	out, err := executeCommand(rootCmd, "self-signed-ca", "root",
		"--san", "root.example", "--ttl", "8760h", "--out-dir", tc.tempDir)
	assertNoError(t, err)
	assertContains(t, out, "Root CA issued successfully!")

	assertFileMode(t, tc.path("root.key"), cli.KeyFileMode)
	assertFileMode(t, tc.path("root.pem"), cli.CertFileMode)

	cert := tc.loadCert("root")
	if cert.Subject.CommonName != "root" {
		t.Errorf("CommonName = %q, want root", cert.Subject.CommonName)
	}
	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "root.example" {
		t.Errorf("DNSNames = %v, want [root.example]", cert.DNSNames)
	}
	if !cert.IsCA || !cert.BasicConstraintsValid {
		t.Error("root should be a CA")
	}
	if cert.MaxPathLen != -1 || cert.MaxPathLenZero {
		t.Errorf("path length should be unconstrained, got %d", cert.MaxPathLen)
	}
	if err := cert.CheckSignatureFrom(cert); err != nil {
		t.Errorf("root does not verify under its own key: %v", err)
	}

	ttl := cert.NotAfter.Sub(cert.NotBefore)
	if ttl < 8760*time.Hour-2*time.Second || ttl > 8760*time.Hour+2*time.Second {
		t.Errorf("validity = %v, want 8760h", ttl)
	}
}

func TestF_SelfSignedCA_AllSANKinds(t *testing.T) {
	tc := newTestContext(t)

	_, err := executeCommand(rootCmd, "self-signed-ca", "multi",
		"--san", "multi.example",
		"--san", "10.0.0.1",
		"--san", "::1",
		"--san", "admin@example.com",
		"--san", "spiffe://example.org/ca",
		"--ttl", "30d", "--out-dir", tc.tempDir)
	assertNoError(t, err)

	cert := tc.loadCert("multi")
	if len(cert.DNSNames) != 1 || len(cert.IPAddresses) != 2 ||
		len(cert.EmailAddresses) != 1 || len(cert.URIs) != 1 {
		t.Errorf("unexpected SANs: dns=%v ip=%v email=%v uri=%v",
			cert.DNSNames, cert.IPAddresses, cert.EmailAddresses, cert.URIs)
	}
}

func TestF_SelfSignedCA_Ed25519EncryptedKey(t *testing.T) {
	tc := newTestContext(t)
	t.Setenv("ROOT_PASS", "correct horse")

	_, err := executeCommand(rootCmd, "self-signed-ca", "root",
		"--san", "root.example", "--ttl", "1y",
		"--algorithm", "ed25519", "--key-passphrase-env", "ROOT_PASS",
		"--out-dir", tc.tempDir)
	assertNoError(t, err)

	if _, ok := tc.loadCert("root").PublicKey.(ed25519.PublicKey); !ok {
		t.Error("expected an Ed25519 public key")
	}

	keyPEM, err := os.ReadFile(tc.path("root.key"))
	assertNoError(t, err)
	if _, err := pkicrypto.ParsePrivateKeyPEM(keyPEM, nil); !errors.Is(err, pkicrypto.ErrPassphraseRequired) {
		t.Errorf("expected encrypted key, got %v", err)
	}
	if _, err := pkicrypto.ParsePrivateKeyPEM(keyPEM, []byte("correct horse")); err != nil {
		t.Errorf("failed to decrypt key: %v", err)
	}
}

func TestF_SelfSignedCA_Overwrites(t *testing.T) {
	tc := newTestContext(t)
	tc.selfSignedCA("root")
	first := tc.loadCert("root")

	tc.selfSignedCA("root")
	second := tc.loadCert("root")

	if first.SerialNumber.Cmp(second.SerialNumber) == 0 {
		t.Error("second run should replace the certificate")
	}
}

func TestF_SelfSignedCA_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"[Functional] SelfSignedCA: missing SAN", []string{"root", "--ttl", "1h"}, nil},
		{"[Functional] SelfSignedCA: missing TTL", []string{"root", "--san", "root.example"}, nil},
		{"[Functional] SelfSignedCA: missing name", []string{"--san", "root.example", "--ttl", "1h"}, nil},
		{"[Functional] SelfSignedCA: zero TTL", []string{"root", "--san", "root.example", "--ttl", "0s"}, ca.ErrInvalidInput},
		{"[Functional] SelfSignedCA: bad TTL", []string{"root", "--san", "root.example", "--ttl", "forever"}, ca.ErrInvalidInput},
		{"[Functional] SelfSignedCA: bad SAN", []string{"root", "--san", "bad_host!", "--ttl", "1h"}, ca.ErrInvalidInput},
		{"[Functional] SelfSignedCA: bad algorithm", []string{"root", "--san", "root.example", "--ttl", "1h", "--algorithm", "dsa"}, ca.ErrInvalidInput},
		{"[Functional] SelfSignedCA: path in name", []string{"../root", "--san", "root.example", "--ttl", "1h"}, ca.ErrInvalidInput},
		{"[Functional] SelfSignedCA: unset passphrase env", []string{"root", "--san", "root.example", "--ttl", "1h", "--key-passphrase-env", "CERTGEN_UNSET_VAR"}, ca.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestContext(t)
			args := append([]string{"self-signed-ca"}, tt.args...)
			args = append(args, "--out-dir", tc.tempDir)

			_, err := executeCommand(rootCmd, args...)
			assertError(t, err)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			assertFileNotExists(t, tc.path("root.key"))
			assertFileNotExists(t, tc.path("root.pem"))
		})
	}
}

func TestF_SelfSignedCA_UsableByStdlib(t *testing.T) {
	tc := newTestContext(t)
	tc.selfSignedCA("root", "--algorithm", "rsa-2048")

	cert := tc.loadCert("root")
	pool := x509.NewCertPool()
	pool.AddCert(cert)
	if _, err := cert.Verify(x509.VerifyOptions{Roots: pool}); err != nil {
		t.Errorf("root does not verify as a trust anchor: %v", err)
	}
}
