package main

import (
	"crypto/x509"
	"errors"
	"os"
	"testing"

	"github.com/remiblancher/certgen/internal/audit"
	"github.com/remiblancher/certgen/internal/ca"
	"github.com/remiblancher/certgen/internal/cli"
)

func verifyChain(t *testing.T, leaf, root *x509.Certificate, intermediates ...*x509.Certificate) {
	t.Helper()
	roots := x509.NewCertPool()
	roots.AddCert(root)
	inter := x509.NewCertPool()
	for _, c := range intermediates {
		inter.AddCert(c)
	}
	_, err := leaf.Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: inter,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil {
		t.Errorf("chain verification failed: %v", err)
	}
}

func TestF_SignedCert_Leaf(t *testing.T) {
	tc := newTestContext(t)
	tc.selfSignedCA("root")

	out, err := executeCommand(rootCmd, "signed-cert", "leaf",
		"--ca", tc.path("root.pem"), "--ca-key", tc.path("root.key"),
		"--san", "leaf.example", "--ttl", "720h", "--out-dir", tc.tempDir)
	assertNoError(t, err)
	assertContains(t, out, "End entity issued successfully!")
	assertFileMode(t, tc.path("leaf.key"), cli.KeyFileMode)

	root := tc.loadCert("root")
	leaf := tc.loadCert("leaf")

	if leaf.Issuer.String() != root.Subject.String() {
		t.Errorf("issuer = %s, want %s", leaf.Issuer, root.Subject)
	}
	if err := leaf.CheckSignatureFrom(root); err != nil {
		t.Errorf("leaf does not verify under root: %v", err)
	}
	if leaf.IsCA {
		t.Error("leaf should not be a CA")
	}
	if leaf.KeyUsage != x509.KeyUsageDigitalSignature {
		t.Errorf("KeyUsage = %v, want digitalSignature", leaf.KeyUsage)
	}
	if string(leaf.AuthorityKeyId) != string(root.SubjectKeyId) {
		t.Error("leaf AKI should match root SKI")
	}
	verifyChain(t, leaf, root)
}

func TestF_SignedCert_IntermediateChain(t *testing.T) {
	tc := newTestContext(t)
	tc.selfSignedCA("root")
	tc.signedCert("root", "sub", "--is-ca", "--algorithm", "ecdsa-p384")
	tc.signedCert("sub", "leaf", "--algorithm", "ed25519")

	root := tc.loadCert("root")
	sub := tc.loadCert("sub")
	leaf := tc.loadCert("leaf")

	if !sub.IsCA || sub.KeyUsage&x509.KeyUsageCertSign == 0 {
		t.Error("intermediate should be a CA with keyCertSign")
	}
	verifyChain(t, leaf, root, sub)
}

func TestF_SignedCert_EncryptedIssuerKey(t *testing.T) {
	tc := newTestContext(t)
	t.Setenv("ROOT_PASS", "s3cret")
	tc.selfSignedCA("root", "--key-passphrase-env", "ROOT_PASS")

	tc.signedCert("root", "leaf", "--ca-key-passphrase-env", "ROOT_PASS")
	verifyChain(t, tc.loadCert("leaf"), tc.loadCert("root"))

	_, err := executeCommand(rootCmd, "signed-cert", "other",
		"--ca", tc.path("root.pem"), "--ca-key", tc.path("root.key"),
		"--san", "other.example", "--ttl", "1h", "--out-dir", tc.tempDir)
	if !errors.Is(err, ca.ErrInvalidIssuer) {
		t.Errorf("expected ErrInvalidIssuer without passphrase, got %v", err)
	}
}

func TestF_SignedCert_Errors(t *testing.T) {
	tc := newTestContext(t)
	tc.selfSignedCA("root")
	tc.selfSignedCA("other")
	tc.signedCert("root", "leaf")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"[Functional] SignedCert: leaf as issuer", []string{"--ca", tc.path("leaf.pem"), "--ca-key", tc.path("leaf.key")}, ca.ErrInvalidIssuer},
		{"[Functional] SignedCert: mismatched key", []string{"--ca", tc.path("root.pem"), "--ca-key", tc.path("other.key")}, ca.ErrInvalidIssuer},
		{"[Functional] SignedCert: missing CA file", []string{"--ca", tc.path("nope.pem"), "--ca-key", tc.path("root.key")}, ca.ErrIOFailure},
		{"[Functional] SignedCert: missing key file", []string{"--ca", tc.path("root.pem"), "--ca-key", tc.path("nope.key")}, ca.ErrIOFailure},
		{"[Functional] SignedCert: no key source", []string{"--ca", tc.path("root.pem")}, ca.ErrInvalidInput},
		{"[Functional] SignedCert: missing CA flag", []string{"--ca-key", tc.path("root.key")}, nil},
		{"[Functional] SignedCert: both key sources", []string{"--ca", tc.path("root.pem"), "--ca-key", tc.path("root.key"), "--ca-hsm-config", tc.path("hsm.yaml")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"signed-cert", "child", "--san", "child.example", "--ttl", "1h", "--out-dir", tc.tempDir}, tt.args...)
			_, err := executeCommand(rootCmd, args...)
			assertError(t, err)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			assertFileNotExists(t, tc.path("child.key"))
			assertFileNotExists(t, tc.path("child.pem"))
		})
	}
}

func TestF_SignedCert_InvalidIssuerBeforeInput(t *testing.T) {
	tc := newTestContext(t)
	tc.selfSignedCA("root")
	tc.signedCert("root", "leaf")

	_, err := executeCommand(rootCmd, "signed-cert", "child",
		"--ca", tc.path("leaf.pem"), "--ca-key", tc.path("leaf.key"),
		"--san", "bad_host!", "--ttl", "1h", "--out-dir", tc.tempDir)
	if !errors.Is(err, ca.ErrInvalidIssuer) {
		t.Errorf("expected ErrInvalidIssuer, got %v", err)
	}
}

func TestF_SignedCert_AuditLog(t *testing.T) {
	tc := newTestContext(t)
	logPath := tc.path("audit.jsonl")

	tc.selfSignedCA("root", "--audit-log", logPath)
	tc.signedCert("root", "sub", "--is-ca", "--audit-log", logPath)
	tc.signedCert("sub", "leaf", "--audit-log", logPath)

	// CA_CREATED, KEY_ACCESSED + CA_CREATED, KEY_ACCESSED + CERT_ISSUED
	count, err := audit.VerifyChain(logPath)
	assertNoError(t, err)
	if count != 5 {
		t.Errorf("audit events = %d, want 5", count)
	}

	data, err := os.ReadFile(logPath)
	assertNoError(t, err)
	for _, want := range []string{string(audit.EventCACreated), string(audit.EventKeyAccessed), string(audit.EventCertIssued)} {
		assertContains(t, string(data), want)
	}
}

func TestF_SignedCert_AuditLogFromEnv(t *testing.T) {
	tc := newTestContext(t)
	logPath := tc.path("audit.jsonl")
	t.Setenv("CERTGEN_AUDIT_LOG", logPath)

	tc.selfSignedCA("root")

	count, err := audit.VerifyChain(logPath)
	assertNoError(t, err)
	if count != 1 {
		t.Errorf("audit events = %d, want 1", count)
	}
}
