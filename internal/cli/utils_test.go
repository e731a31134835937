package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/remiblancher/certgen/internal/ca"
)

// =============================================================================
// Test Helpers
// =============================================================================

func issueTestRoot(t *testing.T, opts ...ca.Option) *ca.Issued {
	t.Helper()
	issued, err := ca.New(opts...).IssueSelfSigned(context.Background(), ca.Request{
		Name:            "test-root",
		SubjectAltNames: []string{"root.example.com"},
		TTL:             time.Hour,
	})
	if err != nil {
		t.Fatalf("IssueSelfSigned() error = %v", err)
	}
	return issued
}

// =============================================================================
// WriteIssued Tests
// =============================================================================

func TestU_WriteIssued(t *testing.T) {
	dir := t.TempDir()
	issued := issueTestRoot(t)

	certPath, keyPath, err := WriteIssued(dir, "root", issued)
	if err != nil {
		t.Fatalf("WriteIssued() error = %v", err)
	}
	if certPath != filepath.Join(dir, "root.pem") || keyPath != filepath.Join(dir, "root.key") {
		t.Errorf("paths = %s, %s", certPath, keyPath)
	}

	keyInfo, err := os.Stat(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if keyInfo.Mode().Perm() != KeyFileMode {
		t.Errorf("key mode = %v, want %v", keyInfo.Mode().Perm(), KeyFileMode)
	}

	data, err := os.ReadFile(certPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, issued.CertPEM) {
		t.Error("certificate file content mismatch")
	}
}

func TestU_WriteIssued_Overwrites(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "root.key")
	if err := os.WriteFile(keyPath, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	issued := issueTestRoot(t)
	if _, _, err := WriteIssued(dir, "root", issued); err != nil {
		t.Fatalf("WriteIssued() error = %v", err)
	}

	data, _ := os.ReadFile(keyPath)
	if !bytes.Equal(data, issued.KeyPEM) {
		t.Error("existing key file was not overwritten")
	}
	info, _ := os.Stat(keyPath)
	if info.Mode().Perm() != KeyFileMode {
		t.Errorf("key mode = %v, want %v", info.Mode().Perm(), KeyFileMode)
	}
}

func TestU_WriteIssued_CertFailureRemovesKey(t *testing.T) {
	dir := t.TempDir()
	// A directory where the certificate should go makes the second write fail.
	if err := os.Mkdir(filepath.Join(dir, "root.pem"), 0755); err != nil {
		t.Fatal(err)
	}

	_, _, err := WriteIssued(dir, "root", issueTestRoot(t))
	if !errors.Is(err, ca.ErrIOFailure) {
		t.Fatalf("expected ErrIOFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "generated but not persisted") {
		t.Errorf("error should explain the partial write: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "root.key")); !os.IsNotExist(statErr) {
		t.Error("orphan key file should have been removed")
	}
}

func TestU_WriteIssued_MissingDir(t *testing.T) {
	_, _, err := WriteIssued(filepath.Join(t.TempDir(), "missing"), "root", issueTestRoot(t))
	if !errors.Is(err, ca.ErrIOFailure) {
		t.Errorf("expected ErrIOFailure, got %v", err)
	}
}

func TestU_ValidateOutputName(t *testing.T) {
	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		if err := ValidateOutputName(name); !errors.Is(err, ca.ErrInvalidInput) {
			t.Errorf("ValidateOutputName(%q) = %v, want ErrInvalidInput", name, err)
		}
	}
	if err := ValidateOutputName("My Root CA"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// =============================================================================
// Loader Tests
// =============================================================================

func TestU_LoadCertFromPath(t *testing.T) {
	dir := t.TempDir()
	issued := issueTestRoot(t)
	certPath, _, err := WriteIssued(dir, "root", issued)
	if err != nil {
		t.Fatal(err)
	}

	cert, err := LoadCertFromPath(certPath)
	if err != nil {
		t.Fatalf("LoadCertFromPath() error = %v", err)
	}
	if !bytes.Equal(cert.Raw, issued.DER) {
		t.Error("loaded certificate differs")
	}

	if _, err := LoadCertFromPath(filepath.Join(dir, "nope.pem")); !errors.Is(err, ca.ErrIOFailure) {
		t.Errorf("expected ErrIOFailure for missing file, got %v", err)
	}
}

func TestU_PassphraseFromEnv(t *testing.T) {
	got, err := PassphraseFromEnv("")
	if err != nil || got != nil {
		t.Errorf("empty name: %v, %v", got, err)
	}

	t.Setenv("CERTGEN_TEST_PASS", "hunter2")
	got, err = PassphraseFromEnv("CERTGEN_TEST_PASS")
	if err != nil || string(got) != "hunter2" {
		t.Errorf("PassphraseFromEnv() = %q, %v", got, err)
	}

	t.Setenv("CERTGEN_TEST_PASS", "")
	if _, err := PassphraseFromEnv("CERTGEN_TEST_PASS"); !errors.Is(err, ca.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty variable, got %v", err)
	}
}
