package main

import (
	"bytes"
	"crypto/x509"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/remiblancher/certgen/internal/cli"
)

// executeCommand executes a Cobra command with the given args and returns output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	resetFlags(root)

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()
	return buf.String(), err
}

// resetFlags restores every flag of cmd and its subcommands to its default.
// Cobra retains flag values and their changed state between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// testContext holds test resources.
type testContext struct {
	t       *testing.T
	tempDir string
}

// newTestContext creates a new test context with a temp directory.
func newTestContext(t *testing.T) *testContext {
	t.Helper()
	return &testContext{t: t, tempDir: t.TempDir()}
}

// path returns a path within the temp directory.
func (tc *testContext) path(name string) string {
	return filepath.Join(tc.tempDir, name)
}

// writeFile writes content to a file in the temp directory.
func (tc *testContext) writeFile(name, content string) string {
	tc.t.Helper()
	path := tc.path(name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		tc.t.Fatalf("Failed to write file %s: %v", name, err)
	}
	return path
}

// loadCert parses the certificate written at name.
func (tc *testContext) loadCert(name string) *x509.Certificate {
	tc.t.Helper()
	cert, err := cli.LoadCertFromPath(tc.path(name))
	if err != nil {
		tc.t.Fatalf("Failed to load certificate %s: %v", name, err)
	}
	return cert
}

// selfSignedCA runs self-signed-ca for name in the temp directory.
func (tc *testContext) selfSignedCA(name string, extra ...string) {
	tc.t.Helper()
	args := append([]string{"self-signed-ca", name,
		"--san", name + ".example",
		"--ttl", "8760h",
		"--out-dir", tc.tempDir,
	}, extra...)
	out, err := executeCommand(rootCmd, args...)
	if err != nil {
		tc.t.Fatalf("self-signed-ca %s failed: %v\n%s", name, err, out)
	}
}

// signedCert runs signed-cert for name, issued by issuer, in the temp directory.
func (tc *testContext) signedCert(issuer, name string, extra ...string) {
	tc.t.Helper()
	args := append([]string{"signed-cert", name,
		"--ca", tc.path(issuer + ".pem"),
		"--ca-key", tc.path(issuer + ".key"),
		"--san", name + ".example",
		"--ttl", "720h",
		"--out-dir", tc.tempDir,
	}, extra...)
	out, err := executeCommand(rootCmd, args...)
	if err != nil {
		tc.t.Fatalf("signed-cert %s failed: %v\n%s", name, err, out)
	}
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// assertFileExists verifies that a file exists at the given path.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("file %s does not exist", path)
	}
}

// assertFileNotExists verifies that nothing exists at the given path.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file %s should not exist", path)
	}
}

// assertFileMode verifies the permission bits of a file.
func assertFileMode(t *testing.T, path string, want os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat %s: %v", path, err)
	}
	if got := info.Mode().Perm(); got != want {
		t.Errorf("%s mode = %v, want %v", path, got, want)
	}
}

// assertNoError fails the test if err is not nil.
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertError fails the test if err is nil.
func assertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// assertContains fails the test if s does not contain substr.
func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected output to contain %q, got:\n%s", substr, s)
	}
}
