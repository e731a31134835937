package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/remiblancher/certgen/internal/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log management",
	Long: `Commands for reading and verifying audit logs.

The audit log records every issuance and issuer key access. Each event is
chained to the previous one with a SHA-256 hash.

Examples:
  # Verify audit log integrity
  certgen audit verify /var/log/certgen/audit.jsonl

  # Show the last 10 events
  certgen audit tail /var/log/certgen/audit.jsonl -n 10`,
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <audit.jsonl>",
	Short: "Verify audit log integrity",
	Long: `Verify the hash chain of an audit log file.

Each event carries:
  - hash_prev: hash of the previous event
  - hash:      SHA-256 of the canonical event and hash_prev

The chain starts with hash_prev="sha256:genesis". A modified, deleted or
inserted event breaks the chain and is reported with its line number.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail <audit.jsonl>",
	Short: "Show recent audit events",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditTail,
}

var (
	auditTailNum  int
	auditShowJSON bool
)

func init() {
	auditTailCmd.Flags().IntVarP(&auditTailNum, "num", "n", 10, "Number of events to show")
	auditTailCmd.Flags().BoolVar(&auditShowJSON, "json", false, "Output raw JSON lines")

	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Verifying audit log: %s\n\n", args[0])

	count, err := audit.VerifyChain(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(out, "VERIFICATION FAILED\n")
		_, _ = fmt.Fprintf(out, "  Valid events: %d\n", count)
		_, _ = fmt.Fprintf(out, "  Error: %s\n", err)
		return fmt.Errorf("audit log verification failed: %w", err)
	}

	_, _ = fmt.Fprintf(out, "VERIFICATION PASSED\n")
	_, _ = fmt.Fprintf(out, "  Total events: %d\n", count)
	_, _ = fmt.Fprintf(out, "  Hash chain: VALID\n")
	return nil
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	if auditTailNum <= 0 {
		return fmt.Errorf("--num must be positive")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer func() { _ = f.Close() }()

	lines, err := lastLines(f, auditTailNum)
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(lines) == 0 {
		_, _ = fmt.Fprintln(out, "Audit log is empty")
		return nil
	}

	if auditShowJSON {
		for _, line := range lines {
			_, _ = fmt.Fprintln(out, line)
		}
		return nil
	}

	for _, line := range lines {
		var event audit.Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			_, _ = fmt.Fprintf(out, "  [ERROR] %s\n", err)
			continue
		}
		printEvent(out, &event)
	}
	return nil
}

// lastLines returns the last n non-blank lines of r.
func lastLines(r io.Reader, n int) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines, scanner.Err()
}

func printEvent(w io.Writer, e *audit.Event) {
	resultIcon := "✓"
	if e.Result == audit.ResultFailure {
		resultIcon = "✗"
	}

	_, _ = fmt.Fprintf(w, "[%s] %s %s\n", e.Timestamp, resultIcon, e.EventType)
	_, _ = fmt.Fprintf(w, "    Actor:  %s@%s\n", e.Actor.ID, e.Actor.Host)

	if e.Object.Type != "" {
		_, _ = fmt.Fprintf(w, "    Object: %s", e.Object.Type)
		if e.Object.Serial != "" {
			_, _ = fmt.Fprintf(w, " serial=%s", e.Object.Serial)
		}
		if e.Object.Subject != "" {
			_, _ = fmt.Fprintf(w, " subject=%s", e.Object.Subject)
		}
		if e.Object.Path != "" {
			_, _ = fmt.Fprintf(w, " path=%s", e.Object.Path)
		}
		_, _ = fmt.Fprintln(w)
	}

	c := e.Context
	if c.Issuer != "" || c.Algorithm != "" || c.KeySource != "" || c.Reason != "" {
		_, _ = fmt.Fprint(w, "    Context:")
		if c.Issuer != "" {
			_, _ = fmt.Fprintf(w, " issuer=%s", c.Issuer)
		}
		if c.Algorithm != "" {
			_, _ = fmt.Fprintf(w, " algorithm=%s", c.Algorithm)
		}
		if c.KeySource != "" {
			_, _ = fmt.Fprintf(w, " key_source=%s", c.KeySource)
		}
		if c.Reason != "" {
			_, _ = fmt.Fprintf(w, " reason=%s", c.Reason)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w)
}
