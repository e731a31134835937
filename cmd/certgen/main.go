// Command certgen issues X.509 certificates: self-signed CA certificates and
// certificates signed by an existing CA.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/remiblancher/certgen/internal/audit"
	"github.com/remiblancher/certgen/internal/cli"
	"github.com/remiblancher/certgen/internal/crypto"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	auditLogPath string
	debug        bool
)

// logger is the diagnostic logger configured by the root command.
var logger = zerolog.Nop()

func main() {
	// Setup signal handler for clean PKCS#11 shutdown
	setupSignalHandler()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		_ = audit.Close()
		crypto.CloseAllPools()
		os.Exit(1)
	}

	crypto.CloseAllPools()
}

// setupSignalHandler releases PKCS#11 sessions and the audit log on SIGINT/SIGTERM.
func setupSignalHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		_ = audit.Close()
		crypto.CloseAllPools()
		os.Exit(130)
	}()
}

var rootCmd = &cobra.Command{
	Use:   "certgen",
	Short: "Issue X.509 CA and leaf certificates",
	Long: `certgen generates key pairs and X.509 certificates for them.

A self-signed CA certificate is the root of a chain. Further certificates,
leaf or intermediate CA, are signed by an existing CA certificate and key.

Supported algorithms:
  ECDSA (P-256, P-384, P-521), Ed25519, RSA (2048, 3072, 4096)

Examples:
  # Create a root CA valid for one year
  certgen self-signed-ca root --san root.example --ttl 1y

  # Issue a server certificate signed by the root
  certgen signed-cert --ca root.pem --ca-key root.key leaf --san leaf.example --ttl 90d

  # Issue an intermediate CA
  certgen signed-cert --ca root.pem --ca-key root.key --is-ca sub --san sub.example --ttl 5y`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = cli.NewLogger(cmd.ErrOrStderr(), debug)

		// Check for audit log path from environment if not set via flag
		path := auditLogPath
		if path == "" {
			path = os.Getenv("CERTGEN_AUDIT_LOG")
		}

		if err := audit.InitFile(path); err != nil {
			return fmt.Errorf("failed to initialize audit log: %w", err)
		}
		if path != "" {
			logger.Debug().Str("path", path).Msg("audit log enabled")
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return audit.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&auditLogPath, "audit-log", "",
		"Path to audit log file (or set CERTGEN_AUDIT_LOG env var)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(selfSignedCACmd)
	rootCmd.AddCommand(signedCertCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(auditCmd)
}
