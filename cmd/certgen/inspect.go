package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/remiblancher/certgen/internal/cli"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <cert.pem>",
	Short: "Display certificate information",
	Long: `Display the contents of a PEM certificate: subject, issuer, serial,
validity, CA flag, key usages, subject alternative names and key identifiers.

With --issuer, also check that the certificate was signed by the given CA
certificate.

Examples:
  certgen inspect root.pem
  certgen inspect leaf.pem --issuer root.pem`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var inspectIssuer string

func init() {
	inspectCmd.Flags().StringVar(&inspectIssuer, "issuer", "", "Issuer certificate to check the signature against")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cert, err := cli.LoadCertFromPath(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	cli.PrintCertificateInfo(out, cert, time.Now())

	if inspectIssuer == "" {
		return nil
	}

	issuer, err := cli.LoadCertFromPath(inspectIssuer)
	if err != nil {
		return err
	}
	if err := cert.CheckSignatureFrom(issuer); err != nil {
		_, _ = fmt.Fprintf(out, "  %-18s %s\n", "Signed By:", cli.ColorRed+"INVALID"+cli.ColorReset)
		return fmt.Errorf("certificate is not signed by %s: %w", issuer.Subject.String(), err)
	}
	_, _ = fmt.Fprintf(out, "  %-18s %s\n", "Signed By:", issuer.Subject.String())
	return nil
}
