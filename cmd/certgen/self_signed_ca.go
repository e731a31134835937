package main

import (
	"github.com/spf13/cobra"

	"github.com/remiblancher/certgen/internal/cli"
)

var selfSignedCACmd = &cobra.Command{
	Use:   "self-signed-ca <name>",
	Short: "Create a self-signed CA certificate",
	Long: `Generate a key pair and a self-signed CA certificate for it.

The certificate subject common name is <name>. It is a CA with unconstrained
path length and the keyCertSign, cRLSign and digitalSignature key usages.
The certificate and key are written to <out-dir>/<name>.pem and
<out-dir>/<name>.key; existing files are overwritten.

Examples:
  # Root CA valid for one year
  certgen self-signed-ca root --san root.example --ttl 8760h

  # Ed25519 root with an encrypted key
  ROOT_PASS=secret certgen self-signed-ca root --san root.example --ttl 10y \
      --algorithm ed25519 --key-passphrase-env ROOT_PASS --out-dir ./pki`,
	Args: cobra.ExactArgs(1),
	RunE: runSelfSignedCA,
}

var selfSignedFlags issueFlags

func init() {
	selfSignedFlags.register(selfSignedCACmd)
}

func runSelfSignedCA(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := cli.ValidateOutputName(name); err != nil {
		return err
	}

	req, err := selfSignedFlags.request(name, true)
	if err != nil {
		return err
	}
	minter, err := selfSignedFlags.minter()
	if err != nil {
		return err
	}

	issued, err := minter.IssueSelfSigned(cmd.Context(), req)
	if err != nil {
		return err
	}

	return writeAndReport(cmd, &selfSignedFlags, name, issued)
}
