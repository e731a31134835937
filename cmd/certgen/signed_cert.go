package main

import (
	"github.com/spf13/cobra"

	"github.com/remiblancher/certgen/internal/cli"
)

var signedCertCmd = &cobra.Command{
	Use:   "signed-cert <name>",
	Short: "Issue a certificate signed by an existing CA",
	Long: `Generate a key pair and a certificate for it, signed by an existing CA.

The issuer is given by its PEM certificate (--ca) and either its PEM private
key (--ca-key) or a PKCS#11 key (--ca-hsm-config with --ca-key-label or
--ca-key-id). The issuer must be a CA whose key matches the certificate.

Without --is-ca the certificate is a leaf with the digitalSignature key usage.
With --is-ca it is an intermediate CA with unconstrained path length.

Examples:
  # Leaf certificate
  certgen signed-cert --ca root.pem --ca-key root.key leaf \
      --san leaf.example --san 10.0.0.1 --ttl 720h

  # Intermediate CA
  certgen signed-cert --ca root.pem --ca-key root.key --is-ca sub --san sub.example --ttl 5y

  # Issuer key on an HSM
  HSM_PIN=1234 certgen signed-cert --ca root.pem --ca-hsm-config hsm.yaml \
      --ca-key-label root-key leaf --san leaf.example --ttl 90d`,
	Args: cobra.ExactArgs(1),
	RunE: runSignedCert,
}

var (
	signedFlags issueFlags

	signedCACert       string
	signedCAKey        string
	signedCAKeyPassEnv string
	signedCAHSMConfig  string
	signedCAKeyLabel   string
	signedCAKeyID      string
	signedIsCA         bool
)

func init() {
	signedFlags.register(signedCertCmd)

	flags := signedCertCmd.Flags()
	flags.StringVar(&signedCACert, "ca", "", "Issuer CA certificate (PEM, required)")
	flags.StringVar(&signedCAKey, "ca-key", "", "Issuer CA private key (PEM)")
	flags.StringVar(&signedCAKeyPassEnv, "ca-key-passphrase-env", "", "Environment variable holding the issuer key passphrase")
	flags.StringVar(&signedCAHSMConfig, "ca-hsm-config", "", "HSM configuration file for an issuer key held in PKCS#11")
	flags.StringVar(&signedCAKeyLabel, "ca-key-label", "", "PKCS#11 label of the issuer key")
	flags.StringVar(&signedCAKeyID, "ca-key-id", "", "PKCS#11 id of the issuer key (hex)")
	flags.BoolVar(&signedIsCA, "is-ca", false, "Issue an intermediate CA certificate")
	_ = signedCertCmd.MarkFlagRequired("ca")
	signedCertCmd.MarkFlagsMutuallyExclusive("ca-key", "ca-hsm-config")
}

func runSignedCert(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := cli.ValidateOutputName(name); err != nil {
		return err
	}

	caPass, err := cli.PassphraseFromEnv(signedCAKeyPassEnv)
	if err != nil {
		return err
	}

	issuer, err := cli.LoadIssuer(cli.IssuerSource{
		CertPath:   signedCACert,
		KeyPath:    signedCAKey,
		Passphrase: caPass,
		HSMConfig:  signedCAHSMConfig,
		KeyLabel:   signedCAKeyLabel,
		KeyID:      signedCAKeyID,
	})
	if err != nil {
		return err
	}
	defer func() { _ = issuer.Close() }()

	logger.Debug().
		Str("issuer", issuer.Certificate.Subject.String()).
		Bool("is_ca", signedIsCA).
		Msg("issuer loaded")

	req, err := signedFlags.request(name, signedIsCA)
	if err != nil {
		return err
	}
	minter, err := signedFlags.minter()
	if err != nil {
		return err
	}

	issued, err := minter.IssueSigned(cmd.Context(), issuer, req)
	if err != nil {
		return err
	}

	return writeAndReport(cmd, &signedFlags, name, issued)
}
