package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remiblancher/certgen/internal/ca"
	"github.com/remiblancher/certgen/internal/cli"
	pkicrypto "github.com/remiblancher/certgen/internal/crypto"
)

// issueFlags holds the flags shared by the issuing commands.
type issueFlags struct {
	sans       []string
	ttl        string
	algorithm  string
	outDir     string
	keyPassEnv string
}

func (f *issueFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVar(&f.sans, "san", nil, "Subject alternative name: DNS name, IP, e-mail or URI (repeatable, required)")
	flags.StringVar(&f.ttl, "ttl", "", "Validity period, e.g. 90d, 8760h, 1y (required)")
	flags.StringVarP(&f.algorithm, "algorithm", "a", string(pkicrypto.DefaultAlgorithm), "Key algorithm")
	flags.StringVarP(&f.outDir, "out-dir", "o", ".", "Output directory for <name>.pem and <name>.key")
	flags.StringVar(&f.keyPassEnv, "key-passphrase-env", "", "Environment variable holding a passphrase to encrypt the new key")
	_ = cmd.MarkFlagRequired("san")
	_ = cmd.MarkFlagRequired("ttl")
}

// request builds the issuance request for name.
func (f *issueFlags) request(name string, isCA bool) (ca.Request, error) {
	ttl, err := cli.ParseTTL(f.ttl)
	if err != nil {
		return ca.Request{}, fmt.Errorf("%w: %w", ca.ErrInvalidInput, err)
	}
	return ca.Request{
		Name:            name,
		SubjectAltNames: f.sans,
		TTL:             ttl,
		IsCA:            isCA,
	}, nil
}

// minter returns a Minter configured from the flags.
func (f *issueFlags) minter() (*ca.Minter, error) {
	alg, err := pkicrypto.ParseAlgorithm(f.algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ca.ErrInvalidInput, err)
	}

	passphrase, err := cli.PassphraseFromEnv(f.keyPassEnv)
	if err != nil {
		return nil, err
	}

	return ca.New(
		ca.WithAlgorithm(alg),
		ca.WithKeyPassphrase(passphrase),
		ca.WithLogger(logger),
	), nil
}

// writeAndReport persists issued and prints the summary.
func writeAndReport(cmd *cobra.Command, f *issueFlags, name string, issued *ca.Issued) error {
	certPath, keyPath, err := cli.WriteIssued(f.outDir, name, issued)
	if err != nil {
		return err
	}

	logger.Debug().
		Str("serial", issued.Serial()).
		Str("cert", certPath).
		Str("key", keyPath).
		Msg("certificate written")

	cli.PrintIssued(cmd.OutOrStdout(), issued, certPath, keyPath)
	return nil
}
