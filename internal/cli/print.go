package cli

import (
	"crypto/x509"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/remiblancher/certgen/internal/ca"
	pkicrypto "github.com/remiblancher/certgen/internal/crypto"
	"github.com/remiblancher/certgen/internal/x509util"
)

// Validity states reported by CertificateStatus.
const (
	StatusValid       = "valid"
	StatusExpired     = "expired"
	StatusNotYetValid = "not yet valid"
)

// CertificateStatus reports whether cert is valid at now.
func CertificateStatus(cert *x509.Certificate, now time.Time) string {
	switch {
	case now.Before(cert.NotBefore):
		return StatusNotYetValid
	case now.After(cert.NotAfter):
		return StatusExpired
	default:
		return StatusValid
	}
}

// PrintIssued writes a short summary of a freshly issued certificate.
func PrintIssued(w io.Writer, issued *ca.Issued, certPath, keyPath string) {
	cert := issued.Certificate
	_, _ = fmt.Fprintf(w, "%s issued successfully!\n", x509util.GetCertificateKind(cert))
	_, _ = fmt.Fprintf(w, "  Subject:     %s\n", cert.Subject.String())
	_, _ = fmt.Fprintf(w, "  Issuer:      %s\n", cert.Issuer.String())
	_, _ = fmt.Fprintf(w, "  Serial:      %s\n", issued.Serial())
	_, _ = fmt.Fprintf(w, "  Algorithm:   %s\n", issued.Algorithm.Description())
	_, _ = fmt.Fprintf(w, "  Not After:   %s\n", cert.NotAfter.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "  Certificate: %s\n", certPath)
	_, _ = fmt.Fprintf(w, "  Private key: %s\n", keyPath)
}

// PrintCertificateInfo writes a human-readable description of cert.
func PrintCertificateInfo(w io.Writer, cert *x509.Certificate, now time.Time) {
	_, _ = fmt.Fprintf(w, "Certificate:\n")
	printField(w, "Kind", x509util.GetCertificateKind(cert).String())
	printField(w, "Subject", cert.Subject.String())
	printField(w, "Issuer", cert.Issuer.String())
	printField(w, "Serial", fmt.Sprintf("0x%X", cert.SerialNumber.Bytes()))
	printField(w, "Not Before", cert.NotBefore.UTC().Format(time.RFC3339))
	printField(w, "Not After", cert.NotAfter.UTC().Format(time.RFC3339))
	printField(w, "Status", FormatStatus(CertificateStatus(cert, now)))

	if alg, err := pkicrypto.AlgorithmForKey(cert.PublicKey); err == nil {
		printField(w, "Public Key", alg.Description())
	} else {
		printField(w, "Public Key", cert.PublicKeyAlgorithm.String())
	}
	printField(w, "Signature", cert.SignatureAlgorithm.String())

	isCA := "no"
	if cert.IsCA {
		isCA = "yes"
		if cert.MaxPathLen > 0 || cert.MaxPathLenZero {
			isCA = fmt.Sprintf("yes (path length %d)", cert.MaxPathLen)
		}
	}
	printField(w, "CA", isCA)

	printList(w, "Key Usage", x509util.KeyUsageNames(cert.KeyUsage))
	printList(w, "DNS Names", cert.DNSNames)
	ips := make([]string, len(cert.IPAddresses))
	for i, ip := range cert.IPAddresses {
		ips[i] = ip.String()
	}
	printList(w, "IP Addresses", ips)
	printList(w, "Emails", cert.EmailAddresses)
	uris := make([]string, len(cert.URIs))
	for i, u := range cert.URIs {
		uris[i] = u.String()
	}
	printList(w, "URIs", uris)

	printField(w, "Subject Key ID", x509util.FormatKeyID(cert.SubjectKeyId))
	printField(w, "Authority Key ID", x509util.FormatKeyID(cert.AuthorityKeyId))
}

func printField(w io.Writer, label, value string) {
	_, _ = fmt.Fprintf(w, "  %-18s %s\n", label+":", value)
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	printField(w, label, strings.Join(items, ", "))
}
